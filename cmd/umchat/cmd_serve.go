package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"umchat/pkg/logger"
	"umchat/pkg/server"
	"umchat/pkg/storage"
)

func serveCmd() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg)

	var janitor *storage.Janitor
	if cfg.History.RetentionCron != "" {
		userID, err := storage.LoadOrCreateUserID(cfg.History.Dir)
		if err == nil {
			if store, err := openStore(cfg, userID); err == nil {
				janitor = storage.NewJanitor(store, cfg.History.Limit)
				if err := janitor.Start(cfg.History.RetentionCron); err != nil {
					logger.WarnCF("cli", "Retention janitor not started", map[string]interface{}{
						logger.FieldError: err.Error(),
					})
					janitor = nil
				}
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		if janitor != nil {
			janitor.Stop()
		}
		return srv.Stop(context.Background())
	})

	fmt.Printf("Mock skill webhook on http://%s:%d/webhook\n", cfg.Gateway.Host, cfg.Gateway.Port)
	if err := g.Wait(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
