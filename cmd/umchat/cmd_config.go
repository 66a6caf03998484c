package main

import (
	"encoding/json"
	"fmt"
	"os"

	"umchat/pkg/config"
)

func configCmd() {
	args := os.Args[2:]
	action := "show"
	if len(args) > 0 {
		action = args[0]
	}

	switch action {
	case "show":
		cfg, err := loadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	case "init":
		path := configPath()
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("Config already exists at %s\n", path)
			return
		}
		if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default config to %s\n", path)
	case "set-endpoint":
		if len(args) < 2 {
			fmt.Println("Usage: umchat config set-endpoint <url>")
			os.Exit(1)
		}
		cfg, err := loadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg.SetEndpoint(args[1])
		if errs := config.Validate(cfg); len(errs) > 0 {
			fmt.Printf("Error: %v\n", errs[0])
			os.Exit(1)
		}
		if err := config.SaveConfig(configPath(), cfg); err != nil {
			fmt.Printf("Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Endpoint updated.")
	default:
		fmt.Printf("Unknown config command: %s\n", action)
		fmt.Println("Usage: umchat config [show|init|set-endpoint <url>]")
		os.Exit(1)
	}
}
