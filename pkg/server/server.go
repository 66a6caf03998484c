// UMChat - embeddable skill chat core
// License: MIT

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"umchat/pkg/config"
	"umchat/pkg/logger"
	"umchat/pkg/skill"
)

// Server hosts a local mock skill webhook for development: it answers
// the same protocol the widget speaks, with scripted card, list, button
// and user-state responses.
type Server struct {
	server *http.Server
	config *config.Config
}

func NewServer(cfg *config.Config) *Server {
	return &Server{config: cfg}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Gateway.Host, s.config.Gateway.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: Router(),
	}

	logger.InfoCF("server", "Starting mock skill server", map[string]interface{}{
		"addr": addr,
	})

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		logger.InfoC("server", "Stopping mock skill server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// Router is exposed separately so tests can drive the webhook without a
// listening socket.
func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	}))
	r.Get("/health", handleHealth)
	r.Post("/webhook", handleWebhook)
	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleWebhook(w http.ResponseWriter, r *http.Request) {
	var env skill.OutEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	logger.DebugCF("server", "Webhook request", map[string]interface{}{
		"request_id":       requestID,
		logger.FieldTurn:   env.Session.MessageID,
		logger.FieldUserID: env.Session.UserID,
	})

	reply := scriptedReply(env)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-Id", requestID)
	if err := json.NewEncoder(w).Encode(reply); err != nil {
		logger.ErrorCF("server", "Failed to encode reply", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
}

func scriptedReply(env skill.OutEnvelope) *skill.Envelope {
	command := strings.TrimSpace(env.Request.Command)

	if env.Session.New && command == "" {
		return textReply("Здравствуйте! Напишите «картинка», «список» или «кнопки».")
	}

	switch command {
	case "картинка", "image":
		return &skill.Envelope{Response: &skill.Response{
			Text: "Вот картинка",
			Card: &skill.Card{
				Type:        skill.CardBigImage,
				ImageID:     "1030494/demo",
				Title:       "Демонстрация",
				Description: "Карточка с одной картинкой",
				Button:      &skill.Button{Title: "Подробнее", URL: "https://example.org/card"},
			},
		}}
	case "список", "list":
		return &skill.Envelope{Response: &skill.Response{
			Text: "Вот список",
			Card: &skill.Card{
				Type:   skill.CardItemsList,
				Header: &skill.CardHeader{Text: "Пункты меню"},
				Items: []skill.CardItem{
					{Title: "Первый", Description: "Описание первого", ImageID: "1030494/item1"},
					{Title: "Второй", Description: "Описание второго", ImageID: "1030494/item2"},
				},
				Footer: &skill.CardFooter{
					Text:   "Ещё",
					Button: &skill.Button{Title: "Показать всё", URL: "https://example.org/all"},
				},
			},
		}}
	case "кнопки", "buttons":
		return &skill.Envelope{Response: &skill.Response{
			Text: "Выберите вариант",
			Buttons: []skill.Button{
				{Title: "Помощь", Hide: true},
				{Title: "Сайт", URL: "https://example.org", Hide: true},
				{Title: "Встроенная", Hide: false},
			},
		}}
	case "state":
		state, _ := json.Marshal(map[string]interface{}{
			"last_command": command,
			"stamp":        time.Now().Unix(),
		})
		reply := textReply("Состояние обновлено")
		reply.UserStateUpdate = state
		return reply
	}

	return textReply("Вы сказали: " + env.Request.OriginalUtterance)
}

func textReply(text string) *skill.Envelope {
	return &skill.Envelope{Response: &skill.Response{Text: text}}
}
