package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"umchat/pkg/dialog"
	"umchat/pkg/skill"
)

func postWebhook(t *testing.T, command, utterance string, isNew bool) *skill.Envelope {
	t.Helper()

	payload := skill.OutEnvelope{Version: "1.0"}
	payload.Session.MessageID = 0
	payload.Session.New = isNew
	payload.Request.Command = command
	payload.Request.OriginalUtterance = utterance
	payload.Request.Type = "SimpleUtterance"

	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var env skill.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	return &env
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("unexpected health reply: %d %q", rec.Code, rec.Body.String())
	}
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("nope")))
	rec := httptest.NewRecorder()
	Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookGreetsNewSession(t *testing.T) {
	t.Parallel()

	env := postWebhook(t, "", "", true)
	if env.Response == nil || env.Response.Text == "" {
		t.Fatalf("expected a greeting, got %+v", env)
	}
}

func TestWebhookEchoesUnknownCommand(t *testing.T) {
	t.Parallel()

	env := postWebhook(t, "как дела", "Как дела", false)
	if env.Response.Text != "Вы сказали: Как дела" {
		t.Fatalf("unexpected echo %q", env.Response.Text)
	}
}

func TestWebhookScriptedCards(t *testing.T) {
	t.Parallel()

	img := postWebhook(t, "картинка", "Картинка", false)
	if img.Response.Card == nil || img.Response.Card.Type != skill.CardBigImage {
		t.Fatalf("expected BigImage card, got %+v", img.Response.Card)
	}

	list := postWebhook(t, "список", "Список", false)
	if list.Response.Card == nil || list.Response.Card.Type != skill.CardItemsList {
		t.Fatalf("expected ItemsList card, got %+v", list.Response.Card)
	}
	if len(list.Response.Card.Items) != 2 || list.Response.Card.Footer == nil {
		t.Fatalf("unexpected list payload: %+v", list.Response.Card)
	}

	btns := postWebhook(t, "кнопки", "Кнопки", false)
	if len(btns.Response.Buttons) != 3 {
		t.Fatalf("expected 3 buttons, got %+v", btns.Response.Buttons)
	}

	state := postWebhook(t, "state", "state", false)
	if len(state.UserStateUpdate) == 0 {
		t.Fatalf("expected a user state update")
	}
}

// End to end: a session pointed at the mock server produces render-ready
// entries including quick replies.
func TestSessionAgainstMockServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(Router())
	defer srv.Close()

	s := dialog.NewSession(dialog.Options{
		Endpoint: srv.URL + "/webhook",
		UserID:   "test/1700000000000",
		Protocol: skill.NewWebhook("web-site_id", "web-site", "web-site", "ru-Ru", "UTC"),
	})

	entries, err := s.Send(context.Background(), "Кнопки")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	bot := entries[len(entries)-1]
	if !bot.IsBot || bot.CardType != skill.CardTypeText {
		t.Fatalf("unexpected bot entry: %+v", bot)
	}
	// Only hide=true buttons become quick replies.
	if len(bot.Buttons) != 2 {
		t.Fatalf("expected 2 quick replies, got %+v", bot.Buttons)
	}

	entries, err = s.Send(context.Background(), "Список")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	bot = entries[len(entries)-1]
	if bot.CardType != skill.CardTypeList || bot.List == nil || len(bot.List.Images) != 2 {
		t.Fatalf("unexpected list entry: %+v", bot)
	}
}
