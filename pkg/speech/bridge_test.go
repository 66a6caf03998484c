package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeBridgeServer answers "listen" commands with a scripted event
// sequence.
type fakeBridgeServer struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	mu     sync.Mutex
	events []bridgeEvent
}

func newFakeBridgeServer(t *testing.T, events ...bridgeEvent) *fakeBridgeServer {
	t.Helper()
	f := &fakeBridgeServer{events: events}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeBridgeServer) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func (f *fakeBridgeServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd bridgeCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			continue
		}
		if cmd.Action != "listen" {
			continue
		}
		f.mu.Lock()
		events := f.events
		f.mu.Unlock()
		for _, event := range events {
			payload, _ := json.Marshal(event)
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func TestBridgeFinalTranscript(t *testing.T) {
	t.Parallel()

	srv := newFakeBridgeServer(t,
		bridgeEvent{Type: "interim", Text: "прив"},
		bridgeEvent{Type: "interim", Text: "привет"},
		bridgeEvent{Type: "final", Text: "привет мир"},
	)

	b := NewBridge(srv.url())
	defer b.Close()

	var mu sync.Mutex
	var interim []string
	b.OnInterimTranscript(func(text string) {
		mu.Lock()
		interim = append(interim, text)
		mu.Unlock()
	})

	got, err := b.StartListening(context.Background())
	if err != nil {
		t.Fatalf("StartListening: %v", err)
	}
	if got != "привет мир" {
		t.Fatalf("unexpected transcript %q", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(interim) != 2 || interim[1] != "привет" {
		t.Fatalf("unexpected interim stream %v", interim)
	}
}

func TestBridgeEndWithoutTranscript(t *testing.T) {
	t.Parallel()

	srv := newFakeBridgeServer(t, bridgeEvent{Type: "end"})
	b := NewBridge(srv.url())
	defer b.Close()

	got, err := b.StartListening(context.Background())
	if err != nil {
		t.Fatalf("StartListening: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty transcript, got %q", got)
	}
}

func TestBridgeContextCancellation(t *testing.T) {
	t.Parallel()

	// Server that never answers the listen command.
	srv := newFakeBridgeServer(t)
	b := NewBridge(srv.url())
	defer b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	got, err := b.StartListening(ctx)
	if err != nil {
		t.Fatalf("StartListening: %v", err)
	}
	if got != "" {
		t.Fatalf("cancelled capture must resolve empty, got %q", got)
	}
}

func TestBridgeWithoutURL(t *testing.T) {
	t.Parallel()

	b := NewBridge("")
	if _, err := b.StartListening(context.Background()); err == nil {
		t.Fatalf("expected error without a bridge url")
	}
	if err := b.SpeakText("привет"); err == nil {
		t.Fatalf("expected error without a bridge url")
	}
}

func TestNoopRecognizer(t *testing.T) {
	t.Parallel()

	var n Noop
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	got, err := n.StartListening(ctx)
	if err != nil || got != "" {
		t.Fatalf("noop must resolve empty, got %q / %v", got, err)
	}
	if err := n.SpeakText("x"); err != nil {
		t.Fatalf("noop SpeakText: %v", err)
	}
}
