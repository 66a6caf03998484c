package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"umchat/pkg/logger"
)

// Bridge talks to a remote speech service over a websocket: it streams
// interim transcripts while listening and accepts synthesis commands.
type Bridge struct {
	url string

	mu      sync.Mutex
	conn    *websocket.Conn
	pending chan string
	interim func(string)
}

type bridgeCommand struct {
	Action string `json:"action"`
	Text   string `json:"text,omitempty"`
}

type bridgeEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func NewBridge(url string) *Bridge {
	return &Bridge{url: url}
}

func (b *Bridge) OnInterimTranscript(fn func(string)) {
	b.mu.Lock()
	b.interim = fn
	b.mu.Unlock()
}

// StartListening asks the bridge for one final transcript. A capture
// already in flight is stopped first and resolves empty.
func (b *Bridge) StartListening(ctx context.Context) (string, error) {
	b.mu.Lock()
	if err := b.connectLocked(); err != nil {
		b.mu.Unlock()
		return "", err
	}
	if b.pending != nil {
		// Supersede: the previous capture resolves empty.
		close(b.pending)
		b.pending = nil
	}
	result := make(chan string, 1)
	b.pending = result
	err := b.writeLocked(bridgeCommand{Action: "listen"})
	b.mu.Unlock()
	if err != nil {
		return "", err
	}

	select {
	case transcript, ok := <-result:
		if !ok {
			return "", nil
		}
		logger.DebugCF("speech", "Capture resolved", map[string]interface{}{
			logger.FieldTranscriptLength: len(transcript),
		})
		return transcript, nil
	case <-ctx.Done():
		b.StopListening()
		return "", nil
	}
}

// StopListening cancels the in-flight capture; it resolves with an empty
// transcript rather than an error.
func (b *Bridge) StopListening() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil {
		close(b.pending)
		b.pending = nil
	}
	_ = b.writeLocked(bridgeCommand{Action: "stop"})
}

func (b *Bridge) SpeakText(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.connectLocked(); err != nil {
		return err
	}
	return b.writeLocked(bridgeCommand{Action: "speak", Text: text})
}

func (b *Bridge) CancelSpeech() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_ = b.writeLocked(bridgeCommand{Action: "cancel"})
}

func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending != nil {
		close(b.pending)
		b.pending = nil
	}
	if b.conn != nil {
		b.conn.Close()
		b.conn = nil
	}
}

func (b *Bridge) connectLocked() error {
	if b.conn != nil {
		return nil
	}
	if b.url == "" {
		return fmt.Errorf("no speech bridge configured")
	}
	conn, _, err := websocket.DefaultDialer.Dial(b.url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial speech bridge: %w", err)
	}
	b.conn = conn
	go b.readLoop(conn)
	logger.InfoCF("speech", "Connected to speech bridge", map[string]interface{}{
		logger.FieldEndpoint: b.url,
	})
	return nil
}

func (b *Bridge) writeLocked(cmd bridgeCommand) error {
	if b.conn == nil {
		return nil
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return err
	}
	return b.conn.WriteMessage(websocket.TextMessage, data)
}

func (b *Bridge) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			b.dropConn(conn)
			return
		}
		var event bridgeEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logger.DebugCF("speech", "Ignoring malformed bridge event", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
			continue
		}
		b.dispatch(event)
	}
}

func (b *Bridge) dispatch(event bridgeEvent) {
	b.mu.Lock()
	interim := b.interim
	pending := b.pending
	if event.Type == "final" || event.Type == "end" {
		b.pending = nil
	}
	b.mu.Unlock()

	switch event.Type {
	case "interim":
		if interim != nil {
			interim(event.Text)
		}
	case "final":
		if pending != nil {
			pending <- event.Text
			close(pending)
		}
	case "end":
		// End of capture without a final transcript.
		if pending != nil {
			close(pending)
		}
	}
}

func (b *Bridge) dropConn(conn *websocket.Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != conn {
		return
	}
	b.conn = nil
	if b.pending != nil {
		close(b.pending)
		b.pending = nil
	}
	logger.WarnC("speech", "Speech bridge connection lost")
}
