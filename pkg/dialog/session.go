// UMChat - embeddable skill chat core
// License: MIT

package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"umchat/pkg/logger"
	"umchat/pkg/skill"
	"umchat/pkg/transport"
)

// ErrNoEndpoint rejects a send before any network activity when no
// endpoint is configured.
var ErrNoEndpoint = errors.New("no endpoint configured")

const errorPrefix = "Произошла ошибка!\n"

// Session owns one conversation: the ordered entry sequence, the turn
// counter, and the request orchestration against the remote endpoint.
//
// Overlapping sends are allowed. Each in-flight request carries the turn
// index it was built for; its bot entry is appended whenever the call
// resolves, but message ids always derive from that tag, so a
// late-resolving response never steals another turn's numbering.
type Session struct {
	mu      sync.Mutex
	proto   skill.Protocol
	client  *transport.Client
	store   Store
	limiter *rate.Limiter

	endpoint string
	userID   string

	counter *TurnCounter
	entries []DisplayEntry
}

type Options struct {
	Endpoint string
	UserID   string
	Protocol skill.Protocol
	Client   *transport.Client
	Store    Store
	// RateEvery throttles outgoing sends (double-tap protection).
	// Zero disables throttling.
	RateEvery time.Duration
	RateBurst int
}

func NewSession(opts Options) *Session {
	s := &Session{
		proto:    opts.Protocol,
		client:   opts.Client,
		store:    opts.Store,
		endpoint: opts.Endpoint,
		userID:   opts.UserID,
		counter:  NewTurnCounter(),
	}
	if s.client == nil {
		s.client = transport.NewClient(0)
	}
	if opts.RateEvery > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Every(opts.RateEvery), burst)
	}
	s.restore()
	return s
}

func (s *Session) restore() {
	if s.store == nil {
		return
	}
	entries, err := s.store.LoadEntries()
	if err != nil {
		logger.WarnCF("dialog", "Failed to restore history", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
		return
	}
	if len(entries) == 0 {
		return
	}
	s.entries = entries
	s.counter.Reset(resumeTurn(entries))
	logger.InfoCF("dialog", "History restored", map[string]interface{}{
		logger.FieldEntryCount: len(entries),
		logger.FieldTurn:       s.counter.Peek(),
	})
}

// Entries returns the owned ordered sequence. Callers must treat the
// return as the current source of truth for rendering.
func (s *Session) Entries() []DisplayEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

func (s *Session) Turn() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter.Peek()
}

// AddUserEntry appends a user entry for the upcoming turn. The text is
// always trimmed before storing; rejecting blank input is the caller's
// job.
func (s *Session) AddUserEntry(text string) DisplayEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendEntry(DisplayEntry{
		MessageID: userMessageID(s.counter.Peek()),
		Text:      strings.TrimSpace(text),
		CardType:  skill.CardTypeText,
	})
}

// AddBotEntry converts a transport result into exactly one bot-side
// entry for the tagged turn: an error entry on failure or an unusable
// payload, otherwise the normalized text/card/list entry with its quick
// replies attached.
func (s *Session) AddBotEntry(turn int, res transport.Result[json.RawMessage]) DisplayEntry {
	n, errText := s.normalize(res)

	s.mu.Lock()
	defer s.mu.Unlock()

	if n == nil {
		return s.appendEntry(DisplayEntry{
			MessageID: botMessageID(turn),
			Text:      errorPrefix + errText,
			IsBot:     true,
			CardType:  skill.CardTypeError,
		})
	}

	if len(n.UserStateUpdate) > 0 && s.store != nil {
		// Fire-and-forget merge, last full snapshot wins.
		if err := s.store.SaveUserState(n.UserStateUpdate); err != nil {
			logger.WarnCF("dialog", "Failed to persist user state", map[string]interface{}{
				logger.FieldError: err.Error(),
			})
		}
	}

	return s.appendEntry(DisplayEntry{
		MessageID: botMessageID(turn),
		Text:      strings.TrimSpace(n.Text),
		IsBot:     true,
		CardType:  n.Type,
		Image:     n.Image,
		List:      n.List,
		Buttons:   n.Replies,
	})
}

func (s *Session) normalize(res transport.Result[json.RawMessage]) (*skill.Normalized, string) {
	if !res.Status || res.Data == nil {
		return nil, res.Err
	}
	n, err := s.proto.ParseResponse(*res.Data)
	if err != nil {
		return nil, err.Error()
	}
	return n, ""
}

// appendEntry mutates the owned sequence; callers hold the lock.
func (s *Session) appendEntry(entry DisplayEntry) DisplayEntry {
	entry.Date = time.Now().UnixMilli()
	s.entries = append(s.entries, entry)
	return entry
}

// Send runs one full turn: user entry, envelope, single network attempt,
// bot entry, persistence. It returns the updated entry sequence.
func (s *Session) Send(ctx context.Context, text string) ([]DisplayEntry, error) {
	if s.endpoint == "" {
		return nil, ErrNoEndpoint
	}

	s.mu.Lock()
	turn := s.counter.Advance()
	s.appendEntry(DisplayEntry{
		MessageID: userMessageID(turn),
		Text:      strings.TrimSpace(text),
		CardType:  skill.CardTypeText,
	})
	payload := s.proto.BuildRequest(text, turn, s.userID, s.loadUserState())
	s.mu.Unlock()
	s.persist()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			logger.DebugCF("dialog", "Send cancelled while throttled", map[string]interface{}{
				logger.FieldTurn: turn,
			})
		}
	}

	logger.DebugCF("dialog", "Sending turn", map[string]interface{}{
		logger.FieldEndpoint: s.endpoint,
		logger.FieldTurn:     turn,
	})
	res := transport.Send[json.RawMessage](ctx, s.client, transport.Request{
		URL:  s.endpoint,
		Body: payload,
	})

	s.AddBotEntry(turn, res)
	s.persist()
	return s.Entries(), nil
}

// Speakable extracts what speech synthesis should read for a resolved
// transport result. Empty string on failure.
func (s *Session) Speakable(res transport.Result[json.RawMessage]) string {
	n, _ := s.normalize(res)
	if n == nil {
		return ""
	}
	return skill.SpeakableText(n)
}

func (s *Session) loadUserState() json.RawMessage {
	if s.store == nil {
		return nil
	}
	state, err := s.store.LoadUserState()
	if err != nil {
		return nil
	}
	return state
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	snapshot := make([]DisplayEntry, len(s.entries))
	copy(snapshot, s.entries)
	s.mu.Unlock()

	if err := s.store.SaveEntries(snapshot); err != nil {
		logger.WarnCF("dialog", "Failed to persist history", map[string]interface{}{
			logger.FieldError:      err.Error(),
			logger.FieldEntryCount: len(snapshot),
		})
	}
}

// Clear drops the in-memory sequence, the persisted history, and the
// user state, and restarts numbering.
func (s *Session) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.counter.Reset(1)
	s.mu.Unlock()

	if s.store == nil {
		return
	}
	if err := s.store.ClearEntries(); err != nil {
		logger.WarnCF("dialog", "Failed to clear history", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
	if err := s.store.ClearUserState(); err != nil {
		logger.WarnCF("dialog", "Failed to clear user state", map[string]interface{}{
			logger.FieldError: err.Error(),
		})
	}
}
