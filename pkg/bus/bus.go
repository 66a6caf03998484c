package bus

import (
	"context"
	"sync"
	"time"

	"umchat/pkg/logger"
)

// Bus decouples the conversation core from the presentation layer:
// utterances flow in, display updates flow out.
type Bus struct {
	utterances chan Utterance
	updates    chan Update
	mu         sync.RWMutex
	closed     bool
	closeOnce  sync.Once
}

const queueWriteTimeout = 2 * time.Second

func New() *Bus {
	return &Bus{
		utterances: make(chan Utterance, 16),
		updates:    make(chan Update, 16),
	}
}

func (b *Bus) PublishUtterance(u Utterance) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	ch := b.utterances
	b.mu.RUnlock()

	defer func() {
		if recover() != nil {
			logger.WarnC("bus", "PublishUtterance on closed channel recovered")
		}
	}()

	select {
	case ch <- u:
	case <-time.After(queueWriteTimeout):
		logger.ErrorC("bus", "PublishUtterance timeout (queue full)")
	}
}

func (b *Bus) ConsumeUtterance(ctx context.Context) (Utterance, bool) {
	select {
	case u, ok := <-b.utterances:
		return u, ok
	case <-ctx.Done():
		return Utterance{}, false
	}
}

func (b *Bus) PublishUpdate(u Update) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	ch := b.updates
	b.mu.RUnlock()

	defer func() {
		if recover() != nil {
			logger.WarnC("bus", "PublishUpdate on closed channel recovered")
		}
	}()

	select {
	case ch <- u:
	case <-time.After(queueWriteTimeout):
		logger.ErrorC("bus", "PublishUpdate timeout (queue full)")
	}
}

func (b *Bus) ConsumeUpdate(ctx context.Context) (Update, bool) {
	select {
	case u, ok := <-b.updates:
		return u, ok
	case <-ctx.Done():
		return Update{}, false
	}
}

// Updates exposes the raw channel for event-loop style consumers.
func (b *Bus) Updates() <-chan Update {
	return b.updates
}

func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.utterances)
		close(b.updates)
		b.mu.Unlock()
	})
}
