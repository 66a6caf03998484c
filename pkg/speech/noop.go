package speech

import (
	"context"

	"umchat/pkg/logger"
)

// Noop satisfies both boundaries when no speech bridge is configured:
// captures resolve empty, synthesis is silently dropped.
type Noop struct{}

func (Noop) StartListening(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", nil
}

func (Noop) StopListening() {}

func (Noop) OnInterimTranscript(fn func(string)) {}

func (Noop) SpeakText(text string) error {
	logger.DebugCF("speech", "Dropping speak request (no bridge)", map[string]interface{}{
		logger.FieldTranscriptLength: len(text),
	})
	return nil
}

func (Noop) CancelSpeech() {}
