package speech

import "context"

// Recognizer captures one utterance at a time. End-without-result and an
// explicit StopListening both yield an empty transcript, not an error;
// errors are reserved for transport problems with the bridge. Starting a
// new capture supersedes any capture still in flight.
type Recognizer interface {
	StartListening(ctx context.Context) (string, error)
	StopListening()
	OnInterimTranscript(fn func(string))
}

// Synthesizer reads text out loud.
type Synthesizer interface {
	SpeakText(text string) error
	CancelSpeech()
}
