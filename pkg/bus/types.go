package bus

import (
	"umchat/pkg/dialog"
)

const (
	SourceTyped = "typed"
	SourceVoice = "voice"
	SourceChip  = "chip"
)

// Utterance is one user request headed for the conversation core.
type Utterance struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

const (
	UpdateEntries    = "entries"
	UpdateInterim    = "interim"
	UpdateSpeakStart = "speak_start"
)

// Update is what the presentation layer consumes: a fresh entry
// snapshot, an interim voice transcript, or a speak cue.
type Update struct {
	Kind       string                `json:"kind"`
	Entries    []dialog.DisplayEntry `json:"entries,omitempty"`
	Transcript string                `json:"transcript,omitempty"`
	Speak      string                `json:"speak,omitempty"`
}
