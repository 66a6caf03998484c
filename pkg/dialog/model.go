package dialog

import (
	"encoding/json"

	"umchat/pkg/skill"
)

// DisplayEntry is one renderable unit of the conversation history: a
// text bubble, an image card, a list card, or an error. The JSON field
// names mirror the persisted history format.
type DisplayEntry struct {
	MessageID int                 `json:"messageId"`
	Text      string              `json:"text"`
	Date      int64               `json:"date"`
	IsBot     bool                `json:"isBot"`
	CardType  skill.CardType      `json:"cardType"`
	Image     *skill.ImagePayload `json:"image,omitempty"`
	List      *skill.ListPayload  `json:"list,omitempty"`
	Buttons   []skill.CardButton  `json:"buttons,omitempty"`
}

// Store is what the session needs from a persistence backend. The
// session always hands over a full snapshot, never deltas. Absent or
// corrupt storage loads as empty.
type Store interface {
	LoadEntries() ([]DisplayEntry, error)
	SaveEntries(entries []DisplayEntry) error
	ClearEntries() error

	LoadUserState() (json.RawMessage, error)
	SaveUserState(state json.RawMessage) error
	ClearUserState() error
}

// TurnCounter numbers user turns, starting at 1. The value it holds is
// always the index of the next user turn.
type TurnCounter struct {
	next int
}

func NewTurnCounter() *TurnCounter {
	return &TurnCounter{next: 1}
}

func (c *TurnCounter) Peek() int {
	return c.next
}

// Advance returns the current turn index and increments. Called exactly
// once per outgoing send.
func (c *TurnCounter) Advance() int {
	turn := c.next
	c.next++
	return turn
}

// Reset reseeds the counter, used when restoring persisted history so
// numbering resumes instead of restarting at 1.
func (c *TurnCounter) Reset(turn int) {
	if turn < 1 {
		turn = 1
	}
	c.next = turn
}

func userMessageID(turn int) int {
	return 2*turn - 1
}

func botMessageID(turn int) int {
	return 2 * (turn - 1)
}

// resumeTurn derives the next turn index from restored history: one past
// the latest turn any entry belongs to.
func resumeTurn(entries []DisplayEntry) int {
	turn := 1
	for _, e := range entries {
		var t int
		if e.MessageID%2 == 1 {
			t = (e.MessageID+1)/2 + 1
		} else {
			t = e.MessageID/2 + 2
		}
		if t > turn {
			turn = t
		}
	}
	return turn
}
