package skill

import "encoding/json"

// CardType tags the normalized shape of a reply so downstream rendering
// switches on one field instead of re-checking optional payloads.
type CardType string

const (
	CardTypeText  CardType = "text"
	CardTypeCard  CardType = "card"
	CardTypeList  CardType = "list"
	CardTypeError CardType = "error"
)

// CardButton is a display-model button. A URL means "navigate"; no URL
// means "resend this title as user text".
type CardButton struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type ImagePayload struct {
	Src         string      `json:"src"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Button      *CardButton `json:"button,omitempty"`
}

type ListFooter struct {
	Text   string      `json:"text"`
	Button *CardButton `json:"button,omitempty"`
}

type ListPayload struct {
	Title  string         `json:"title,omitempty"`
	Images []ImagePayload `json:"images"`
	Footer *ListFooter    `json:"footer,omitempty"`
}

// Normalized is the single display shape every usable response decodes
// into, resolved once at the codec boundary.
type Normalized struct {
	Type  CardType
	Text  string
	TTS   string
	Image *ImagePayload
	List  *ListPayload
	// Replies holds the quick-reply chips extracted from hide=true
	// buttons. Nil when no button qualifies.
	Replies []CardButton
	// UserStateUpdate, when present, replaces the persisted user state.
	UserStateUpdate json.RawMessage
}
