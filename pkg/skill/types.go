package skill

import "encoding/json"

// Wire shapes of the conversational webhook protocol.

// Button is a raw protocol button. Hide=true means the button is not
// rendered inline but offered as a one-tap suggestion instead.
type Button struct {
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
	Hide  bool   `json:"hide"`
	URL   string `json:"url,omitempty"`
}

type CardHeader struct {
	Text string `json:"text"`
}

type CardItem struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	ImageID     string  `json:"image_id,omitempty"`
	Button      *Button `json:"button,omitempty"`
}

type CardFooter struct {
	Text   string  `json:"text"`
	Button *Button `json:"button,omitempty"`
}

// Card is the tagged union carried in a response: type is either
// CardBigImage (single image fields) or CardItemsList (header/items/footer).
type Card struct {
	Type        string      `json:"type"`
	ImageID     string      `json:"image_id,omitempty"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Button      *Button     `json:"button,omitempty"`
	Header      *CardHeader `json:"header,omitempty"`
	Items       []CardItem  `json:"items,omitempty"`
	Footer      *CardFooter `json:"footer,omitempty"`
}

const (
	CardBigImage  = "BigImage"
	CardItemsList = "ItemsList"
)

type Response struct {
	Text    string   `json:"text"`
	TTS     string   `json:"tts,omitempty"`
	Buttons []Button `json:"buttons,omitempty"`
	Card    *Card    `json:"card,omitempty"`
}

// Envelope is the full incoming payload. An absent response field means
// the payload is unusable.
type Envelope struct {
	Response        *Response       `json:"response"`
	UserStateUpdate json.RawMessage `json:"user_state_update,omitempty"`
}

// Outgoing envelope blocks. Built fresh per call, never persisted.

type Meta struct {
	Locale     string         `json:"locale"`
	Timezone   string         `json:"timezone"`
	ClientID   string         `json:"client_id"`
	Interfaces MetaInterfaces `json:"interfaces"`
}

type MetaInterfaces struct {
	Screen         struct{}    `json:"screen"`
	Payments       interface{} `json:"payments"`
	AccountLinking interface{} `json:"account_linking"`
}

type SessionBlock struct {
	MessageID   int                `json:"message_id"`
	SessionID   string             `json:"session_id"`
	SkillID     string             `json:"skill_id"`
	UserID      string             `json:"user_id"`
	User        SessionUser        `json:"user"`
	Application SessionApplication `json:"application"`
	New         bool               `json:"new"`
}

type SessionUser struct {
	UserID string `json:"user_id"`
}

type SessionApplication struct {
	ApplicationID string `json:"application_id"`
}

type RequestBlock struct {
	Command           string   `json:"command"`
	OriginalUtterance string   `json:"original_utterance"`
	NLU               struct{} `json:"nlu"`
	Type              string   `json:"type"`
}

type StateBlock struct {
	Session     struct{}        `json:"session"`
	User        json.RawMessage `json:"user"`
	Application struct{}        `json:"application"`
}

type OutEnvelope struct {
	Meta    Meta         `json:"meta"`
	Session SessionBlock `json:"session"`
	Request RequestBlock `json:"request"`
	State   StateBlock   `json:"state"`
	Version string       `json:"version"`
}

const (
	requestTypeUtterance = "SimpleUtterance"
	protocolVersion      = "1.0"
)
