// UMChat - embeddable skill chat core
// License: MIT

package skill

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrNoResponse marks a payload with no usable response field.
var ErrNoResponse = errors.New("payload carries no response")

// Protocol abstracts the remote endpoint's wire format so an alternate
// backend can be dropped in. Webhook is the default implementation.
type Protocol interface {
	// BuildRequest produces the outgoing envelope for one turn.
	BuildRequest(utterance string, turn int, userID string, userState json.RawMessage) interface{}
	// ParseResponse normalizes a raw payload, failing with ErrNoResponse
	// when nothing usable is present.
	ParseResponse(raw json.RawMessage) (*Normalized, error)
	// ImageURL resolves an image token to a fetchable URL.
	ImageURL(token, size string) string
}

const (
	// SizeBigImage is the size tag for a single-image card.
	SizeBigImage = "one-x3"
	// SizeListItem is the smaller tag used for list thumbnails.
	SizeListItem = "menu-list-x3"

	defaultCDNBase = "https://avatars.mds.yandex.net"
)

// Webhook implements Protocol for the voice-assistant-skill webhook
// format.
type Webhook struct {
	SkillID   string
	SessionID string
	ClientID  string
	Locale    string
	Timezone  string
	CDNBase   string
}

func NewWebhook(skillID, sessionID, clientID, locale, timezone string) *Webhook {
	return &Webhook{
		SkillID:   skillID,
		SessionID: sessionID,
		ClientID:  clientID,
		Locale:    locale,
		Timezone:  timezone,
		CDNBase:   defaultCDNBase,
	}
}

// BuildRequest maps the one-based turn index to the protocol's
// zero-based message_id and flags the first turn as a new session. The
// prior user state travels verbatim in the state block.
func (w *Webhook) BuildRequest(utterance string, turn int, userID string, userState json.RawMessage) interface{} {
	if len(userState) == 0 {
		userState = json.RawMessage("{}")
	}
	return &OutEnvelope{
		Meta: Meta{
			Locale:   w.Locale,
			Timezone: w.Timezone,
			ClientID: w.ClientID,
		},
		Session: SessionBlock{
			MessageID:   turn - 1,
			SessionID:   w.SessionID,
			SkillID:     w.SkillID,
			UserID:      userID,
			User:        SessionUser{UserID: userID},
			Application: SessionApplication{ApplicationID: userID},
			New:         turn == 1,
		},
		Request: RequestBlock{
			Command:           strings.ToLower(utterance),
			OriginalUtterance: utterance,
			Type:              requestTypeUtterance,
		},
		State: StateBlock{
			User: userState,
		},
		Version: protocolVersion,
	}
}

func (w *Webhook) ParseResponse(raw json.RawMessage) (*Normalized, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Response == nil {
		return nil, ErrNoResponse
	}
	res := env.Response

	n := &Normalized{
		Type:            CardTypeText,
		Text:            res.Text,
		TTS:             res.TTS,
		UserStateUpdate: env.UserStateUpdate,
	}
	if n.TTS == "" {
		n.TTS = res.Text
	}

	for _, btn := range res.Buttons {
		if !btn.Hide {
			continue
		}
		n.Replies = append(n.Replies, *cardButton(&btn))
	}

	if res.Card == nil {
		return n, nil
	}
	switch res.Card.Type {
	case CardBigImage:
		n.Type = CardTypeCard
		n.Image = &ImagePayload{
			Src:         w.ImageURL(res.Card.ImageID, SizeBigImage),
			Title:       res.Card.Title,
			Description: res.Card.Description,
			Button:      cardButton(res.Card.Button),
		}
	case CardItemsList:
		n.Type = CardTypeList
		list := &ListPayload{Images: make([]ImagePayload, 0, len(res.Card.Items))}
		if res.Card.Header != nil {
			list.Title = res.Card.Header.Text
		}
		for _, item := range res.Card.Items {
			list.Images = append(list.Images, ImagePayload{
				Src:         w.ImageURL(item.ImageID, SizeListItem),
				Title:       item.Title,
				Description: item.Description,
				Button:      cardButton(item.Button),
			})
		}
		if res.Card.Footer != nil {
			list.Footer = &ListFooter{
				Text:   res.Card.Footer.Text,
				Button: cardButton(res.Card.Footer.Button),
			}
		}
		n.List = list
	}
	return n, nil
}

// ImageURL builds a CDN URL from an image token, or an empty string for
// a missing token so the caller falls back to plain text.
func (w *Webhook) ImageURL(token, size string) string {
	if token == "" {
		return ""
	}
	if size == "" {
		size = SizeBigImage
	}
	base := w.CDNBase
	if base == "" {
		base = defaultCDNBase
	}
	return fmt.Sprintf("%s/get-dialogs-skill-card/%s/%s", base, token, size)
}

// buttonLabel holds the precedence rule for button captions: the
// card-level text wins over the generic title. Kept as a named helper
// because the fallback is easy to invert by accident.
func buttonLabel(btn *Button) string {
	if btn.Text != "" {
		return btn.Text
	}
	return btn.Title
}

func cardButton(btn *Button) *CardButton {
	if btn == nil {
		return nil
	}
	return &CardButton{
		Title: buttonLabel(btn),
		URL:   btn.URL,
	}
}

var speakableFilter = regexp.MustCompile(`[^\x00-\x7Fа-яА-Я]`)

// SpeakableText picks what goes to speech synthesis. The display text is
// deliberately preferred over the dedicated tts field, and everything
// outside ASCII and Cyrillic letters is stripped before synthesis.
func SpeakableText(n *Normalized) string {
	if n == nil {
		return ""
	}
	text := n.Text
	if text == "" {
		text = n.TTS
	}
	return FilterSpeakable(text)
}

// FilterSpeakable strips emoji and symbols a synthesizer would stumble
// over, keeping ASCII and Cyrillic letters.
func FilterSpeakable(text string) string {
	return speakableFilter.ReplaceAllString(text, "")
}
