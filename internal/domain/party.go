package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrPartyNotFound = errors.New("watch party not found")
	ErrInvalidInput  = errors.New("invalid input")
)

// Participant is one live connection inside a watch party. Membership is
// keyed by ConnID, never by Name: two connections sharing a display name are
// distinct participants.
type Participant struct {
	ConnID string `json:"id"`
	Name   string `json:"name"`
}

// ChatMessage is a single entry in a party's append-only chat log. System
// messages (join/leave/start narration) carry no username.
type ChatMessage struct {
	Username  string    `json:"username,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	System    bool      `json:"system,omitempty"`
}

func NewSystemMessage(text string) ChatMessage {
	return ChatMessage{
		Message:   text,
		Timestamp: time.Now().UTC(),
		System:    true,
	}
}

func NewUserMessage(username, body string) (ChatMessage, error) {
	body = strings.TrimSpace(body)
	if username == "" || body == "" {
		return ChatMessage{}, ErrInvalidInput
	}
	return ChatMessage{
		Username:  username,
		Message:   body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// PartyRegistry owns the videoID → party map. All mutations go through it;
// the protocol layer never touches party state directly. Operations on
// unknown keys degrade to no-ops or empty reads rather than erroring.
type PartyRegistry interface {
	// EnsureParty creates an empty party for videoID if none exists.
	EnsureParty(videoID string)

	// AddParticipant ensures the party exists and inserts the participant
	// unless a participant with the same connection ID is already present.
	// Reports whether membership actually changed.
	AddParticipant(videoID, connID, name string) bool

	// RemoveParticipant reports whether the participant was present and
	// removed, so callers can avoid duplicate "left" broadcasts.
	RemoveParticipant(videoID, connID string) bool

	// AppendMessage appends to the party's chat log; silently ignored when
	// the party does not exist.
	AppendMessage(videoID string, msg ChatMessage)

	HasParty(videoID string) bool
	ParticipantCount(videoID string) int
	Messages(videoID string) []ChatMessage

	// IsActive reports whether the party exists and has at least one
	// participant.
	IsActive(videoID string) bool
}
