package ws

import "github.com/roadpeak/foolu/internal/domain"

// ClientFrame is the wire shape of every inbound action. Fields not relevant
// to an action are simply left empty; validation happens per handler.
type ClientFrame struct {
	Action   string `json:"action"`
	VideoID  string `json:"videoId"`
	Username string `json:"username"`
	Message  string `json:"message,omitempty"`
}

// Envelope is the wire shape of every outbound event.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func NewReceiveMessage(msg domain.ChatMessage) Envelope {
	return Envelope{
		Event: EventReceiveMessage,
		Data:  msg,
	}
}

func NewParticipantCount(count int) Envelope {
	return Envelope{
		Event: EventUpdateParticipants,
		Data:  count,
	}
}

func NewInitialChatMessages(messages []domain.ChatMessage) Envelope {
	return Envelope{
		Event: EventInitialChatMessages,
		Data:  messages,
	}
}
