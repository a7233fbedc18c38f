package models

import "time"

// ChatMessage описывает входящее сообщение чата, независимое от транспорта.
type ChatMessage struct {
	Text          string    `json:"text"`
	UserID        string    `json:"userId"`
	Username      string    `json:"username"`
	IsModerator   bool      `json:"isModerator"`
	IsBroadcaster bool      `json:"isBroadcaster"`
	SentAt        time.Time `json:"sentAt,omitempty"`
}

// Caller описывает роль и идентификатор того, кто вызывает команду.
type Caller struct {
	UserID        string
	IsModerator   bool
	IsBroadcaster bool
}

func (m *ChatMessage) Caller() Caller {
	return Caller{
		UserID:        m.UserID,
		IsModerator:   m.IsModerator,
		IsBroadcaster: m.IsBroadcaster,
	}
}
