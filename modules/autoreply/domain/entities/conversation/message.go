package conversation

import (
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAssistant Role = "assistant"
)

type Message interface {
	Role() Role
	Text() string
	Timestamp() time.Time
}

type message struct {
	role      Role
	text      string
	timestamp time.Time
}

func NewMessage(role Role, text string, timestamp time.Time) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > MaxMessageLength {
		return nil, ErrMessageTooLong
	}
	return &message{
		role:      role,
		text:      text,
		timestamp: timestamp,
	}, nil
}

func (m *message) Role() Role           { return m.role }
func (m *message) Text() string         { return m.text }
func (m *message) Timestamp() time.Time { return m.timestamp }
