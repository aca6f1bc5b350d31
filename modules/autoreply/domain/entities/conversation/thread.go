package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrThreadNotFound = errors.New("conversation thread not found")
	ErrEmptyMessage   = errors.New("empty message")
	ErrMessageTooLong = errors.New("message too long")
)

const (
	MaxMessageLength = 4096
	MaxMessages      = 200
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Thread, error)
	GetByAddress(ctx context.Context, address string) (Thread, error)
	Save(ctx context.Context, thread Thread) (Thread, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]Thread, error)
}

// Thread is one customer conversation. History is capped; appending
// past the cap drops the oldest messages.
type Thread interface {
	ID() uuid.UUID
	TenantID() uuid.UUID
	Address() string
	SenderName() string
	CreatedAt() time.Time
	UpdatedAt() time.Time
	Messages() []Message
	AppendMessage(msg Message) Thread
}

type thread struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	address    string
	senderName string
	createdAt  time.Time
	updatedAt  time.Time
	messages   []Message
}

type Option func(*thread)

func WithID(id uuid.UUID) Option {
	return func(t *thread) {
		if id != uuid.Nil {
			t.id = id
		}
	}
}

func WithSenderName(name string) Option {
	return func(t *thread) {
		t.senderName = name
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *thread) {
		if !createdAt.IsZero() {
			t.createdAt = createdAt
		}
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *thread) {
		if !updatedAt.IsZero() {
			t.updatedAt = updatedAt
		}
	}
}

func WithMessages(messages []Message) Option {
	return func(t *thread) {
		t.messages = messages
	}
}

func New(tenantID uuid.UUID, address string, opts ...Option) Thread {
	t := &thread{
		id:        uuid.New(),
		tenantID:  tenantID,
		address:   address,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *thread) ID() uuid.UUID        { return t.id }
func (t *thread) TenantID() uuid.UUID  { return t.tenantID }
func (t *thread) Address() string      { return t.address }
func (t *thread) SenderName() string   { return t.senderName }
func (t *thread) CreatedAt() time.Time { return t.createdAt }
func (t *thread) UpdatedAt() time.Time { return t.updatedAt }
func (t *thread) Messages() []Message  { return t.messages }

func (t *thread) AppendMessage(msg Message) Thread {
	if msg == nil {
		return t
	}
	t.messages = append(t.messages, msg)
	if len(t.messages) > MaxMessages {
		t.messages = t.messages[len(t.messages)-MaxMessages:]
	}
	t.updatedAt = msg.Timestamp()
	return t
}
