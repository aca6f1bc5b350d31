package conversation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_Validation(t *testing.T) {
	t.Parallel()

	_, err := conversation.NewMessage(conversation.RoleCustomer, "", time.Now())
	require.ErrorIs(t, err, conversation.ErrEmptyMessage)

	_, err = conversation.NewMessage(conversation.RoleCustomer, "   ", time.Now())
	require.ErrorIs(t, err, conversation.ErrEmptyMessage)

	_, err = conversation.NewMessage(conversation.RoleCustomer, strings.Repeat("a", conversation.MaxMessageLength+1), time.Now())
	require.ErrorIs(t, err, conversation.ErrMessageTooLong)

	msg, err := conversation.NewMessage(conversation.RoleAssistant, "hi", time.Now())
	require.NoError(t, err)
	assert.Equal(t, conversation.RoleAssistant, msg.Role())
	assert.Equal(t, "hi", msg.Text())
}

func TestThread_AppendMessage(t *testing.T) {
	t.Parallel()

	thread := conversation.New(uuid.New(), "+15550001111")
	ts := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	msg, err := conversation.NewMessage(conversation.RoleCustomer, "hello", ts)
	require.NoError(t, err)

	thread = thread.AppendMessage(msg)
	require.Len(t, thread.Messages(), 1)
	assert.Equal(t, ts, thread.UpdatedAt())
}

func TestThread_HistoryCapDropsOldest(t *testing.T) {
	t.Parallel()

	thread := conversation.New(uuid.New(), "+15550001111")
	for i := 0; i < conversation.MaxMessages+10; i++ {
		msg, err := conversation.NewMessage(conversation.RoleCustomer, "message", time.Now())
		require.NoError(t, err)
		thread = thread.AppendMessage(msg)
	}
	assert.Len(t, thread.Messages(), conversation.MaxMessages)
}
