package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateSessionGeneratesID(t *testing.T) {
	conn := testDB(t)

	session, err := CreateSession(conn, "acme", "", "test-agent", "127.0.0.1")
	require.NoError(t, err)
	assert.True(t, len(session.SessionID) > len("sess-"))
	assert.Equal(t, "acme", session.TenantID)
	assert.Equal(t, 0, session.MessageCount)
	assert.Nil(t, session.FirstMessageAt)
}

func TestCreateSessionHonorsCallerID(t *testing.T) {
	conn := testDB(t)

	session, err := CreateSession(conn, "acme", "sess-resume", "", "")
	require.NoError(t, err)
	assert.Equal(t, "sess-resume", session.SessionID)
}

func TestAppendMessageBookkeeping(t *testing.T) {
	conn := testDB(t)
	session, err := CreateSession(conn, "acme", "", "", "")
	require.NoError(t, err)

	first, err := AppendMessage(conn, session.SessionID, ChatMessage{Message: "hi", Sender: "user"})
	require.NoError(t, err)
	assert.Contains(t, first.ID, "msg-")

	_, err = AppendMessage(conn, session.SessionID, ChatMessage{Message: "hello!", Sender: "assistant"})
	require.NoError(t, err)

	loaded, err := GetSession(conn, session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.MessageCount)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, "hi", loaded.Messages[0].Message)
	assert.Equal(t, "assistant", loaded.Messages[1].Sender)
	require.NotNil(t, loaded.FirstMessageAt)
	require.NotNil(t, loaded.LastMessageAt)
	assert.False(t, loaded.LastMessageAt.Before(*loaded.FirstMessageAt))
}

func TestAppendMessageUnknownSession(t *testing.T) {
	conn := testDB(t)

	_, err := AppendMessage(conn, "sess-missing", ChatMessage{Message: "hi"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAppendSessionEvent(t *testing.T) {
	conn := testDB(t)
	session, err := CreateSession(conn, "acme", "", "", "")
	require.NoError(t, err)

	event, err := AppendSessionEvent(conn, session.SessionID, "widget_opened", map[string]any{"page": "/pricing"})
	require.NoError(t, err)
	assert.Contains(t, event.ID, "evt-")

	loaded, err := GetSession(conn, session.SessionID)
	require.NoError(t, err)
	require.Len(t, loaded.Events, 1)
	assert.Equal(t, "widget_opened", loaded.Events[0].Type)
}

func TestSessionsByTenantLimitAndIsolation(t *testing.T) {
	conn := testDB(t)

	for i := 0; i < 3; i++ {
		_, err := CreateSession(conn, "acme", "", "", "")
		require.NoError(t, err)
	}
	_, err := CreateSession(conn, "other", "", "", "")
	require.NoError(t, err)

	sessions, err := SessionsByTenant(conn, "acme", 2)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	all, err := SessionsByTenant(conn, "acme", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, s := range all {
		assert.Equal(t, "acme", s.TenantID)
	}
}

func TestStatsByTenant(t *testing.T) {
	conn := testDB(t)

	s1, err := CreateSession(conn, "acme", "", "", "")
	require.NoError(t, err)
	s2, err := CreateSession(conn, "acme", "", "", "")
	require.NoError(t, err)

	_, err = AppendMessage(conn, s1.SessionID, ChatMessage{Message: "a", Sender: "user"})
	require.NoError(t, err)
	_, err = AppendMessage(conn, s1.SessionID, ChatMessage{Message: "b", Sender: "assistant"})
	require.NoError(t, err)
	_, err = AppendMessage(conn, s2.SessionID, ChatMessage{Message: "c", Sender: "user"})
	require.NoError(t, err)

	stats, err := StatsByTenant(conn, "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, 3, stats.TotalMessages)
	assert.InDelta(t, 1.5, stats.AvgMessagesPerSession, 0.001)
	assert.NotNil(t, stats.LastActivity)
}

func TestStatsByTenantEmpty(t *testing.T) {
	conn := testDB(t)

	stats, err := StatsByTenant(conn, "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, 0.0, stats.AvgMessagesPerSession)
	assert.Nil(t, stats.LastActivity)
}
