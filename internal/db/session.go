package db

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatMessage is one transcript entry inside a session.
type ChatMessage struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Sender    string         `json:"sender"` // "user" or "assistant"
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SessionEvent is a widget-side event scoped to one session, kept with
// the transcript for the session log view. Tenant-level analytics events
// are tracked separately by the analytics service.
type SessionEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// ChatSession is one end user's conversation with a tenant's widget.
// The transcript is stored denormalized as JSON; sessions are read and
// written whole.
type ChatSession struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	SessionID string `gorm:"uniqueIndex;size:64;not null"`
	TenantID  string `gorm:"index;size:128;not null"`

	Messages datatypes.JSONSlice[ChatMessage]  `gorm:"type:json"`
	Events   datatypes.JSONSlice[SessionEvent] `gorm:"type:json"`

	MessageCount   int
	FirstMessageAt *time.Time
	LastMessageAt  *time.Time

	UserAgent string `gorm:"size:512"`
	IPAddress string `gorm:"size:64"`
}

// CreateSession opens a new session for a tenant. A caller-supplied
// session id is honored so widgets can resume after a reload; empty means
// generate one.
func CreateSession(db *gorm.DB, tenantID, sessionID, userAgent, ipAddress string) (*ChatSession, error) {
	if sessionID == "" {
		sessionID = "sess-" + uuid.NewString()
	}
	session := &ChatSession{
		SessionID: sessionID,
		TenantID:  tenantID,
		Messages:  datatypes.JSONSlice[ChatMessage]{},
		Events:    datatypes.JSONSlice[SessionEvent]{},
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession loads a session by its public id.
func GetSession(db *gorm.DB, sessionID string) (*ChatSession, error) {
	var s ChatSession
	if err := db.Where("session_id = ?", sessionID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// AppendMessage adds one transcript entry and updates the session's
// message bookkeeping.
func AppendMessage(db *gorm.DB, sessionID string, msg ChatMessage) (*ChatMessage, error) {
	session, err := GetSession(db, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg.ID = "msg-" + uuid.NewString()
	msg.Timestamp = now

	session.Messages = append(session.Messages, msg)
	session.MessageCount = len(session.Messages)
	session.LastMessageAt = &now
	if session.FirstMessageAt == nil {
		session.FirstMessageAt = &now
	}

	if err := db.Save(session).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// AppendSessionEvent records a widget event on the session log.
func AppendSessionEvent(db *gorm.DB, sessionID, eventType string, data map[string]any) (*SessionEvent, error) {
	session, err := GetSession(db, sessionID)
	if err != nil {
		return nil, err
	}

	event := SessionEvent{
		ID:        "evt-" + uuid.NewString(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
	session.Events = append(session.Events, event)

	if err := db.Save(session).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// SessionsByTenant returns a tenant's sessions, newest first.
func SessionsByTenant(db *gorm.DB, tenantID string, limit int) ([]ChatSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []ChatSession
	if err := db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// SessionStats is the per-tenant conversation summary for the dashboard.
type SessionStats struct {
	TenantID              string     `json:"tenantId"`
	TotalSessions         int        `json:"totalSessions"`
	TotalMessages         int        `json:"totalMessages"`
	AvgMessagesPerSession float64    `json:"avgMessagesPerSession"`
	LastActivity          *time.Time `json:"lastActivity"`
}

// StatsByTenant aggregates session counts for one tenant.
func StatsByTenant(db *gorm.DB, tenantID string) (*SessionStats, error) {
	var sessions []ChatSession
	if err := db.Where("tenant_id = ?", tenantID).
		Order("updated_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}

	stats := &SessionStats{TenantID: tenantID, TotalSessions: len(sessions)}
	for _, s := range sessions {
		stats.TotalMessages += s.MessageCount
	}
	if stats.TotalSessions > 0 {
		avg := float64(stats.TotalMessages) / float64(stats.TotalSessions)
		stats.AvgMessagesPerSession = math.Round(avg*100) / 100
		last := sessions[0].UpdatedAt
		stats.LastActivity = &last
	}
	return stats, nil
}
