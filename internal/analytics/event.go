package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is a single analytics record as stored on disk, one JSON object
// per shard line. Events are immutable once written; the timestamp is
// always assigned at ingestion time, never taken from the caller.
type Event struct {
	EventType string         `json:"eventType"`
	TenantID  string         `json:"tenantId"`
	SessionID string         `json:"sessionId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	UserAgent string         `json:"userAgent,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
}

// EventInput is the caller-supplied portion of an event. The Data payload
// is deliberately schema-less so new event shapes don't require changes
// here; it is never validated beyond being a mapping.
type EventInput struct {
	EventType string         `json:"eventType"`
	TenantID  string         `json:"tenantId"`
	SessionID string         `json:"sessionId"`
	Data      map[string]any `json:"data"`
	UserAgent string         `json:"-"`
	IPAddress string         `json:"-"`
}

// ErrValidation marks a structurally invalid event or request. Handlers
// translate it to a client error; it is never retried.
var ErrValidation = errors.New("validation failed")

// StorageError wraps an I/O failure on a shard. Append failures carry it
// to the caller; read/delete failures during multi-shard operations are
// logged and skipped instead.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("analytics storage: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (in EventInput) validate() error {
	if in.EventType == "" {
		return fmt.Errorf("%w: eventType is required", ErrValidation)
	}
	if in.TenantID == "" {
		return fmt.Errorf("%w: tenantId is required", ErrValidation)
	}
	// The tenant id names the shard file, so it must stay a plain path
	// component.
	if strings.ContainsAny(in.TenantID, `/\`) {
		return fmt.Errorf("%w: tenantId must not contain path separators", ErrValidation)
	}
	return nil
}
