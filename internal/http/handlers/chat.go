package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"chatwidget/internal/analytics"
	"chatwidget/internal/chat"
	dbpkg "chatwidget/internal/db"
)

type createSessionRequest struct {
	TenantID  string `json:"tenantId"`
	SessionID string `json:"sessionId,omitempty"`
}

// CreateChatSession opens a conversation for an enabled tenant and records
// a session_created analytics event.
func CreateChatSession(db *gorm.DB, svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload createSessionRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.TenantID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "tenantId is required")
			return
		}

		tenant, err := dbpkg.GetTenant(db, payload.TenantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		if !tenant.Enabled {
			errResponse(ctx, fasthttp.StatusForbidden, "tenant is disabled")
			return
		}

		session, err := dbpkg.CreateSession(db, tenant.TenantID, payload.SessionID,
			string(ctx.Request.Header.UserAgent()), ctx.RemoteIP().String())
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to create session")
			return
		}

		trackChatEvent(svc, session, "session_created", nil)

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, map[string]any{
			"sessionId": session.SessionID,
			"tenantId":  session.TenantID,
			"createdAt": session.CreatedAt,
			"greeting":  tenant.Greeting,
		})
	}
}

type postMessageRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Sender    string `json:"sender,omitempty"`
}

// PostChatMessage appends one message to a session transcript. User
// messages additionally get a canned assistant reply, logged and tracked
// the same way.
func PostChatMessage(db *gorm.DB, svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload postMessageRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.SessionID == "" || payload.Message == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "sessionId and message are required")
			return
		}
		sender := payload.Sender
		if sender == "" {
			sender = "user"
		}

		session, err := dbpkg.GetSession(db, payload.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "session not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		msg, err := dbpkg.AppendMessage(db, session.SessionID, dbpkg.ChatMessage{
			Message: payload.Message,
			Sender:  sender,
		})
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to store message")
			return
		}

		trackChatEvent(svc, session, "message_sent", map[string]any{
			"sender":        sender,
			"messageLength": len(payload.Message),
		})

		response := map[string]any{"message": msg}

		if sender == "user" {
			replyText := chat.Respond(payload.Message)
			reply, err := dbpkg.AppendMessage(db, session.SessionID, dbpkg.ChatMessage{
				Message: replyText,
				Sender:  "assistant",
				Metadata: map[string]any{
					"generatedAt":  time.Now().UTC(),
					"inResponseTo": msg.ID,
				},
			})
			if err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to store reply")
				return
			}
			trackChatEvent(svc, session, "message_sent", map[string]any{
				"sender":        "assistant",
				"messageLength": len(replyText),
			})
			response["reply"] = reply
		}

		jsonResponse(ctx, response)
	}
}

type sessionEventRequest struct {
	SessionID string         `json:"sessionId"`
	EventType string         `json:"eventType"`
	EventData map[string]any `json:"eventData,omitempty"`
}

// LogSessionEvent records a widget-side event on the session log and in
// tenant analytics.
func LogSessionEvent(db *gorm.DB, svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload sessionEventRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if payload.SessionID == "" || payload.EventType == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "sessionId and eventType are required")
			return
		}

		session, err := dbpkg.GetSession(db, payload.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "session not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		event, err := dbpkg.AppendSessionEvent(db, session.SessionID, payload.EventType, payload.EventData)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to store event")
			return
		}

		trackChatEvent(svc, session, payload.EventType, payload.EventData)

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, map[string]any{"success": true, "event": event})
	}
}

// SessionDetail serves one full session transcript.
func SessionDetail(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		session, err := dbpkg.GetSession(db, pathParam(ctx, "sessionId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "session not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, session)
	}
}

// TenantSessions lists a tenant's sessions, newest first (?limit=, default 50).
func TenantSessions(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		limit, _ := ctx.QueryArgs().GetUint("limit")

		sessions, err := dbpkg.SessionsByTenant(db, tenantID, limit)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, map[string]any{
			"tenantId": tenantID,
			"sessions": sessions,
			"count":    len(sessions),
		})
	}
}

// TenantSessionStats serves conversation totals for one tenant.
func TenantSessionStats(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		stats, err := dbpkg.StatsByTenant(db, pathParam(ctx, "tenantId"))
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, stats)
	}
}

// trackChatEvent mirrors a chat action into tenant analytics. Failures are
// logged, never surfaced: losing an analytics event must not fail the chat
// request that produced it.
func trackChatEvent(svc *analytics.Service, session *dbpkg.ChatSession, eventType string, data map[string]any) {
	ev, err := svc.Track(analytics.EventInput{
		EventType: eventType,
		TenantID:  session.TenantID,
		SessionID: session.SessionID,
		Data:      data,
		UserAgent: session.UserAgent,
		IPAddress: session.IPAddress,
	})
	if err != nil {
		log.Printf("chat: failed to track %s for tenant %s: %v", eventType, session.TenantID, err)
		return
	}
	if eventsTotal != nil {
		eventsTotal.WithLabelValues(ev.TenantID, ev.EventType).Inc()
	}
}
