package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"chatwidget/internal/analytics"
	"chatwidget/internal/config"
)

var eventsTotal *prometheus.CounterVec

func InitPrometheusMetrics() {
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "chatwidget",
			Name:      "events_total",
			Help:      "Total number of ingested widget analytics events.",
		},
		[]string{"tenant", "event_type"},
	)
	prometheus.MustRegister(eventsTotal)
}

type trackEventRequest struct {
	EventType string         `json:"eventType"`
	TenantID  string         `json:"tenantId"`
	SessionID string         `json:"sessionId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// TrackEvent ingests one widget event. The transport layer supplies the user
// agent and client IP; the event timestamp is assigned server-side.
func TrackEvent(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload trackEventRequest
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		ev, err := svc.Track(analytics.EventInput{
			EventType: payload.EventType,
			TenantID:  payload.TenantID,
			SessionID: payload.SessionID,
			Data:      payload.Data,
			UserAgent: string(ctx.Request.Header.UserAgent()),
			IPAddress: ctx.RemoteIP().String(),
		})
		if err != nil {
			if errors.Is(err, analytics.ErrValidation) {
				errResponse(ctx, fasthttp.StatusBadRequest, "eventType and tenantId are required")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to store event")
			return
		}

		eventsTotal.WithLabelValues(ev.TenantID, ev.EventType).Inc()

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, map[string]any{
			"success": true,
			"eventId": ev.Timestamp.Format(time.RFC3339Nano),
		})
	}
}

// TenantOverview serves the recomputed event summary for the last N days
// (default 7).
func TenantOverview(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		if tenantID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "tenantId required")
			return
		}

		overview, err := svc.Overview(tenantID, queryDays(ctx, 7))
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to build overview")
			return
		}
		jsonResponse(ctx, overview)
	}
}

// DailyMetricsHandler serves the gap-free per-day series (default 30 days).
func DailyMetricsHandler(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		if tenantID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "tenantId required")
			return
		}

		metrics, err := svc.Metrics(tenantID, queryDays(ctx, 30))
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to build metrics")
			return
		}
		jsonResponse(ctx, metrics)
	}
}

// ReportHandler serves the full tenant report. With download=true the
// response carries attachment framing so browsers save it as a file.
func ReportHandler(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		if tenantID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "tenantId required")
			return
		}

		report, err := svc.Report(tenantID, queryDays(ctx, 30))
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to build report")
			return
		}

		if string(ctx.QueryArgs().Peek("download")) == "true" {
			filename := fmt.Sprintf("analytics_%s_%s.json", tenantID, time.Now().UTC().Format("2006-01-02"))
			ctx.Response.Header.Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))
		}
		jsonResponse(ctx, report)
	}
}

// EventSummary serves just the event-type counts for a tenant window.
func EventSummary(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		if tenantID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "tenantId required")
			return
		}

		days := queryDays(ctx, 7)
		overview, err := svc.Overview(tenantID, days)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to summarize events")
			return
		}
		jsonResponse(ctx, map[string]any{
			"tenantId":       tenantID,
			"period":         fmt.Sprintf("%d days", days),
			"eventTypes":     overview.EventTypes,
			"totalEvents":    overview.TotalEvents,
			"uniqueSessions": overview.UniqueSessions,
		})
	}
}

type cleanupRequest struct {
	DaysToKeep int `json:"daysToKeep"`
}

// Cleanup triggers an on-demand retention sweep. An absent or non-positive
// daysToKeep falls back to the configured retention window.
func Cleanup(svc *analytics.Service, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload cleanupRequest
		if len(ctx.PostBody()) > 0 {
			if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
				errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
				return
			}
		}
		daysToKeep := payload.DaysToKeep
		if daysToKeep <= 0 {
			daysToKeep = cfg.RetentionDays
		}

		cleaned, cutoff, err := svc.Sweep(daysToKeep)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "cleanup failed")
			return
		}
		jsonResponse(ctx, map[string]any{
			"success":      true,
			"message":      fmt.Sprintf("removed %d expired shard files", cleaned),
			"cleanedFiles": cleaned,
			"cutoffDate":   cutoff.Format("2006-01-02"),
		})
	}
}

// StatusHandler reports per-shard storage metadata for operators.
func StatusHandler(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		status, err := svc.Status()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to inspect event store")
			return
		}
		jsonResponse(ctx, status)
	}
}
