package handlers

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"chatwidget/internal/analytics"
	"chatwidget/internal/config"
)

func TestMain(m *testing.M) {
	InitPrometheusMetrics()
	os.Exit(m.Run())
}

func newAnalyticsService(t *testing.T) *analytics.Service {
	t.Helper()
	return analytics.NewService(analytics.NewFileStore(t.TempDir()))
}

func postCtx(path, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI(path)
	ctx.Request.SetBodyString(body)
	return ctx
}

func getCtx(path string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	ctx.Request.SetRequestURI(path)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &out))
	return out
}

func TestTrackEventSuccess(t *testing.T) {
	svc := newAnalyticsService(t)
	handler := TrackEvent(svc)

	ctx := postCtx("/api/analytics/event", `{"eventType":"widget_opened","tenantId":"acme","sessionId":"s1"}`)
	ctx.Request.Header.SetUserAgent("test-agent")
	handler(ctx)

	require.Equal(t, fasthttp.StatusCreated, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, true, body["success"])

	ackTime, err := time.Parse(time.RFC3339Nano, body["eventId"].(string))
	require.NoError(t, err)

	events, err := svc.CollectRange("acme", ackTime, ackTime)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "widget_opened", events[0].EventType)
	assert.Equal(t, "test-agent", events[0].UserAgent)
	assert.True(t, events[0].Timestamp.Equal(ackTime))
}

func TestTrackEventValidation(t *testing.T) {
	handler := TrackEvent(newAnalyticsService(t))

	tests := []struct {
		name string
		body string
	}{
		{"missing tenantId", `{"eventType":"click"}`},
		{"missing eventType", `{"tenantId":"acme"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := postCtx("/api/analytics/event", tt.body)
			handler(ctx)

			require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
			body := decodeBody(t, ctx)
			assert.Equal(t, "eventType and tenantId are required", body["error"])
		})
	}
}

func TestTrackEventMalformedJSON(t *testing.T) {
	handler := TrackEvent(newAnalyticsService(t))

	ctx := postCtx("/api/analytics/event", `{not json`)
	handler(ctx)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestTenantOverviewDefaultWindow(t *testing.T) {
	svc := newAnalyticsService(t)
	_, err := svc.Track(analytics.EventInput{EventType: "click", TenantID: "acme", SessionID: "s1"})
	require.NoError(t, err)

	ctx := getCtx("/api/analytics/tenant/acme/overview")
	ctx.SetUserValue("tenantId", "acme")
	TenantOverview(svc)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var overview analytics.Overview
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &overview))
	assert.Equal(t, "acme", overview.TenantID)
	assert.Equal(t, 1, overview.TotalEvents)
	assert.Len(t, overview.DailyBreakdown, 7)
}

func TestDailyMetricsDaysParam(t *testing.T) {
	svc := newAnalyticsService(t)

	ctx := getCtx("/api/analytics/tenant/acme/metrics?days=3")
	ctx.SetUserValue("tenantId", "acme")
	DailyMetricsHandler(svc)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var metrics analytics.DailyMetrics
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &metrics))
	assert.Equal(t, "3 days", metrics.Period)
	assert.Len(t, metrics.Metrics, 3)
}

func TestReportDownloadFraming(t *testing.T) {
	svc := newAnalyticsService(t)

	ctx := getCtx("/api/analytics/tenant/acme/report?download=true")
	ctx.SetUserValue("tenantId", "acme")
	ReportHandler(svc)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	disposition := string(ctx.Response.Header.Peek("Content-Disposition"))
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, "analytics_acme_")
}

func TestCleanupDefaultsToConfiguredRetention(t *testing.T) {
	svc := newAnalyticsService(t)
	cfg := &config.Config{RetentionDays: 90}

	ctx := postCtx("/api/analytics/cleanup", ``)
	Cleanup(svc, cfg)(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := decodeBody(t, ctx)
	assert.Equal(t, true, body["success"])

	wantCutoff := time.Now().UTC().AddDate(0, 0, -90).Format("2006-01-02")
	assert.Equal(t, wantCutoff, body["cutoffDate"])
}

func TestStatusEmptyStore(t *testing.T) {
	ctx := getCtx("/api/analytics/status")
	StatusHandler(newAnalyticsService(t))(ctx)

	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var status analytics.Status
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, 0, status.TotalFiles)
}
