package middleware

import (
	"time"

	"github.com/valyala/fasthttp"

	"chatwidget/internal/analytics"
	"chatwidget/internal/config"
)

// Telemetry records this instance's own API traffic as analytics events
// under the tenant named by APP_INTERNAL_TENANT, so the service can be
// observed through its own reporting endpoints. When no internal tenant
// is configured, this middleware does nothing.
func Telemetry(cfg *config.Config, svc *analytics.Service) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if cfg.InternalTenant == "" {
		return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
			return next
		}
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			duration := time.Since(start)

			path := string(ctx.Path())
			// Skip the ingestion path itself plus noise endpoints.
			switch path {
			case "/api/analytics/event", "/healthz", "/login", "/widget.js":
				return
			}

			input := analytics.EventInput{
				EventType: "api_request",
				TenantID:  cfg.InternalTenant,
				Data: map[string]any{
					"path":        path,
					"method":      string(ctx.Method()),
					"status":      ctx.Response.StatusCode(),
					"duration_ms": duration.Milliseconds(),
				},
				UserAgent: string(ctx.Request.Header.UserAgent()),
				IPAddress: ctx.RemoteIP().String(),
			}
			go func() {
				_, _ = svc.Track(input)
			}()
		}
	}
}
