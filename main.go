package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"chatwidget/internal/analytics"
	"chatwidget/internal/config"
	"chatwidget/internal/db"
	"chatwidget/internal/http/handlers"
	appmw "chatwidget/internal/http/middleware"
	ui "chatwidget/web"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := db.EnsureBootstrapAdmin(sqlDB, cfg); err != nil {
		log.Fatalf("failed to ensure bootstrap admin: %v", err)
	}

	svc := analytics.NewService(analytics.NewFileStore(cfg.AnalyticsDir()))
	analytics.StartRetentionWorker(svc, cfg.RetentionDays)

	handlers.InitPrometheusMetrics()

	r := router.New()

	// Global middleware chain: request logger, then self-telemetry, then router
	handler := handlers.RequestLogger(appmw.Telemetry(cfg, svc)(r.Handler))

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.ServeFS("/static/{filepath:*}", ui.StaticFS())
	r.GET("/widget.js", func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/javascript; charset=utf-8")
		ctx.SetBody(ui.WidgetScript())
	})

	r.GET("/login", handlers.LoginForm(cfg))
	r.POST("/login", handlers.LoginSubmit(sqlDB))
	r.POST("/logout", handlers.Logout())

	r.GET("/", appmw.AdminAuth(sqlDB, cfg)(handlers.Dashboard(sqlDB, cfg)))

	r.POST("/admin/users/create", appmw.AdminAuth(sqlDB, cfg)(handlers.CreateUser(sqlDB)))
	r.POST("/admin/users/{id}/reset-password", appmw.AdminAuth(sqlDB, cfg)(handlers.ResetPassword(sqlDB, cfg)))
	r.POST("/admin/users/{id}/delete", appmw.AdminAuth(sqlDB, cfg)(handlers.DeleteUser(sqlDB, cfg)))

	// Widget-facing API (no auth; the tenant id scopes everything)
	r.GET("/api/config/{tenantId}", handlers.WidgetConfig(sqlDB))
	r.POST("/api/chat/session", handlers.CreateChatSession(sqlDB, svc))
	r.POST("/api/chat/message", handlers.PostChatMessage(sqlDB, svc))
	r.POST("/api/chat/event", handlers.LogSessionEvent(sqlDB, svc))
	r.POST("/api/analytics/event", handlers.TrackEvent(svc))

	// Admin API
	r.GET("/api/config", appmw.AdminAuth(sqlDB, cfg)(handlers.ListTenantConfigs(sqlDB)))
	r.POST("/api/config", appmw.AdminAuth(sqlDB, cfg)(handlers.CreateTenantConfig(sqlDB, cfg)))
	r.PUT("/api/config/{tenantId}", appmw.AdminAuth(sqlDB, cfg)(handlers.UpdateTenantConfig(sqlDB)))
	r.DELETE("/api/config/{tenantId}", appmw.AdminAuth(sqlDB, cfg)(handlers.DeleteTenantConfig(sqlDB)))
	r.GET("/api/config/{tenantId}/stats", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantStats(sqlDB)))
	r.GET("/api/config/{tenantId}/embed", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantEmbed(sqlDB, cfg)))

	r.GET("/api/chat/session/{sessionId}", appmw.AdminAuth(sqlDB, cfg)(handlers.SessionDetail(sqlDB)))
	r.GET("/api/chat/tenant/{tenantId}/sessions", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantSessions(sqlDB)))
	r.GET("/api/chat/tenant/{tenantId}/stats", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantSessionStats(sqlDB)))

	r.GET("/api/analytics/tenant/{tenantId}/overview", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantOverview(svc)))
	r.GET("/api/analytics/tenant/{tenantId}/metrics", appmw.AdminAuth(sqlDB, cfg)(handlers.DailyMetricsHandler(svc)))
	r.GET("/api/analytics/tenant/{tenantId}/report", appmw.AdminAuth(sqlDB, cfg)(handlers.ReportHandler(svc)))
	r.GET("/api/analytics/tenant/{tenantId}/events", appmw.AdminAuth(sqlDB, cfg)(handlers.EventSummary(svc)))
	r.POST("/api/analytics/cleanup", appmw.AdminAuth(sqlDB, cfg)(handlers.Cleanup(svc, cfg)))
	r.GET("/api/analytics/status", appmw.AdminAuth(sqlDB, cfg)(handlers.StatusHandler(svc)))

	r.GET("/v1/metrics", appmw.AdminAuth(sqlDB, cfg)(handlers.TenantMetricsHandler()))

	log.Printf("chatwidget listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
