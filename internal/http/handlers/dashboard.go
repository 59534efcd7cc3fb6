package handlers

import (
	"bytes"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"chatwidget/internal/config"
	dbpkg "chatwidget/internal/db"
	ui "chatwidget/web"
)

type dashboardTenant struct {
	Tenant    dbpkg.Tenant
	EmbedCode string
	Stats     *dbpkg.SessionStats
}

type dashboardData struct {
	Title     string
	Username  string
	IsAdmin   bool
	AdminUser string
	Tenants   []dashboardTenant
	Users     []dbpkg.User
}

// Dashboard renders the admin landing page: every tenant with its embed
// snippet and conversation totals, plus user management for admins.
func Dashboard(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}

		tenants, err := dbpkg.ListTenants(db)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to load tenants")
			return
		}

		rows := make([]dashboardTenant, 0, len(tenants))
		for i := range tenants {
			stats, err := dbpkg.StatsByTenant(db, tenants[i].TenantID)
			if err != nil {
				stats = &dbpkg.SessionStats{TenantID: tenants[i].TenantID}
			}
			rows = append(rows, dashboardTenant{
				Tenant:    tenants[i],
				EmbedCode: tenants[i].EmbedCode(cfg.CDNBaseURL),
				Stats:     stats,
			})
		}

		data := dashboardData{
			Title:     "Tenants",
			Username:  user.Username,
			IsAdmin:   user.IsAdmin || user.Username == cfg.AdminUser,
			AdminUser: cfg.AdminUser,
			Tenants:   rows,
		}

		if data.IsAdmin {
			if err := db.Order("created_at DESC").Find(&data.Users).Error; err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to load users")
				return
			}
		}

		renderDashboard(ctx, data)
	}
}

func renderDashboard(ctx *fasthttp.RequestCtx, data dashboardData) {
	var buf bytes.Buffer
	if err := ui.Templates().ExecuteTemplate(&buf, "dashboard", data); err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("render error")
		return
	}
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBody(buf.Bytes())
}
