package handlers

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"chatwidget/internal/config"
	dbpkg "chatwidget/internal/db"
)

type tenantPayload struct {
	TenantID  string        `json:"tenantId,omitempty"`
	BrandName string        `json:"brandName,omitempty"`
	LogoURL   string        `json:"logoUrl,omitempty"`
	Theme     *dbpkg.Theme  `json:"theme,omitempty"`
	Position  string        `json:"position,omitempty"`
	Greeting  string        `json:"greeting,omitempty"`
	Enabled   *bool         `json:"enabled,omitempty"`
	Features  *featureFlags `json:"features,omitempty"`
}

// featureFlags uses pointers so an omitted flag is distinguishable from an
// explicit false.
type featureFlags struct {
	Analytics        *bool `json:"analytics,omitempty"`
	SessionRecording *bool `json:"sessionRecording,omitempty"`
	FileUpload       *bool `json:"fileUpload,omitempty"`
}

// WidgetConfig serves the public configuration subset the embedded widget
// fetches at load time. No auth: the tenant id is the only lookup key.
func WidgetConfig(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, err := dbpkg.GetTenant(db, pathParam(ctx, "tenantId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, tenant.PublicConfig())
	}
}

// ListTenantConfigs serves all tenant configurations for the dashboard.
func ListTenantConfigs(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenants, err := dbpkg.ListTenants(db)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		configs := make([]map[string]any, 0, len(tenants))
		for i := range tenants {
			configs = append(configs, tenants[i].PublicConfig())
		}
		jsonResponse(ctx, map[string]any{"tenants": configs, "count": len(configs)})
	}
}

// CreateTenantConfig provisions a tenant and returns its config plus the
// embed snippet the customer pastes into their site.
func CreateTenantConfig(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var payload tenantPayload
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		tenant := tenantFromPayload(&payload)
		if err := dbpkg.CreateTenant(db, tenant); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "failed to create tenant (tenantId may already exist)")
			return
		}

		ctx.SetStatusCode(fasthttp.StatusCreated)
		jsonResponse(ctx, map[string]any{
			"config":    tenant.PublicConfig(),
			"embedCode": tenant.EmbedCode(cfg.CDNBaseURL),
		})
	}
}

// UpdateTenantConfig applies a partial update; omitted fields keep their
// stored values.
func UpdateTenantConfig(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, err := dbpkg.GetTenant(db, pathParam(ctx, "tenantId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		var payload tenantPayload
		if err := json.Unmarshal(ctx.PostBody(), &payload); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		if payload.BrandName != "" {
			tenant.BrandName = payload.BrandName
		}
		if payload.LogoURL != "" {
			tenant.LogoURL = payload.LogoURL
		}
		if payload.Position != "" {
			tenant.Position = payload.Position
		}
		if payload.Greeting != "" {
			tenant.Greeting = payload.Greeting
		}
		if payload.Enabled != nil {
			tenant.Enabled = *payload.Enabled
		}
		if payload.Theme != nil {
			theme := tenant.Theme.Data()
			if payload.Theme.PrimaryColor != "" {
				theme.PrimaryColor = payload.Theme.PrimaryColor
			}
			if payload.Theme.SecondaryColor != "" {
				theme.SecondaryColor = payload.Theme.SecondaryColor
			}
			if payload.Theme.FontFamily != "" {
				theme.FontFamily = payload.Theme.FontFamily
			}
			if payload.Theme.BorderRadius != "" {
				theme.BorderRadius = payload.Theme.BorderRadius
			}
			tenant.Theme = datatypes.NewJSONType(theme)
		}
		if payload.Features != nil {
			features := tenant.Features.Data()
			if payload.Features.Analytics != nil {
				features.Analytics = *payload.Features.Analytics
			}
			if payload.Features.SessionRecording != nil {
				features.SessionRecording = *payload.Features.SessionRecording
			}
			if payload.Features.FileUpload != nil {
				features.FileUpload = *payload.Features.FileUpload
			}
			tenant.Features = datatypes.NewJSONType(features)
		}

		if err := dbpkg.SaveTenant(db, tenant); err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to save tenant")
			return
		}
		jsonResponse(ctx, tenant.PublicConfig())
	}
}

// DeleteTenantConfig removes a tenant configuration.
func DeleteTenantConfig(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		if err := dbpkg.DeleteTenant(db, pathParam(ctx, "tenantId")); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to delete tenant")
			return
		}
		jsonResponse(ctx, map[string]any{"success": true})
	}
}

// TenantStats serves conversation totals for one tenant.
func TenantStats(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenantID := pathParam(ctx, "tenantId")
		if _, err := dbpkg.GetTenant(db, tenantID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}

		stats, err := dbpkg.StatsByTenant(db, tenantID)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, stats)
	}
}

// TenantEmbed returns the embed snippet for an existing tenant.
func TenantEmbed(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		tenant, err := dbpkg.GetTenant(db, pathParam(ctx, "tenantId"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				errResponse(ctx, fasthttp.StatusNotFound, "tenant not found")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "database error")
			return
		}
		jsonResponse(ctx, map[string]any{
			"tenantId":  tenant.TenantID,
			"embedCode": tenant.EmbedCode(cfg.CDNBaseURL),
		})
	}
}

func tenantFromPayload(p *tenantPayload) *dbpkg.Tenant {
	tenant := &dbpkg.Tenant{
		TenantID:  p.TenantID,
		BrandName: p.BrandName,
		LogoURL:   p.LogoURL,
		Position:  p.Position,
		Greeting:  p.Greeting,
		Enabled:   true,
	}
	if p.Enabled != nil {
		tenant.Enabled = *p.Enabled
	}
	if p.Theme != nil {
		tenant.Theme = datatypes.NewJSONType(*p.Theme)
	}

	features := dbpkg.DefaultFeatures()
	if p.Features != nil {
		if p.Features.Analytics != nil {
			features.Analytics = *p.Features.Analytics
		}
		if p.Features.SessionRecording != nil {
			features.SessionRecording = *p.Features.SessionRecording
		}
		if p.Features.FileUpload != nil {
			features.FileUpload = *p.Features.FileUpload
		}
	}
	tenant.Features = datatypes.NewJSONType(features)
	return tenant
}
