package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Theme is the widget branding block stored as JSON on the tenant row.
type Theme struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily"`
	BorderRadius   string `json:"borderRadius"`
}

// Features toggles optional widget behavior per tenant.
type Features struct {
	Analytics        bool `json:"analytics"`
	SessionRecording bool `json:"sessionRecording"`
	FileUpload       bool `json:"fileUpload"`
}

// Tenant is one customer site's widget configuration.
type Tenant struct {
	ID uint `gorm:"primaryKey"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// TenantID is the public identifier widgets embed; it never changes
	// after creation.
	TenantID string `gorm:"uniqueIndex;size:128;not null"`

	BrandName string `gorm:"size:128"`
	LogoURL   string `gorm:"size:512"`

	Theme datatypes.JSONType[Theme] `gorm:"type:json"`

	// Position is the widget's screen corner, e.g. "bottom-right".
	Position string `gorm:"size:32"`
	Greeting string `gorm:"size:512"`

	Enabled bool `gorm:"default:true"`

	Features datatypes.JSONType[Features] `gorm:"type:json"`
}

func DefaultTheme() Theme {
	return Theme{
		PrimaryColor:   "#007bff",
		SecondaryColor: "#6c757d",
		FontFamily:     "Arial, sans-serif",
		BorderRadius:   "8px",
	}
}

func DefaultFeatures() Features {
	return Features{Analytics: true, SessionRecording: true}
}

// CreateTenant persists a new tenant, generating a tenant id and filling
// branding defaults for anything the caller left empty.
func CreateTenant(db *gorm.DB, t *Tenant) error {
	if t.TenantID == "" {
		t.TenantID = "tenant-" + uuid.NewString()
	}
	if t.BrandName == "" {
		t.BrandName = "Demo Shop"
	}
	if t.Position == "" {
		t.Position = "bottom-right"
	}
	if t.Greeting == "" {
		t.Greeting = "Hi! Need help finding the right wheels for your vehicle?"
	}

	theme := t.Theme.Data()
	def := DefaultTheme()
	if theme.PrimaryColor == "" {
		theme.PrimaryColor = def.PrimaryColor
	}
	if theme.SecondaryColor == "" {
		theme.SecondaryColor = def.SecondaryColor
	}
	if theme.FontFamily == "" {
		theme.FontFamily = def.FontFamily
	}
	if theme.BorderRadius == "" {
		theme.BorderRadius = def.BorderRadius
	}
	t.Theme = datatypes.NewJSONType(theme)

	return db.Create(t).Error
}

// GetTenant loads a tenant by its public id. Returns
// gorm.ErrRecordNotFound for unknown tenants.
func GetTenant(db *gorm.DB, tenantID string) (*Tenant, error) {
	var t Tenant
	if err := db.Where("tenant_id = ?", tenantID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants, newest first.
func ListTenants(db *gorm.DB) ([]Tenant, error) {
	var tenants []Tenant
	if err := db.Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// SaveTenant writes back an updated tenant row. The tenant id is part of
// the row's identity and is never rewritten here.
func SaveTenant(db *gorm.DB, t *Tenant) error {
	return db.Save(t).Error
}

// DeleteTenant removes a tenant config. Analytics shards for the tenant
// are left to the retention sweeper.
func DeleteTenant(db *gorm.DB, tenantID string) error {
	res := db.Where("tenant_id = ?", tenantID).Delete(&Tenant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PublicConfig is the subset of the tenant config the widget is allowed
// to see.
func (t *Tenant) PublicConfig() map[string]any {
	return map[string]any{
		"tenantId":  t.TenantID,
		"brandName": t.BrandName,
		"logoUrl":   t.LogoURL,
		"theme":     t.Theme.Data(),
		"position":  t.Position,
		"greeting":  t.Greeting,
		"enabled":   t.Enabled,
		"features":  t.Features.Data(),
	}
}

// EmbedCode renders the script snippet a customer pastes into their site.
func (t *Tenant) EmbedCode(cdnBaseURL string) string {
	return fmt.Sprintf(`<script src="%s/widget.js" data-tenant="%s"></script>`, cdnBaseURL, t.TenantID)
}
