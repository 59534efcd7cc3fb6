package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"chatwidget/internal/config"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := Connect(&config.Config{DatabaseURL: ":memory:", DataDir: t.TempDir()})
	require.NoError(t, err)
	return conn
}

func TestCreateTenantDefaults(t *testing.T) {
	conn := testDB(t)

	tenant := &Tenant{}
	require.NoError(t, CreateTenant(conn, tenant))

	assert.True(t, len(tenant.TenantID) > len("tenant-"))
	assert.Equal(t, "Demo Shop", tenant.BrandName)
	assert.Equal(t, "bottom-right", tenant.Position)
	assert.Contains(t, tenant.Greeting, "wheels")
	assert.True(t, tenant.Enabled)

	theme := tenant.Theme.Data()
	assert.Equal(t, "#007bff", theme.PrimaryColor)
	assert.Equal(t, "#6c757d", theme.SecondaryColor)
	assert.Equal(t, "Arial, sans-serif", theme.FontFamily)
	assert.Equal(t, "8px", theme.BorderRadius)
}

func TestCreateTenantKeepsCallerValues(t *testing.T) {
	conn := testDB(t)

	tenant := &Tenant{
		TenantID:  "acme",
		BrandName: "Acme Wheels",
		Greeting:  "Welcome!",
	}
	require.NoError(t, CreateTenant(conn, tenant))

	loaded, err := GetTenant(conn, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Wheels", loaded.BrandName)
	assert.Equal(t, "Welcome!", loaded.Greeting)
	// Theme left empty still gets the defaults.
	assert.Equal(t, "#007bff", loaded.Theme.Data().PrimaryColor)
}

func TestGetTenantUnknown(t *testing.T) {
	conn := testDB(t)

	_, err := GetTenant(conn, "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteTenant(t *testing.T) {
	conn := testDB(t)

	require.NoError(t, CreateTenant(conn, &Tenant{TenantID: "acme"}))
	require.NoError(t, DeleteTenant(conn, "acme"))

	_, err := GetTenant(conn, "acme")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, DeleteTenant(conn, "acme"), gorm.ErrRecordNotFound)
}

func TestListTenantsNewestFirst(t *testing.T) {
	conn := testDB(t)

	require.NoError(t, CreateTenant(conn, &Tenant{TenantID: "first"}))
	require.NoError(t, CreateTenant(conn, &Tenant{TenantID: "second"}))

	tenants, err := ListTenants(conn)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
}

func TestPublicConfigShape(t *testing.T) {
	conn := testDB(t)

	tenant := &Tenant{TenantID: "acme", BrandName: "Acme"}
	require.NoError(t, CreateTenant(conn, tenant))

	pub := tenant.PublicConfig()
	assert.Equal(t, "acme", pub["tenantId"])
	assert.Equal(t, "Acme", pub["brandName"])
	assert.Equal(t, true, pub["enabled"])
	assert.NotNil(t, pub["theme"])
	assert.NotContains(t, pub, "id")
}

func TestEmbedCode(t *testing.T) {
	tenant := &Tenant{TenantID: "acme"}
	code := tenant.EmbedCode("https://cdn.example.com")
	assert.Equal(t, `<script src="https://cdn.example.com/widget.js" data-tenant="acme"></script>`, code)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	conn := testDB(t)
	cfg := &config.Config{AdminUser: "root", AdminPassword: "hunter2"}

	require.NoError(t, EnsureBootstrapAdmin(conn, cfg))
	// Idempotent on the second call.
	require.NoError(t, EnsureBootstrapAdmin(conn, cfg))

	var count int64
	require.NoError(t, conn.Model(&User{}).Where("username = ?", "root").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
