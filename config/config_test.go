package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "TAX_RATE", "STRICT_TOTALS", "CORS_ORIGINS", "SEED", "UPLOAD_DIR"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "uploads", c.UploadDir)
	assert.True(t, c.TaxRate.IsZero())
	assert.False(t, c.StrictTotals)
	assert.True(t, c.Seed)
	assert.Equal(t, []string{"http://localhost:3000"}, c.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TAX_RATE", "0.11")
	t.Setenv("STRICT_TOTALS", "true")
	t.Setenv("SEED", "false")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	c := Load()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "0.11", c.TaxRate.String())
	assert.True(t, c.StrictTotals)
	assert.False(t, c.Seed)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.CORSOrigins)

	t.Setenv("TAX_RATE", "-1")
	assert.True(t, Load().TaxRate.IsZero())
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t,
		"foodpos.db?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		SQLiteDSN("foodpos.db"))
	assert.Equal(t,
		"file:x?mode=memory&_pragma=foreign_keys(1)&_txlock=immediate&_pragma=busy_timeout(5000)",
		SQLiteDSN("file:x?mode=memory&_pragma=foreign_keys(1)"))

	custom := "pos.db?_txlock=exclusive&_pragma=busy_timeout(100)&_pragma=foreign_keys(0)"
	assert.Equal(t, custom, SQLiteDSN(custom))
}
