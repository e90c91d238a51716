package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("EMPLOYEE_CLASSES", "")
	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, []string{"A", "B", "C", "supervisor", "manager"}, cfg.EmployeeClasses)
	assert.EqualValues(t, 1048576, cfg.MaxBodyBytes)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("EMPLOYEE_CLASSES", " A , engineer,,")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("MAX_BODY_BYTES", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, []string{"A", "engineer"}, cfg.EmployeeClasses)
	assert.False(t, cfg.RunMigrations)
	assert.EqualValues(t, 1048576, cfg.MaxBodyBytes)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestValidate(t *testing.T) {
	base := Config{
		StoreDriver:     DriverSQLite,
		SQLitePath:      "x.db",
		MaxBodyBytes:    4096,
		EmployeeClasses: []string{"A"},
	}
	require.NoError(t, base.Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }},
		{"production without secret", func(c *Config) { c.Environment = "production" }},
		{"tiny body limit", func(c *Config) { c.MaxBodyBytes = 10 }},
		{"sentinel class", func(c *Config) { c.EmployeeClasses = []string{"A", "Unassigned"} }},
		{"negative rate limit", func(c *Config) { c.RateLimitPerMinute = -1 }},
		{"no classes", func(c *Config) { c.EmployeeClasses = nil }},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "proxy.local"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTrustedProxyPrefixes(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 192.0.2.7 ,::ffff:198.51.100.1, 2001:db8::/32")
	cfg := Load()

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	got := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.7/32", "198.51.100.1/32", "2001:db8::/32"}, got)
}
