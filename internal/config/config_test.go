package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[database]
user = "booking"
dbname = "appointments"

[directory_service]
url = "http://directory:8090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "INFO", cfg.Logs.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 5, cfg.DirectoryService.Timeout)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9000

[database]
host = "db.internal"
port = 6432
user = "booking"
password = "secret"
dbname = "appointments"
sslmode = "require"

[directory_service]
url = "http://directory:8090"
timeout = 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.HTTPPort)
	assert.Equal(t, 10, cfg.DirectoryService.Timeout)
	assert.Equal(t,
		"host=db.internal port=6432 user=booking password=secret dbname=appointments sslmode=require",
		cfg.Database.DSN())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing database user",
			content: `
[database]
dbname = "appointments"

[directory_service]
url = "http://directory:8090"
`,
		},
		{
			name: "missing directory service url",
			content: `
[database]
user = "booking"
dbname = "appointments"
`,
		},
		{
			name: "invalid port",
			content: `
[server]
http_port = 700000

[database]
user = "booking"
dbname = "appointments"

[directory_service]
url = "http://directory:8090"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
