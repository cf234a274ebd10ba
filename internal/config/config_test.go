package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payroll-engine/internal/model/payerr"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PAYROLL_DATA_DIR", "PAYROLL_TABLES_DIR", "PORT", "LOG_LEVEL", "LOG_DEVELOPMENT"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, filepath.Join("./data", "baremes"), cfg.TablesDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDevelopment)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "payroll.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /srv/paie\nport: \"9000\"\nlog_level: debug\n"), 0o644))
	t.Setenv("PORT", "9100")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "/srv/paie", cfg.DataDir)
	assert.Equal(t, filepath.Join("/srv/paie", "baremes"), cfg.TablesDir)
	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, payerr.KindConfigMissing, payerr.KindOf(err))

	t.Setenv("LOG_DEVELOPMENT", "maybe")
	_, err = Load("")
	assert.Equal(t, payerr.KindConfigInvalid, payerr.KindOf(err))
}

func TestParse_Malformed(t *testing.T) {
	cfg := Defaults()
	err := Parse([]byte("port: [1"), &cfg)
	assert.Equal(t, payerr.KindConfigInvalid, payerr.KindOf(err))
}
