package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CTOP_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8501, cfg.Port)
	assert.Equal(t, "/", cfg.BasePath)
	assert.Equal(t, StorageTypeCSV, cfg.Storage.Type)
	assert.Equal(t, "usuarios.csv", cfg.Storage.CSV.UsersPath)
	assert.Equal(t, "log_acessos.csv", cfg.Storage.CSV.AccessLogPath)
	assert.Equal(t, time.Second, cfg.Geocoder.Interval())
	assert.Equal(t, 30*24*time.Hour, cfg.Geocoder.NegativeCacheTTL())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "ctop.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
port = 9000
basePath = "busca"
datasetPath = "dados.xlsx"

[storage]
type = "sqlite"

[geocoder]
minInterval = "2s"
timeout = "bogus"
`), 0o600))
	t.Setenv("CTOP_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/busca/", cfg.BasePath)
	assert.Equal(t, "dados.xlsx", cfg.DatasetPath)
	assert.True(t, cfg.Storage.IsSQLite())
	assert.Equal(t, 2*time.Second, cfg.Geocoder.Interval())
	assert.Equal(t, 15*time.Second, cfg.Geocoder.RequestTimeout())
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.Endpoint)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CTOP_DATASET=from-env.xlsx\n"), 0o600))
	t.Setenv("CTOP_CONFIG", "")
	t.Cleanup(func() { os.Unsetenv("CTOP_DATASET") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.xlsx", cfg.DatasetPath)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.Type = "redis"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Storage.CSV.AccessLogPath = "./usuarios.csv"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.TimeLocation = "Mars/Olympus"
	assert.Error(t, cfg.Validate())
}

func TestAdminPassword(t *testing.T) {
	t.Setenv("CTOP_ADMIN_PASSWORD", "")
	assert.Equal(t, DefaultAdminPassword, GetAdminPassword())
	t.Setenv("CTOP_ADMIN_PASSWORD", "Outra@1")
	assert.Equal(t, "Outra@1", GetAdminPassword())
}
