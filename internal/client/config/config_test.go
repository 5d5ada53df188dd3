package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("client", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 3*time.Second, c.OnlineCheckInterval)
	assert.Equal(t, "dreams.db", c.DatabaseFile)
	assert.Empty(t, c.ReportWebhookURL)
	assert.NoError(t, c.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server_endpoint_addr: "10.0.0.1:50051"
report_webhook_url: "https://hooks.example.com/abc"
search_delay: 1s
data_dir: /tmp/dreams
`), 0o600))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DREAMSYNC_CLIENT_SEARCH_PAGE_SIZE=7\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DREAMSYNC_CLIENT_SEARCH_PAGE_SIZE") })

	t.Setenv("DREAMSYNC_CLIENT_DATA_DIR", "/var/dreams")
	t.Setenv("DREAMSYNC_CLIENT_SERVER", "10.0.0.2:50051")

	fs := newFlagSet(t, "-c", path, "--env-file", envFile, "-a", "10.0.0.3:50051", "-i", "5s")
	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.example.com/abc", cfg.ReportWebhookURL, "from file")
	assert.Equal(t, time.Second, cfg.SearchDelay, "from file")
	assert.Equal(t, 7, cfg.SearchPageSize, "from .env")
	assert.Equal(t, "/var/dreams", cfg.DataDir, "env beats file")
	assert.Equal(t, "10.0.0.3:50051", cfg.ServerEndpointAddr, "flag beats env")
	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval, "flag")
	assert.Equal(t, "dreams.db", cfg.DatabaseFile, "default kept")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(newFlagSet(t, "--env-file", "", "-c", filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)

	t.Setenv("DREAMSYNC_CLIENT_SEARCH_PAGE_SIZE", "many")
	_, err = Load(newFlagSet(t, "--env-file", ""))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.ServerEndpointAddr = ""
	assert.Error(t, c.Validate())

	c.LoadDefaults()
	c.OnlineCheckInterval = 0
	assert.Error(t, c.Validate())

	c.LoadDefaults()
	c.SearchPageSize = 0
	assert.Error(t, c.Validate())
}
