package flagx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Addr    string        `yaml:"addr"`
	Workers int           `yaml:"workers"`
	Verbose bool          `yaml:"verbose"`
	Timeout time.Duration `yaml:"timeout"`
}

func (s *sample) settings() []Setting {
	return []Setting{
		{Name: "addr", Short: "a", Usage: "listen address", Value: &s.Addr},
		{Name: "workers", Usage: "worker count", Value: &s.Workers},
		{Name: "verbose", Usage: "debug output", Value: &s.Verbose},
		{Name: "timeout", Usage: "request timeout", Value: &s.Timeout},
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "DREAMSYNC_GRPC_ADDR", EnvName("DREAMSYNC", "grpc-addr"))
	assert.Equal(t, "ADDR", EnvName("", "addr"))
}

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	s := &sample{Addr: ":1", Workers: 2, Timeout: time.Second}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Register(fs, s.settings())

	require.NoError(t, fs.Parse([]string{"-a", ":9", "--timeout=5s"}))
	s.Workers = 7
	require.NoError(t, ApplyFlags(fs, s.settings()))

	assert.Equal(t, ":9", s.Addr)
	assert.Equal(t, 7, s.Workers, "unset flag keeps value from earlier sources")
	assert.Equal(t, 5*time.Second, s.Timeout)
}

func TestApplyEnv(t *testing.T) {
	s := &sample{}
	env := map[string]string{
		"APP_WORKERS": "4",
		"APP_VERBOSE": "true",
		"APP_TIMEOUT": "250ms",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	require.NoError(t, ApplyEnv("APP", s.settings(), lookup))
	assert.Equal(t, 4, s.Workers)
	assert.True(t, s.Verbose)
	assert.Equal(t, 250*time.Millisecond, s.Timeout)

	env["APP_WORKERS"] = "many"
	assert.Error(t, ApplyEnv("APP", s.settings(), lookup))
}

func TestSet_UnsupportedType(t *testing.T) {
	var f float64
	assert.Error(t, Set(Setting{Name: "ratio", Value: &f}, "0.5"))
}

func TestLoadYAML_KeepsAbsentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":7\"\ntimeout: 2m\n"), 0o600))

	s := &sample{Workers: 3}
	require.NoError(t, LoadYAML(path, s))
	assert.Equal(t, ":7", s.Addr)
	assert.Equal(t, 3, s.Workers)
	assert.Equal(t, 2*time.Minute, s.Timeout)

	assert.NoError(t, LoadYAML("", s))
	assert.Error(t, LoadYAML(filepath.Join(dir, "missing.yaml"), s))

	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o600))
	assert.Error(t, LoadYAML(path, s))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")), "missing file is fine")

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLAGX_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("FLAGX_TEST_VALUE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("FLAGX_TEST_VALUE"))
}
