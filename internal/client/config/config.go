// Package config handles configuration for the dreamsync client: defaults,
// an optional YAML file, a .env file, DREAMSYNC_CLIENT_* environment
// variables and command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/flagx"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by the client.
const EnvPrefix = "DREAMSYNC_CLIENT"

// Config holds runtime settings for the dreamsync client.
type Config struct {
	ServerEndpointAddr  string        `yaml:"server_endpoint_addr"`
	OnlineCheckInterval time.Duration `yaml:"online_check_interval"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`

	DataDir      string `yaml:"data_dir"`
	DatabaseFile string `yaml:"database_file"`

	// ContactsFile stands in for the device address book: one phone number
	// per line.
	ContactsFile string `yaml:"contacts_file"`

	ReportWebhookURL string        `yaml:"report_webhook_url"`
	SearchDelay      time.Duration `yaml:"search_delay"`
	SearchPageSize   int           `yaml:"search_page_size"`

	LogBackend string `yaml:"log_backend"`
	LogFormat  string `yaml:"log_format"`
	LogLevel   string `yaml:"log_level"`
}

// LoadDefaults populates c with defaults for a local server.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.DataDir = ".dreamsync"
	c.DatabaseFile = "dreams.db"
	c.SearchDelay = 300 * time.Millisecond
	c.SearchPageSize = 20
	c.LogBackend = "slog"
	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// Settings lists every field that can be set from the environment or flags.
func (c *Config) Settings() []flagx.Setting {
	return []flagx.Setting{
		{Name: "server", Short: "a", Usage: "address and port of the dreamsync server", Value: &c.ServerEndpointAddr},
		{Name: "online-check-interval", Short: "i", Usage: "how often to probe the server", Value: &c.OnlineCheckInterval},
		{Name: "request-timeout", Usage: "timeout of one command's remote calls", Value: &c.RequestTimeout},
		{Name: "data-dir", Usage: "directory holding the local store", Value: &c.DataDir},
		{Name: "database-file", Usage: "local store file name inside data-dir", Value: &c.DatabaseFile},
		{Name: "contacts-file", Usage: "file with one contact phone number per line", Value: &c.ContactsFile},
		{Name: "report-webhook", Usage: "moderation report webhook URL", Value: &c.ReportWebhookURL},
		{Name: "search-delay", Usage: "quiet period before a username search runs", Value: &c.SearchDelay},
		{Name: "search-page-size", Usage: "maximum username search results", Value: &c.SearchPageSize},
		{Name: "log-backend", Usage: "slog or zap", Value: &c.LogBackend},
		{Name: "log-format", Usage: "json or text", Value: &c.LogFormat},
		{Name: "log-level", Usage: "debug, info, warn or error", Value: &c.LogLevel},
	}
}

// RegisterFlags adds the client flags to fs, showing defaults in help.
func RegisterFlags(fs *pflag.FlagSet) {
	defaults := &Config{}
	defaults.LoadDefaults()
	flagx.Register(fs, defaults.Settings())
	fs.StringP("config", "c", "", "path to YAML config file")
	fs.String("env-file", ".env", "path to .env file")
}

// Load builds a Config from defaults, the YAML file and .env named by fs,
// the process environment, and finally the flags set in fs.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	envFile, _ := fs.GetString("env-file")
	if err := flagx.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("env file: %w", err)
	}
	path, _ := fs.GetString("config")
	if err := flagx.LoadYAML(path, cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := flagx.ApplyEnv(EnvPrefix, cfg.Settings(), os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := flagx.ApplyFlags(fs, cfg.Settings()); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the client cannot start with.
func (c *Config) Validate() error {
	if c.ServerEndpointAddr == "" {
		return fmt.Errorf("server address must not be empty")
	}
	if c.DatabaseFile == "" {
		return fmt.Errorf("database file must not be empty")
	}
	if c.OnlineCheckInterval <= 0 {
		return fmt.Errorf("online check interval must be positive")
	}
	if c.SearchPageSize <= 0 {
		return fmt.Errorf("search page size must be positive")
	}
	return nil
}
