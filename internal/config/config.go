// Package config loads the sitegen configuration: an optional YAML file with
// ${VAR} expansion, .env files and built-in defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// DefaultConfigFile is looked up when no --config flag is given.
const DefaultConfigFile = "sitegen.yaml"

// Config represents the application configuration.
type Config struct {
	TemplateDir string         `yaml:"template_dir"`
	DataFile    string         `yaml:"data_file"`
	FeedFile    string         `yaml:"feed_file"`
	Output      OutputConfig   `yaml:"output"`
	Index       IndexConfig    `yaml:"index"`
	Inline      InlineConfig   `yaml:"inline"`
	Plugins     PluginsConfig  `yaml:"plugins"`
	Logging     LoggingConfig  `yaml:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	History     HistoryConfig  `yaml:"history"`
	Notify      NotifyConfig   `yaml:"notify"`
	Publish     PublishConfig  `yaml:"publish"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Watch       WatchConfig    `yaml:"watch"`

	// Source is the file the configuration was read from, empty for defaults.
	Source string `yaml:"-"`
}

// OutputConfig names the namespace directories. Each is owned by exactly one
// builder and pruned after its pass.
type OutputConfig struct {
	Pages          string `yaml:"pages"`
	ListingsIndex  string `yaml:"listings_index"`
	ListingDetails string `yaml:"listing_details"`
}

// IndexConfig controls the paginated listing index.
type IndexConfig struct {
	PageSize int `yaml:"page_size"`
}

// InlineConfig controls inline script blocks in page content.
type InlineConfig struct {
	Enabled     *bool  `yaml:"enabled"`
	Interpreter string `yaml:"interpreter"`
	BeginMarker string `yaml:"begin_marker"`
	EndMarker   string `yaml:"end_marker"`
}

// IsEnabled reports whether inline blocks are executed. Defaults to true.
func (c InlineConfig) IsEnabled() bool { return c.Enabled == nil || *c.Enabled }

// PluginsConfig controls script plugin units.
type PluginsConfig struct {
	// Interpreters maps a file extension to the command that runs it.
	Interpreters map[string]string `yaml:"interpreters"`
	Timeout      time.Duration     `yaml:"timeout"`
}

// LoggingConfig selects log level and format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// HistoryConfig enables the SQLite build ledger.
type HistoryConfig struct {
	Database string `yaml:"database"`
}

// NotifyConfig enables NATS pass notifications.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// PublishConfig enables committing output trees with git.
type PublishConfig struct {
	Git         bool   `yaml:"git"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// ScheduleConfig controls daemon mode.
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// ErrConfigNotFound is returned when an explicitly requested file is missing.
var ErrConfigNotFound = ferrors.ConfigError("configuration file not found").Build()

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Load reads the configuration at path. An empty path tries DefaultConfigFile
// and falls back to defaults when it does not exist. Environment variables
// from .env files are loaded first and expanded in the YAML.
func Load(path string) (*Config, error) {
	LoadEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	// #nosec G304 -- config path is operator supplied.
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return nil, ErrConfigNotFound.WithContext("path", path)
			}
			return Default(), nil
		}
		return nil, ferrors.ConfigError("failed to read config file").WithCause(err).WithContext("path", path).Build()
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.Source = path
	return cfg, nil
}

// Parse decodes YAML configuration, expands environment variables, applies
// defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to unmarshal config").WithCause(err).Build()
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetTemplateDir points the configuration at dir. Data and feed files still at
// their default location under the previous template directory move with it.
func (c *Config) SetTemplateDir(dir string) {
	if dir == "" || dir == c.TemplateDir {
		return
	}
	old := c.TemplateDir
	if c.DataFile == filepath.Join(old, "data.json") {
		c.DataFile = filepath.Join(dir, "data.json")
	}
	if c.FeedFile == filepath.Join(old, "mls_data.geojson") {
		c.FeedFile = filepath.Join(dir, "mls_data.geojson")
	}
	c.TemplateDir = dir
}
