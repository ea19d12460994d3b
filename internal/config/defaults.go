package config

import (
	"fmt"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/inline"
)

// Default values.
const (
	DefaultTemplateDir       = "template"
	DefaultPageSize          = 20
	DefaultPluginTimeout     = 30 * time.Second
	DefaultScheduleInterval  = time.Hour
	DefaultWatchDebounce     = 500 * time.Millisecond
	DefaultNotifySubject     = "sitegen.pass"
	DefaultPublishAuthorName = "sitegen"
	DefaultPublishAuthorMail = "sitegen@localhost"
)

// ConfigDefaultApplier fills unset fields of one configuration domain.
type ConfigDefaultApplier interface {
	Domain() string
	ApplyDefaults(cfg *Config) error
}

// CompositeDefaultApplier applies defaults across all configuration domains.
type CompositeDefaultApplier struct {
	appliers []ConfigDefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []ConfigDefaultApplier{
			&SourceDefaultApplier{},
			&OutputDefaultApplier{},
			&ExpansionDefaultApplier{},
			&MonitoringDefaultApplier{},
			&DaemonDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// SourceDefaultApplier handles the template directory and data files.
type SourceDefaultApplier struct{}

func (s *SourceDefaultApplier) Domain() string { return "source" }

func (s *SourceDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.TemplateDir == "" {
		cfg.TemplateDir = DefaultTemplateDir
	}
	if cfg.DataFile == "" {
		cfg.DataFile = filepath.Join(cfg.TemplateDir, "data.json")
	}
	if cfg.FeedFile == "" {
		cfg.FeedFile = filepath.Join(cfg.TemplateDir, "mls_data.geojson")
	}
	return nil
}

// OutputDefaultApplier handles namespace directories and the index.
type OutputDefaultApplier struct{}

func (o *OutputDefaultApplier) Domain() string { return "output" }

func (o *OutputDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Output.Pages == "" {
		cfg.Output.Pages = "site"
	}
	if cfg.Output.ListingsIndex == "" {
		cfg.Output.ListingsIndex = filepath.Join(cfg.Output.Pages, "listings")
	}
	if cfg.Output.ListingDetails == "" {
		cfg.Output.ListingDetails = filepath.Join(cfg.Output.Pages, "listing")
	}
	if cfg.Index.PageSize == 0 {
		cfg.Index.PageSize = DefaultPageSize
	}
	return nil
}

// ExpansionDefaultApplier handles inline scripts and plugins.
type ExpansionDefaultApplier struct{}

func (e *ExpansionDefaultApplier) Domain() string { return "expansion" }

func (e *ExpansionDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Inline.Interpreter == "" {
		cfg.Inline.Interpreter = inline.DefaultInterpreter
	}
	if cfg.Inline.BeginMarker == "" {
		cfg.Inline.BeginMarker = inline.DefaultBeginMarker
	}
	if cfg.Inline.EndMarker == "" {
		cfg.Inline.EndMarker = inline.DefaultEndMarker
	}
	if cfg.Plugins.Interpreters == nil {
		cfg.Plugins.Interpreters = map[string]string{".py": "python3", ".sh": "sh"}
	}
	if cfg.Plugins.Timeout == 0 {
		cfg.Plugins.Timeout = DefaultPluginTimeout
	}
	return nil
}

// MonitoringDefaultApplier handles logging and notification settings.
type MonitoringDefaultApplier struct{}

func (m *MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (m *MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Notify.NATSURL != "" && cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNotifySubject
	}
	if cfg.Publish.Git {
		if cfg.Publish.AuthorName == "" {
			cfg.Publish.AuthorName = DefaultPublishAuthorName
		}
		if cfg.Publish.AuthorEmail == "" {
			cfg.Publish.AuthorEmail = DefaultPublishAuthorMail
		}
	}
	return nil
}

// DaemonDefaultApplier handles watch and schedule timing.
type DaemonDefaultApplier struct{}

func (d *DaemonDefaultApplier) Domain() string { return "daemon" }

func (d *DaemonDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = DefaultScheduleInterval
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
	return nil
}
