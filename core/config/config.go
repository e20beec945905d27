// Package config provides configuration loading for mdpreview.
//
// Configuration is optional. When present it is loaded from a single YAML
// file named by the --config flag or, failing that, the MDPREVIEW_CONFIG
// environment variable. Values missing from the file keep their defaults,
// and command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gaurav-prasanna/mdpreview/core"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "MDPREVIEW_CONFIG"

// Config is the complete mdpreview configuration.
type Config struct {
	// Server configures the editor's HTTP server.
	Server ServerConfig `yaml:"server"`

	// Render configures the rendering pipeline.
	Render RenderConfig `yaml:"render"`

	// Export configures downloads and exported files.
	Export ExportConfig `yaml:"export"`

	// State configures draft persistence.
	State StateConfig `yaml:"state"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: 127.0.0.1:8080
	Addr string `yaml:"addr"`
}

// RenderConfig configures rendering.
type RenderConfig struct {
	// Theme is the initial theme, "light" or "dark".
	// Default: light
	Theme string `yaml:"theme"`

	// LightStyle and DarkStyle name the Chroma style tables.
	// Default: github / onedark
	LightStyle string `yaml:"light_style"`
	DarkStyle  string `yaml:"dark_style"`

	// UnsafeHTML passes raw HTML in the markdown through unescaped.
	// Default: false
	UnsafeHTML bool `yaml:"unsafe_html"`
}

// ExportConfig configures exports.
type ExportConfig struct {
	// SourceFilename is the filename offered for markdown downloads.
	// Default: markdown.md
	SourceFilename string `yaml:"source_filename"`

	// OutputDir is where the export command writes files.
	// Default: current directory
	OutputDir string `yaml:"output_dir"`
}

// StateConfig configures draft persistence.
type StateConfig struct {
	// Path is the bbolt file holding the draft. Empty disables
	// persistence, in which case every start begins from the default
	// document in the light theme.
	Path string `yaml:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Render: RenderConfig{
			Theme:      "light",
			LightStyle: "github",
			DarkStyle:  "onedark",
		},
		Export: ExportConfig{SourceFilename: "markdown.md"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load loads configuration from path, or from $MDPREVIEW_CONFIG when path
// is empty. With neither set it returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := core.ParseTheme(c.Render.Theme); err != nil {
		errs = append(errs, fmt.Errorf("render.theme: %w", err))
	}
	if strings.TrimSpace(c.Export.SourceFilename) == "" {
		errs = append(errs, errors.New("export.source_filename is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	return errors.Join(errs...)
}

// Theme returns the configured initial theme.
func (c *Config) Theme() core.Theme {
	theme, _ := core.ParseTheme(c.Render.Theme)
	return theme
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
