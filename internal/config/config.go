package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vschema/internal/errors"
)

const (
	// ConfigFileName is the default configuration file name.
	ConfigFileName = "vschema.json"

	// DefaultPort is the default preview server port.
	DefaultPort = 3000

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"

	// DefaultMetricsPath is where the preview server exposes metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultDebounce delays reloads after a burst of file events.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// ConfigFileNames are tried in order when loading from a directory.
var ConfigFileNames = []string{ConfigFileName, "vschema.yaml", "vschema.yml"}

// Config represents a vschema.json or vschema.yaml file.
type Config struct {
	// Render contains output settings.
	Render RenderConfig `json:"render" yaml:"render"`

	// Server contains preview server settings.
	Server ServerConfig `json:"server" yaml:"server"`

	// S3 configures the client for s3:// sources.
	S3 S3Config `json:"s3" yaml:"s3"`

	// Log contains logging settings.
	Log LogConfig `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains output settings.
type RenderConfig struct {
	// Pretty indents the HTML output.
	Pretty bool `json:"pretty,omitempty" yaml:"pretty,omitempty"`

	// Minify compresses the HTML output.
	Minify bool `json:"minify,omitempty" yaml:"minify,omitempty"`

	// Delimiters are the interpolation markers, e.g. ["{{", "}}"].
	Delimiters []string `json:"delimiters,omitempty" yaml:"delimiters,omitempty" validate:"omitempty,len=2,dive,required"`

	// Title is the page title for full-page output.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Lang is the page language for full-page output.
	Lang string `json:"lang,omitempty" yaml:"lang,omitempty"`
}

// ServerConfig contains preview server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"min=0,max=65535"`

	// MetricsPath is the Prometheus endpoint.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty" validate:"omitempty,startswith=/"`

	// Watch reloads the page when the source file changes.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`

	// Debounce is the quiet period before a reload, e.g. "100ms".
	Debounce string `json:"debounce,omitempty" yaml:"debounce,omitempty" validate:"omitempty,duration"`
}

// S3Config configures the S3 client.
type S3Config struct {
	Region       string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" validate:"omitempty,url"`
	UsePathStyle bool   `json:"usePathStyle,omitempty" yaml:"usePathStyle,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=debug info warn error"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		_, err := time.ParseDuration(fl.Field().String())
		return err == nil
	})
	return v
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E150").
		WithDetail("No vschema config found in " + dir).
		WithSuggestion("Create vschema.json or vschema.yaml").
		Wrap(os.ErrNotExist)
}

// LoadFile reads configuration from the specified file path. The format
// follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E150").WithDetail(err.Error()).Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E150").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E150").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New("E150").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if len(c.Render.Delimiters) == 0 {
		c.Render.Delimiters = []string{"{{", "}}"}
	}
	if c.Render.Lang == "" {
		c.Render.Lang = "en"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.Debounce == "" {
		c.Server.Debounce = DefaultDebounce.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks the configuration against its field rules.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.New("E151").Wrap(err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be between 0 and 65535", field))
		case "len":
			msgs = append(msgs, fmt.Sprintf("%s must have exactly %s entries", field, e.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errors.New("E151").WithDetail(strings.Join(msgs, "; ")).Wrap(err)
}

// Address returns the host:port the preview server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the preview server URL.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// DebounceDuration returns the parsed reload debounce.
func (c *Config) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(c.Server.Debounce)
	if err != nil {
		return DefaultDebounce
	}
	return d
}

// Delimiters returns the interpolation markers.
func (c *Config) Delimiters() (left, right string) {
	if len(c.Render.Delimiters) != 2 {
		return "{{", "}}"
	}
	return c.Render.Delimiters[0], c.Render.Delimiters[1]
}

// SlogLevel maps Log.Level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Exists reports whether a config file exists in dir.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir to the first directory holding a
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E150").
				WithDetail("No vschema config found in " + startDir + " or any parent directory").
				Wrap(os.ErrNotExist)
		}
		dir = parent
	}
}

// LoadOrDefault loads the config above the working directory, or returns
// defaults when there is none. Invalid files are still errors.
func LoadOrDefault() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := FindProjectRoot(wd)
	if err != nil {
		return New(), nil
	}
	return Load(root)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
