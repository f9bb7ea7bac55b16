// Package config loads client options from flags, PERPUS_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/and161185/perpus/internal/storage"
)

// EnvPrefix prefixes environment overrides, e.g. PERPUS_API_URL.
const EnvPrefix = "PERPUS"

// Options contains the client configuration.
type Options struct {
	// APIURL is the backend base URL.
	APIURL string `json:"api-url" mapstructure:"api-url"`
	// Timeout bounds each backend request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
	State   StateOptions  `json:"state" mapstructure:"state"`
	Log     LogOptions    `json:"log" mapstructure:"log"`
}

// StateOptions selects where the session is kept.
type StateOptions struct {
	Driver  string `json:"driver" mapstructure:"driver"`
	Dir     string `json:"dir" mapstructure:"dir"`
	Encrypt bool   `json:"encrypt" mapstructure:"encrypt"`
}

// LogOptions configures the zap logger.
type LogOptions struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		APIURL:  "http://localhost:8032",
		Timeout: 30 * time.Second,
		State: StateOptions{
			Driver:  storage.DriverFile,
			Dir:     DefaultDir(),
			Encrypt: true,
		},
		Log: LogOptions{
			Level:  "warn",
			Format: "console",
		},
	}
}

// DefaultDir is $XDG_CONFIG_HOME/perpus, or ~/.config/perpus.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "perpus")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "perpus")
}

// AddFlags adds flags for the options to fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.APIURL, "api-url", o.APIURL, "Backend base URL")
	fs.DurationVar(&o.Timeout, "timeout", o.Timeout, "Per-request timeout")
	fs.StringVar(&o.State.Driver, "state.driver", o.State.Driver, "Session store: file or sqlite")
	fs.StringVar(&o.State.Dir, "state.dir", o.State.Dir, "Directory holding client state")
	fs.BoolVar(&o.State.Encrypt, "state.encrypt", o.State.Encrypt, "Encrypt the saved session at rest")
	fs.StringVar(&o.Log.Level, "log.level", o.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&o.Log.Format, "log.format", o.Log.Format, "Log format: console or json")
}

// Validate validates the options.
func (o *Options) Validate() error {
	var errs []error
	u, err := url.Parse(o.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("api-url %q must be an http(s) URL", o.APIURL))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	switch o.State.Driver {
	case storage.DriverFile, storage.DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("state.driver %q must be %q or %q", o.State.Driver, storage.DriverFile, storage.DriverSQLite))
	}
	if o.State.Dir == "" {
		errs = append(errs, errors.New("state.dir cannot be empty"))
	}
	switch strings.ToLower(o.Log.Format) {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be console or json", o.Log.Format))
	}
	return errors.Join(errs...)
}

// Load merges, in increasing priority, defaults, the config file, PERPUS_*
// environment variables and explicitly set flags. An empty configFile means
// DefaultDir()/config.yaml when it exists.
func Load(fs *pflag.FlagSet, configFile string) (*Options, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile == "" {
		def := filepath.Join(DefaultDir(), "config.yaml")
		if _, err := os.Stat(def); err == nil {
			configFile = def
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	o := NewOptions()
	if err := v.Unmarshal(o); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	o.APIURL = strings.TrimRight(strings.TrimSpace(o.APIURL), "/")
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
