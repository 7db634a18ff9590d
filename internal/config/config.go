// Package config loads jap profiles: where the JSON:API server lives, how to
// authenticate against it, and which fields of each resource are relationships.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/telhawk-systems/jsonapi-provider/internal/logging"
	"github.com/telhawk-systems/jsonapi-provider/pkg/dataprovider"
	"github.com/telhawk-systems/jsonapi-provider/pkg/transport"
)

// Config holds CLI configuration (profiles, defaults, logging).
type Config struct {
	CurrentProfile string              `yaml:"current_profile" mapstructure:"current_profile"`
	Profiles       map[string]*Profile `yaml:"profiles" mapstructure:"profiles"`
	Defaults       *Profile            `yaml:"defaults" mapstructure:"defaults"`
	Logging        LoggingConfig       `yaml:"logging" mapstructure:"logging"`
	path           string
}

// Profile describes one JSON:API server. Empty fields fall back to Defaults.
type Profile struct {
	BaseURL       string                       `yaml:"base_url,omitempty" json:"base_url,omitempty" mapstructure:"base_url"`
	Token         string                       `yaml:"token,omitempty" json:"token,omitempty" mapstructure:"token"`
	Headers       map[string]string            `yaml:"headers,omitempty" json:"headers,omitempty" mapstructure:"headers"`
	TotalKey      string                       `yaml:"total_key,omitempty" json:"total_key,omitempty" mapstructure:"total_key"`
	CountDisabled bool                         `yaml:"count_disabled,omitempty" json:"count_disabled,omitempty" mapstructure:"count_disabled"`
	UpdateMethod  string                       `yaml:"update_method,omitempty" json:"update_method,omitempty" mapstructure:"update_method"`
	Timeout       string                       `yaml:"timeout,omitempty" json:"timeout,omitempty" mapstructure:"timeout"`
	Relationships map[string]map[string]string `yaml:"relationships,omitempty" json:"relationships,omitempty" mapstructure:"relationships"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns a configuration with built-in defaults and no profiles.
func Default() *Config {
	return &Config{
		CurrentProfile: "default",
		Profiles:       make(map[string]*Profile),
		Defaults: &Profile{
			BaseURL:      "http://localhost:3000/api",
			TotalKey:     dataprovider.DefaultTotalKey,
			UpdateMethod: "PATCH",
			Timeout:      "30s",
		},
		Logging: LoggingConfig{Level: "warn", Format: "text"},
	}
}

// DefaultPath returns $JAP_CONFIG_DIR/config.yaml, or $HOME/.jap/config.yaml.
func DefaultPath() (string, error) {
	configDir := os.Getenv("JAP_CONFIG_DIR")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine home directory: %w", err)
		}
		configDir = filepath.Join(home, ".jap")
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// Load reads cfgFile (DefaultPath when empty) and JAP_* environment variables.
// A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}

	v := viper.New()

	defaults := Default()
	v.SetDefault("current_profile", defaults.CurrentProfile)
	v.SetDefault("defaults.base_url", defaults.Defaults.BaseURL)
	v.SetDefault("defaults.total_key", defaults.Defaults.TotalKey)
	v.SetDefault("defaults.update_method", defaults.Defaults.UpdateMethod)
	v.SetDefault("defaults.timeout", defaults.Defaults.Timeout)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	// Environment variables override with JAP prefix
	v.SetEnvPrefix("JAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Short aliases for the values people set most
	_ = v.BindEnv("defaults.base_url", "JAP_BASE_URL", "JAP_DEFAULTS_BASE_URL")
	_ = v.BindEnv("defaults.token", "JAP_TOKEN", "JAP_DEFAULTS_TOKEN")
	_ = v.BindEnv("logging.level", "JAP_LOG_LEVEL", "JAP_LOGGING_LEVEL")
	_ = v.BindEnv("logging.format", "JAP_LOG_FORMAT", "JAP_LOGGING_FORMAT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := Default()
	cfg.path = cfgFile
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]*Profile)
	}
	cfg.CurrentProfile = profileKey(cfg.CurrentProfile)

	if err := cfg.restoreRelationships(cfgFile); err != nil {
		return nil, err
	}

	return cfg, nil
}

// restoreRelationships re-reads relationship maps with yaml.v3. viper folds
// every key to lower case, which would turn "ownerId" into "ownerid".
func (c *Config) restoreRelationships(cfgFile string) error {
	data, err := os.ReadFile(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var raw struct {
		Profiles map[string]struct {
			Relationships map[string]map[string]string `yaml:"relationships"`
		} `yaml:"profiles"`
		Defaults struct {
			Relationships map[string]map[string]string `yaml:"relationships"`
		} `yaml:"defaults"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse relationships: %w", err)
	}

	if raw.Defaults.Relationships != nil && c.Defaults != nil {
		c.Defaults.Relationships = raw.Defaults.Relationships
	}
	for name, p := range raw.Profiles {
		if p.Relationships == nil {
			continue
		}
		if profile, ok := c.Profiles[profileKey(name)]; ok {
			profile.Relationships = p.Relationships
		}
	}
	return nil
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Save writes the configuration back to its file.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}

// profileKey folds a profile name the way viper folds map keys on load.
func profileKey(name string) string {
	return strings.ToLower(name)
}

// Profile returns the stored (unmerged) profile. Names are case-insensitive.
func (c *Config) Profile(name string) (*Profile, bool) {
	p, ok := c.Profiles[profileKey(name)]
	return p, ok
}

// SaveProfile stores p under name, makes it current and saves.
func (c *Config) SaveProfile(name string, p *Profile) error {
	if c.Profiles == nil {
		c.Profiles = make(map[string]*Profile)
	}
	key := profileKey(name)
	c.Profiles[key] = p
	c.CurrentProfile = key
	return c.Save()
}

// UseProfile makes an existing profile current and saves.
func (c *Config) UseProfile(name string) error {
	if _, ok := c.Profile(name); !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}
	c.CurrentProfile = profileKey(name)
	return c.Save()
}

// RemoveProfile deletes a profile and saves. Removing the current profile
// clears CurrentProfile.
func (c *Config) RemoveProfile(name string) error {
	key := profileKey(name)
	if _, ok := c.Profiles[key]; !ok {
		return fmt.Errorf("profile '%s' not found", name)
	}
	delete(c.Profiles, key)
	if profileKey(c.CurrentProfile) == key {
		c.CurrentProfile = ""
	}
	return c.Save()
}

// GetProfile returns the named profile (current profile when name is empty)
// merged over Defaults. The current profile may be absent, in which case the
// defaults alone are used. Names are case-insensitive.
func (c *Config) GetProfile(name string) (*Profile, error) {
	explicit := name != ""
	if name == "" {
		name = c.CurrentProfile
	}

	p, ok := c.Profile(name)
	if !ok {
		if explicit && profileKey(name) != profileKey(c.CurrentProfile) {
			return nil, fmt.Errorf("profile '%s' not found", name)
		}
		p = &Profile{}
	}
	return p.merge(c.Defaults), nil
}

func (p *Profile) merge(d *Profile) *Profile {
	out := *p
	if d == nil {
		return &out
	}
	if out.BaseURL == "" {
		out.BaseURL = d.BaseURL
	}
	if out.Token == "" {
		out.Token = d.Token
	}
	if out.TotalKey == "" {
		out.TotalKey = d.TotalKey
	}
	if !out.CountDisabled {
		out.CountDisabled = d.CountDisabled
	}
	if out.UpdateMethod == "" {
		out.UpdateMethod = d.UpdateMethod
	}
	if out.Timeout == "" {
		out.Timeout = d.Timeout
	}
	if out.Relationships == nil {
		out.Relationships = d.Relationships
	}
	if len(d.Headers) > 0 {
		headers := make(map[string]string, len(d.Headers)+len(out.Headers))
		for k, v := range d.Headers {
			headers[k] = v
		}
		for k, v := range out.Headers {
			headers[k] = v
		}
		out.Headers = headers
	}
	return &out
}

// TimeoutDuration parses Timeout, falling back to the transport default.
func (p *Profile) TimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(p.Timeout); err == nil && d > 0 {
		return d
	}
	return transport.DefaultTimeout
}

// Registry builds the relationship registry of the profile.
func (p *Profile) Registry() dataprovider.Registry {
	return dataprovider.NewRegistry(p.Relationships)
}

// ClientOptions returns the data-provider options described by the profile.
func (p *Profile) ClientOptions(logger *logging.Logger) []dataprovider.Option {
	opts := []dataprovider.Option{
		dataprovider.WithRegistry(p.Registry()),
		dataprovider.WithTotalKey(p.TotalKey),
		dataprovider.WithUpdateMethod(p.UpdateMethod),
	}
	if logger != nil {
		opts = append(opts, dataprovider.WithLogger(logger.Logger))
	}
	if p.CountDisabled {
		opts = append(opts, dataprovider.WithoutTotal())
	}
	return opts
}

// NewClient wires an HTTP transport and a data-provider client for the profile.
func (p *Profile) NewClient(logger *logging.Logger) *dataprovider.Client {
	opts := []transport.Option{
		transport.WithToken(p.Token),
		transport.WithHeaders(p.Headers),
		transport.WithTimeout(p.TimeoutDuration()),
	}
	if logger != nil {
		opts = append(opts, transport.WithLogger(logger.Logger))
	}
	h := transport.NewHTTP(p.BaseURL, opts...)
	return dataprovider.New(h, p.ClientOptions(logger)...)
}
