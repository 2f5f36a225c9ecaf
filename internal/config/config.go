package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds connection settings for both trackers plus the migration knobs.
type Config struct {
	Lighthouse LighthouseConfig `yaml:"lighthouse" mapstructure:"lighthouse"`
	GitHub     GitHubConfig     `yaml:"github"     mapstructure:"github"`

	// KeepLabels lists the Lighthouse tags that survive as GitHub labels.
	KeepLabels []string `yaml:"keep_labels" mapstructure:"keep_labels"`
	// MigrationLabel is added to every imported issue.
	MigrationLabel string `yaml:"migration_label" mapstructure:"migration_label"`
	// Assignees maps Lighthouse display names to GitHub logins.
	Assignees map[string]string `yaml:"assignees" mapstructure:"assignees"`

	StartingTicket int           `yaml:"starting_ticket" mapstructure:"starting_ticket"`
	MaxRetries     int           `yaml:"max_retries"     mapstructure:"max_retries"`
	RequestDelay   time.Duration `yaml:"request_delay"   mapstructure:"request_delay"`
	Timezone       string        `yaml:"timezone"        mapstructure:"timezone"`
}

// LighthouseConfig identifies the source project. BaseURL is derived from
// Account unless set explicitly.
type LighthouseConfig struct {
	Account string `yaml:"account"            mapstructure:"account"`
	Token   string `yaml:"token"              mapstructure:"token"`
	Project string `yaml:"project"            mapstructure:"project"`
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// GitHubConfig identifies the target repository.
type GitHubConfig struct {
	Login   string `yaml:"login"              mapstructure:"login"`
	Token   string `yaml:"token"              mapstructure:"token"`
	Org     string `yaml:"org,omitempty"      mapstructure:"org"`
	Repo    string `yaml:"repo"               mapstructure:"repo"`
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// DefaultKeepLabels are the Lighthouse states kept as labels out of the box.
var DefaultKeepLabels = []string{"new", "open", "reopened", "feedback", "review", "closed"}

// DefaultPath returns the default config file path (~/.lh2gh.yaml).
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lh2gh.yaml"
	}
	return filepath.Join(home, ".lh2gh.yaml")
}

// Load reads config from the YAML file and applies env var overrides.
// configPath may be empty to use the default path.
func Load(configPath string) (Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = DefaultPath()
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("keep_labels", DefaultKeepLabels)
	v.SetDefault("migration_label", "lighthouse")
	v.SetDefault("starting_ticket", 1)
	v.SetDefault("max_retries", 5)
	v.SetDefault("request_delay", time.Second)
	v.SetDefault("timezone", "America/New_York")

	// Env var overrides
	v.BindEnv("lighthouse.account", "LIGHTHOUSE_ACCOUNT")
	v.BindEnv("lighthouse.token", "LIGHTHOUSE_TOKEN")
	v.BindEnv("lighthouse.project", "LIGHTHOUSE_PROJECT")
	v.BindEnv("github.login", "GITHUB_LOGIN")
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.org", "GITHUB_ORG")
	v.BindEnv("github.repo", "GITHUB_REPO")

	// Read the config file (ignore "not found" errors so env vars still work)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required fields are present.
func (c Config) Validate() error {
	if c.Lighthouse.Account == "" && c.Lighthouse.BaseURL == "" {
		return fmt.Errorf("Lighthouse account is required (set in config file or LIGHTHOUSE_ACCOUNT env var)")
	}
	if c.Lighthouse.Token == "" {
		return fmt.Errorf("Lighthouse token is required (set in config file or LIGHTHOUSE_TOKEN env var)")
	}
	if c.Lighthouse.Project == "" {
		return fmt.Errorf("Lighthouse project is required (set in config file or LIGHTHOUSE_PROJECT env var)")
	}
	if c.GitHub.Token == "" {
		return fmt.Errorf("GitHub token is required (set in config file or GITHUB_TOKEN env var)")
	}
	if c.GitHub.Owner() == "" {
		return fmt.Errorf("GitHub org or login is required (set in config file or GITHUB_ORG / GITHUB_LOGIN env vars)")
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("GitHub repo is required (set in config file or GITHUB_REPO env var)")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request_delay must not be negative, got %s", c.RequestDelay)
	}
	return nil
}

// Owner returns the account that owns the target repository: the
// organization when one is configured, otherwise the login.
func (g GitHubConfig) Owner() string {
	if g.Org != "" {
		return g.Org
	}
	return g.Login
}

// Location resolves the configured timezone, falling back to UTC.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Save writes the config to the given path (or default path if empty).
func Save(cfg Config, configPath string) error {
	if configPath == "" {
		configPath = DefaultPath()
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
