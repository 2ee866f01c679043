package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robalyx/gatekeeper/internal/gatekeep"
	"github.com/robalyx/gatekeeper/pkg/utils"
)

var (
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("discord bot token is not set")
	ErrInvalidSetting        = errors.New("invalid setting")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v1.0.0"

// CurrentVersion is the current version of the config file.
const CurrentVersion = 1

// FileName is the name of the optional config file.
const FileName = "gatekeeper.toml"

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file. Zero when no file was loaded.
	Version        int            `koanf:"version"`
	Discord        Discord        `koanf:"discord"`
	Roles          Roles          `koanf:"roles"`
	Reconcile      Reconcile      `koanf:"reconcile"`
	Retry          Retry          `koanf:"retry"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	Debug          Debug          `koanf:"debug"`
	Loki           Loki           `koanf:"loki"`
}

// Discord contains the bot credentials.
type Discord struct {
	// Bot token, usually supplied through BOT_TOKEN.
	Token string `koanf:"token"`
}

// Roles names the roles the bot works with. Names match case-insensitively.
type Roles struct {
	// Role assigned by the external integration.
	Integration string `koanf:"integration"`
	// Role this bot grants and revokes.
	Access string `koanf:"access"`
	// Manually curated role required alongside the integration role.
	Gatekeep string `koanf:"gatekeep"`
	// What to do when a guild has several roles with one name: exclude, first or fail.
	Ambiguity string `koanf:"ambiguity"`
}

// Reconcile controls the startup sweep.
type Reconcile struct {
	// Run a sweep before reacting to events.
	OnStartup bool `koanf:"on_startup"`
	// Number of guilds swept at once.
	Concurrency int `koanf:"concurrency"`
	// Log intended role changes without applying them.
	DryRun bool `koanf:"dry_run"`
	// Spacing between member listings in milliseconds.
	ListInterval int `koanf:"list_interval"`
	// Random jitter applied to the spacing in milliseconds.
	ListJitter int `koanf:"list_jitter"`
}

// Retry contains retry settings for role mutations.
type Retry struct {
	// Maximum number of retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial delay between retries in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum delay between retries in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// CircuitBreaker contains settings for the role mutation breaker.
type CircuitBreaker struct {
	// Time in milliseconds an open breaker rejects mutations.
	Timeout int `koanf:"timeout"`
}

// Debug contains logging settings.
type Debug struct {
	LogLevel      string `koanf:"log_level"`
	MaxLogsToKeep int    `koanf:"max_logs_to_keep"`
	MaxLogLines   int    `koanf:"max_log_lines"`
}

// Loki contains Grafana Loki shipping settings.
type Loki struct {
	Enabled        bool              `koanf:"enabled"`
	URL            string            `koanf:"url"`
	BatchMaxSize   int               `koanf:"batch_max_size"`
	BatchMaxWaitMS int               `koanf:"batch_max_wait_ms"`
	Labels         map[string]string `koanf:"labels"`
	Username       string            `koanf:"username"`
	Password       string            `koanf:"password"`
}

// defaults are loaded before the config file and environment.
var defaults = map[string]any{
	"roles.integration":       "twitch subscriber",
	"roles.access":            "subscriber access",
	"roles.gatekeep":          "follower",
	"roles.ambiguity":         "exclude",
	"reconcile.on_startup":    true,
	"reconcile.concurrency":   4,
	"reconcile.dry_run":       false,
	"reconcile.list_interval": 250,
	"reconcile.list_jitter":   50,
	"retry.max_retries":       3,
	"retry.delay":             500,
	"retry.max_delay":         5000,
	"circuit_breaker.timeout": 60000,
	"debug.log_level":         "info",
	"debug.max_logs_to_keep":  10,
	"debug.max_log_lines":     100000,
	"loki.batch_max_size":     1000,
	"loki.batch_max_wait_ms":  5000,
}

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"BOT_TOKEN":        "discord.token",
	"INTEGRATION_ROLE": "roles.integration",
	"ACCESS_ROLE":      "roles.access",
	"GATEKEEP_ROLE":    "roles.gatekeep",
	"LOG_LEVEL":        "debug.log_level",
	"DRY_RUN":          "reconcile.dry_run",
}

// LoadConfig loads the configuration from the default search paths and the environment.
// It returns the directory the config file was found in, or an empty string if none was.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadFrom(
		".gatekeeper",
		homeDir+"/.gatekeeper/config",
		"/etc/gatekeeper/config",
		"/app/config",
		"config",
		".",
	)
}

// LoadFrom layers defaults, the first gatekeeper.toml found in configPaths and the
// environment, then validates the result. A missing config file is allowed.
func LoadFrom(configPaths ...string) (*Config, string, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, "", fmt.Errorf("failed to load defaults: %w", err)
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/%s", path, FileName)
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, "", fmt.Errorf("failed to load %s: %w", configPath, err)
		}

		usedConfigPath = path

		break
	}

	err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		mapped, ok := envKeys[key]
		if !ok || strings.TrimSpace(value) == "" {
			return "", nil
		}

		return mapped, value
	}), nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if usedConfigPath != "" {
		if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
			return nil, "", err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	return &config, usedConfigPath, nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Discord.Token) == "" {
		return ErrMissingToken
	}

	if err := c.RoleNames().Validate(); err != nil {
		return err
	}

	if _, err := c.AmbiguityPolicy(); err != nil {
		return err
	}

	if c.Reconcile.Concurrency < 1 {
		return fmt.Errorf("%w: reconcile.concurrency must be at least 1", ErrInvalidSetting)
	}

	return nil
}

// RoleNames returns the configured role names.
func (c *Config) RoleNames() gatekeep.RoleNames {
	return gatekeep.RoleNames{
		Integration: strings.TrimSpace(c.Roles.Integration),
		Access:      strings.TrimSpace(c.Roles.Access),
		Gatekeep:    strings.TrimSpace(c.Roles.Gatekeep),
	}
}

// AmbiguityPolicy parses roles.ambiguity.
func (c *Config) AmbiguityPolicy() (gatekeep.AmbiguityPolicy, error) {
	policy, err := gatekeep.AmbiguityPolicyString(c.Roles.Ambiguity)
	if err != nil {
		return 0, fmt.Errorf("%w: roles.ambiguity %q must be one of %s",
			ErrInvalidSetting, c.Roles.Ambiguity, strings.Join(gatekeep.AmbiguityPolicyStrings(), ", "))
	}

	return policy, nil
}

// RetryOptions converts the retry settings for role mutations.
func (c *Config) RetryOptions() utils.RetryOptions {
	opts := utils.GetMutationRetryOptions()
	opts.MaxRetries = c.Retry.MaxRetries
	opts.InitialInterval = time.Duration(c.Retry.Delay) * time.Millisecond
	opts.MaxInterval = time.Duration(c.Retry.MaxDelay) * time.Millisecond

	return opts
}

func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s", ErrConfigVersionMissing, FileName)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/gatekeeper/tree/%s/config/%s",
			ErrConfigVersionMismatch,
			FileName,
			current,
			expected,
			RepositoryVersion,
			FileName,
		)
	}

	return nil
}
