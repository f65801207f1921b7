package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for the repository layout the bot inspects.
const (
	DefaultTemplateDirectory = ".github/ISSUE_TEMPLATE"
	DefaultReplyPath         = ".github/ISSUE_TEMPLATE_REPLY.md"
	DefaultLabel             = "more-info-required"
	DefaultListenAddr        = ":3000"
	DefaultWebhookPath       = "/webhook"
	DefaultPlatform          = "github"
)

// Config holds the application configuration
type Config struct {
	GitHub    GitHubConfig    `mapstructure:"github"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	VCS       VCSConfig       `mapstructure:"vcs"`
}

// GitHubConfig holds API credentials. Either Token or the App triple
// (AppID, InstallationID, PrivateKeyPath) must be set.
type GitHubConfig struct {
	Token          string `mapstructure:"token"`
	TokenB64       string `mapstructure:"token_b64"`
	AppID          int64  `mapstructure:"app_id"`
	InstallationID int64  `mapstructure:"installation_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	BotLogin       string `mapstructure:"bot_login"`
	BaseURL        string `mapstructure:"base_url"`
}

// WebhookConfig controls the HTTP intake.
type WebhookConfig struct {
	Addr   string `mapstructure:"addr"`
	Path   string `mapstructure:"path"`
	Secret string `mapstructure:"secret"`
}

// TemplatesConfig points at the template documents inside the target repository.
type TemplatesConfig struct {
	Directory string `mapstructure:"directory"`
	ReplyPath string `mapstructure:"reply_path"`
	Label     string `mapstructure:"label"`
}

// LoggingConfig mirrors the logging package options.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

// VCSConfig selects the hosting platform.
type VCSConfig struct {
	Platform string `mapstructure:"platform"`
}

// UsesApp reports whether GitHub App credentials are configured.
func (c *Config) UsesApp() bool {
	return c.GitHub.AppID != 0
}

// Load reads configuration from path (or the standard locations when path
// is empty), then applies HEADERCHECK_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HEADERCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.GitHub.Token == "" && cfg.GitHub.TokenB64 != "" {
		token, err := decodeCredentials(cfg.GitHub.TokenB64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode GitHub token: %w", err)
		}
		cfg.GitHub.Token = token
	}

	// Conventional variables used by GitHub Actions and most deploy targets.
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Webhook.Secret == "" {
		cfg.Webhook.Secret = os.Getenv("WEBHOOK_SECRET")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.token", "")
	v.SetDefault("github.token_b64", "")
	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.installation_id", 0)
	v.SetDefault("github.private_key_path", "")
	v.SetDefault("github.bot_login", "")
	v.SetDefault("github.base_url", "")
	v.SetDefault("webhook.addr", DefaultListenAddr)
	v.SetDefault("webhook.path", DefaultWebhookPath)
	v.SetDefault("webhook.secret", "")
	v.SetDefault("templates.directory", DefaultTemplateDirectory)
	v.SetDefault("templates.reply_path", DefaultReplyPath)
	v.SetDefault("templates.label", DefaultLabel)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
	v.SetDefault("logging.file", "")
	v.SetDefault("vcs.platform", DefaultPlatform)
}

// findConfigFile returns the first existing config file in the standard locations.
func findConfigFile() string {
	if env := os.Getenv("HEADERCHECK_CONFIG"); env != "" {
		return env
	}

	var candidates []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(homeDir, ".config", "headercheck", "config.yaml"))
	}
	candidates = append(candidates, ".headercheck.yaml")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// decodeCredentials decodes base64 encoded credentials
func decodeCredentials(value string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("failed to decode credential: %w", err)
	}
	return string(decoded), nil
}

// Validate checks everything `serve` needs.
func (c *Config) Validate() error {
	if err := c.ValidateAuth(); err != nil {
		return err
	}
	if c.Webhook.Secret == "" {
		return errors.New("webhook secret is required")
	}
	if c.Templates.Directory == "" {
		return errors.New("template directory is required")
	}
	if c.Templates.Label == "" {
		return errors.New("needs-info label is required")
	}
	if c.UsesApp() && c.GitHub.BotLogin == "" {
		return errors.New("bot login is required when authenticating as a GitHub App")
	}
	return nil
}

// ValidateAuth checks that exactly one credential mode is usable.
func (c *Config) ValidateAuth() error {
	if c.UsesApp() {
		if c.GitHub.InstallationID <= 0 {
			return errors.New("github installation id is required with app_id")
		}
		if c.GitHub.PrivateKeyPath == "" {
			return errors.New("github private key path is required with app_id")
		}
		return nil
	}
	if c.GitHub.Token == "" {
		return errors.New("github token is required")
	}
	return nil
}
