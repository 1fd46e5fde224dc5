package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"threat-sentinel/internal/alert"
	"threat-sentinel/internal/model"
	"threat-sentinel/internal/rules/builtin"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "configs/threat_sentinel.yaml"

type Config struct {
	Application ApplicationConfig `yaml:"application"`
	Stream      StreamConfig      `yaml:"stream"`
	Text        TextConfig        `yaml:"text"`
	RulesFile   string            `yaml:"rules_file,omitempty"`
	Rules       []model.Rule      `yaml:"rules"`
	Alerting    AlertingConfig    `yaml:"alerting"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ApplicationConfig struct {
	Name           string `yaml:"name"`
	PrometheusPort string `yaml:"prometheus_port"`
	APIPort        string `yaml:"api_port"`
}

type StreamConfig struct {
	TickIntervalMs int    `yaml:"tick_interval_ms"`
	EventWindow    int    `yaml:"event_window"`
	AlertWindow    int    `yaml:"alert_window"`
	Seed           uint64 `yaml:"seed"`
}

// TickInterval returns the tick period as a duration
func (s StreamConfig) TickInterval() time.Duration {
	return time.Duration(s.TickIntervalMs) * time.Millisecond
}

type TextConfig struct {
	PatternsFile string `yaml:"patterns_file,omitempty"`
}

type AlertingConfig struct {
	Enabled            bool              `yaml:"enabled"`
	MaxAlertsPerMinute int               `yaml:"max_alerts_per_minute"`
	Channels           AlertChannels     `yaml:"channels"`
	Email              alert.EmailConfig `yaml:"email"`
	Telegram           TelegramConfig    `yaml:"telegram"`
}

type AlertChannels struct {
	Log      bool `yaml:"log"`
	Email    bool `yaml:"email"`
	Telegram bool `yaml:"telegram"`
}

type TelegramConfig struct {
	BotToken        string `yaml:"bot_token"`
	ChatID          string `yaml:"chat_id"`
	ParseMode       string `yaml:"parse_mode"`
	Enabled         bool   `yaml:"enabled"`
	MessageTemplate string `yaml:"message_template,omitempty"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// LoadConfig reads a YAML config file, applies environment overrides and
// validates it
func LoadConfig(filename string) (*Config, error) {
	if filename == "" {
		filename = DefaultConfigFile
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	config := GetDefaultConfig()
	config.Rules = nil
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filename, err)
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault is LoadConfig that falls back to GetDefaultConfig when
// the file does not exist
func LoadConfigOrDefault(filename string) (*Config, error) {
	config, err := LoadConfig(filename)
	if !errors.Is(err, fs.ErrNotExist) {
		return config, err
	}

	config = GetDefaultConfig()
	config.ApplyEnv()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

// ApplyEnv overrides secrets and the log level from the environment
func (c *Config) ApplyEnv() {
	if token := os.Getenv("THREAT_SENTINEL_TELEGRAM_TOKEN"); token != "" {
		c.Alerting.Telegram.BotToken = token
	}
	if chatID := os.Getenv("THREAT_SENTINEL_TELEGRAM_CHAT_ID"); chatID != "" {
		c.Alerting.Telegram.ChatID = chatID
	}
	if level := os.Getenv("THREAT_SENTINEL_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate fills defaults for unset values and rejects impossible ones
func (c *Config) Validate() error {
	if c.Application.Name == "" {
		c.Application.Name = "threat-sentinel"
	}
	if c.Application.PrometheusPort == "" {
		c.Application.PrometheusPort = "8080"
	}
	if c.Application.APIPort == "" {
		c.Application.APIPort = "5001"
	}

	if c.Stream.TickIntervalMs == 0 {
		c.Stream.TickIntervalMs = 1000
	}
	if c.Stream.TickIntervalMs < 0 {
		return fmt.Errorf("stream.tick_interval_ms must be positive, got %d", c.Stream.TickIntervalMs)
	}
	if c.Stream.EventWindow == 0 {
		c.Stream.EventWindow = 50
	}
	if c.Stream.EventWindow < 0 {
		return fmt.Errorf("stream.event_window must be positive, got %d", c.Stream.EventWindow)
	}
	if c.Stream.AlertWindow == 0 {
		c.Stream.AlertWindow = 10
	}
	if c.Stream.AlertWindow < 0 {
		return fmt.Errorf("stream.alert_window must be positive, got %d", c.Stream.AlertWindow)
	}

	if len(c.Rules) == 0 {
		c.Rules = builtin.DefaultRules()
	}

	if c.Alerting.MaxAlertsPerMinute <= 0 {
		c.Alerting.MaxAlertsPerMinute = 10
	}
	if c.Alerting.Channels.Email && c.Alerting.Email.To == "" {
		return fmt.Errorf("alerting.email.to is required when the email channel is enabled")
	}
	if c.Alerting.Channels.Telegram && c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" || c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram needs bot_token and chat_id when enabled")
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	return nil
}

// GetDefaultConfig returns a config with every default applied
func GetDefaultConfig() *Config {
	return &Config{
		Application: ApplicationConfig{
			Name:           "threat-sentinel",
			PrometheusPort: "8080",
			APIPort:        "5001",
		},
		Stream: StreamConfig{
			TickIntervalMs: 1000,
			EventWindow:    50,
			AlertWindow:    10,
		},
		Rules: builtin.DefaultRules(),
		Alerting: AlertingConfig{
			Enabled:            true,
			MaxAlertsPerMinute: 10,
			Channels: AlertChannels{
				Log: true,
			},
			Email: alert.EmailConfig{
				Subject: "Threat alert",
			},
			Telegram: TelegramConfig{
				ParseMode: "Markdown",
			},
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "json",
		},
	}
}

// SaveConfig writes the config as YAML
func (c *Config) SaveConfig(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}

	return nil
}

// GetRuleConfigByName returns the configuration of the named packet rule
func (c *Config) GetRuleConfigByName(name string) (*model.Rule, bool) {
	for i := range c.Rules {
		if c.Rules[i].Name == name {
			return &c.Rules[i], true
		}
	}
	return nil, false
}

func (c *Config) IsRuleEnabled(name string) bool {
	rule, exists := c.GetRuleConfigByName(name)
	return exists && rule.Enabled
}
