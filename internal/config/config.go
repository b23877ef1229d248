// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type AppConfig struct {
	Host       string `yaml:"host"`        // public site origin, e.g. https://vas3k.club
	LaunchDate string `yaml:"launch_date"` // YYYY-MM-DD, first weekly issue
	Lang       string `yaml:"lang"`
}

type BotConfig struct {
	Token       string `yaml:"token"`
	Mode        string `yaml:"mode"` // polling | webhook (future)
	Username    string `yaml:"username"`
	Workers     int    `yaml:"workers"` // polling workers
	AdminChatID int64  `yaml:"admin_chat_id"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	// Fixture is a JSON seed for the in-memory store used in dev mode.
	Fixture string `yaml:"fixture"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type CommentsConfig struct {
	DailyLimit int `yaml:"daily_limit"`
}

type HoroscopeConfig struct {
	URL     string        `yaml:"url"`
	Cron    string        `yaml:"cron"`
	TTL     time.Duration `yaml:"ttl"`
	Timeout time.Duration `yaml:"timeout"`
}

type Config struct {
	App       AppConfig       `yaml:"app"`
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Comments  CommentsConfig  `yaml:"comments"`
	Horoscope HoroscopeConfig `yaml:"horoscope"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LaunchTime parses App.LaunchDate; the zero time is returned when unset.
func (c *Config) LaunchTime() time.Time {
	t, err := time.Parse("2006-01-02", c.App.LaunchDate)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func LoadConfig(configPath string, dev bool) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(b)
	if err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML, applies env overrides and fills defaults.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)

	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "polling"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.App.Lang == "" {
		cfg.App.Lang = "ru"
	}
	cfg.App.Host = strings.TrimRight(cfg.App.Host, "/")
	if cfg.Comments.DailyLimit <= 0 {
		cfg.Comments.DailyLimit = 50
	}
	if cfg.Horoscope.Cron == "" {
		cfg.Horoscope.Cron = "0 */6 * * *"
	}
	if cfg.Horoscope.Timeout <= 0 {
		cfg.Horoscope.Timeout = 5 * time.Second
	}
	cfg.Horoscope.TTL = normalizeTTL(cfg.Horoscope.TTL, 24*time.Hour)
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, time.Hour)
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.App.Host == "" {
		return errors.New("app.host is required")
	}
	if c.App.LaunchDate != "" && c.LaunchTime().IsZero() {
		return fmt.Errorf("app.launch_date %q is not YYYY-MM-DD", c.App.LaunchDate)
	}
	if c.Bot.Token == "" && !c.Runtime.Dev {
		return errors.New("bot.token is required")
	}
	if c.Runtime.Dev {
		// dev runs on the in-memory store and skips redis when unset
		return nil
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.Bot.Token = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
