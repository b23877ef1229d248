//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Parse([]byte("app:\n  host: https://club.example/\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.App.Host != "https://club.example" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.App.Host)
	}
	if cfg.HTTP.Port != 8080 || cfg.Bot.Workers != 4 || cfg.Comments.DailyLimit != 50 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Horoscope.TTL != 24*time.Hour || cfg.Redis.TTL != time.Hour {
		t.Errorf("unexpected ttl defaults: horoscope=%s redis=%s", cfg.Horoscope.TTL, cfg.Redis.TTL)
	}
	if cfg.App.Lang != "ru" {
		t.Errorf("expected default lang ru, got %q", cfg.App.Lang)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REDIS_URL", "")

	cfg, err := Parse([]byte("bot:\n  token: file-token\nredis:\n  url: localhost:6379\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Bot.Token != "env-token" {
		t.Errorf("expected env token, got %q", cfg.Bot.Token)
	}
	if cfg.Database.URL != "postgres://env" {
		t.Errorf("expected env database url, got %q", cfg.Database.URL)
	}
	if cfg.Redis.URL != "localhost:6379" {
		t.Errorf("expected file redis url, got %q", cfg.Redis.URL)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	write := func(t *testing.T, body string) string {
		t.Helper()
		p := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		return p
	}

	t.Run("valid file", func(t *testing.T) {
		p := write(t, `
app:
  host: https://club.example
  launch_date: "2019-03-18"
bot:
  token: abc
database:
  url: postgres://localhost/club
redis:
  url: localhost:6379
`)
		cfg, err := LoadConfig(p, false)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		want := time.Date(2019, 3, 18, 0, 0, 0, 0, time.UTC)
		if !cfg.LaunchTime().Equal(want) {
			t.Errorf("expected launch %s, got %s", want, cfg.LaunchTime())
		}
	})

	t.Run("missing token is allowed in dev mode", func(t *testing.T) {
		p := write(t, "app:\n  host: https://club.example\ndatabase:\n  url: pg\nredis:\n  url: r\n")
		if _, err := LoadConfig(p, false); err == nil {
			t.Fatal("expected an error without bot token")
		}
		if _, err := LoadConfig(p, true); err != nil {
			t.Fatalf("dev mode should not require a token: %v", err)
		}
	})

	t.Run("dev mode needs no database or redis", func(t *testing.T) {
		p := write(t, "app:\n  host: https://club.example\n")
		if _, err := LoadConfig(p, false); err == nil {
			t.Fatal("expected an error without database url")
		}
		if _, err := LoadConfig(p, true); err != nil {
			t.Fatalf("dev mode: %v", err)
		}
	})

	t.Run("bad launch date", func(t *testing.T) {
		p := write(t, "app:\n  host: h\n  launch_date: soon\nbot:\n  token: t\ndatabase:\n  url: pg\nredis:\n  url: r\n")
		if _, err := LoadConfig(p, false); err == nil {
			t.Fatal("expected an error for a malformed launch date")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
			t.Fatal("expected an error for a missing file")
		}
	})
}
