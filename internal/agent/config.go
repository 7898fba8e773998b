// Package agent hosts the desktop sync agent: a YAML-configured companion
// process that queues attendance actions while the backend is unreachable and
// replays them when connectivity returns.
package agent

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/attendx/attendx-backend-go/internal/domain/attendance"
	"github.com/attendx/attendx-backend-go/internal/pkg/jwt"
)

type ServerConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

type QueueConfig struct {
	Dir string `yaml:"dir"`
}

type IntervalsConfig struct {
	ProbeSeconds    int `yaml:"probe_seconds"`
	PresenceSeconds int `yaml:"presence_seconds"`
}

type Config struct {
	Server    ServerConfig      `yaml:"server"`
	Queue     QueueConfig       `yaml:"queue"`
	Device    attendance.Device `yaml:"device"`
	Intervals IntervalsConfig   `yaml:"intervals"`
}

func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Server.URL == "" {
		return nil, fmt.Errorf("server.url is required")
	}
	if cfg.Server.Token == "" {
		return nil, fmt.Errorf("server.token is required")
	}
	if cfg.Queue.Dir == "" {
		cfg.Queue.Dir = "queue"
	}
	if cfg.Device == "" {
		cfg.Device = attendance.DeviceWeb
	}
	if !cfg.Device.Valid() {
		return nil, fmt.Errorf("device must be one of mobile, web, qr")
	}
	if cfg.Intervals.ProbeSeconds <= 0 {
		cfg.Intervals.ProbeSeconds = 15
	}
	if cfg.Intervals.PresenceSeconds <= 0 {
		cfg.Intervals.PresenceSeconds = 60
	}

	if expiry, err := jwt.TokenExpiry(cfg.Server.Token); err != nil {
		slog.Warn("could not read token expiry", "error", err)
	} else if until := time.Until(expiry); until < 24*time.Hour {
		slog.Warn("configured token expires soon", "expires_in", until)
	}

	return &cfg, nil
}

func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.Intervals.ProbeSeconds) * time.Second
}

func (c *Config) PresenceInterval() time.Duration {
	return time.Duration(c.Intervals.PresenceSeconds) * time.Second
}
