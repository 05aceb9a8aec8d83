package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/waypoint/internal/logging"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/playback"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the waypoint CLI.
type Config struct {
	Start    int              `yaml:"start" json:"start" env:"WAYPOINT_START" validate:"gte=0"`
	Directed bool             `yaml:"directed" json:"directed" env:"WAYPOINT_DIRECTED"`
	Graph    domain.Adjacency `yaml:"graph" json:"graph"`
	Playback PlaybackConfig   `yaml:"playback" json:"playback"`
	Server   ServerConfig     `yaml:"server" json:"server"`
	Log      LogConfig        `yaml:"log" json:"log"`
}

// PlaybackConfig describes the speed slider. The step interval is
// BaseInterval divided by the speed multiplier.
type PlaybackConfig struct {
	BaseInterval time.Duration `yaml:"base_interval" json:"base_interval" env:"WAYPOINT_BASE_INTERVAL" validate:"gt=0"`
	Speed        float64       `yaml:"speed" json:"speed" env:"WAYPOINT_SPEED" validate:"gt=0"`
	MinSpeed     float64       `yaml:"min_speed" json:"min_speed" validate:"gt=0"`
	MaxSpeed     float64       `yaml:"max_speed" json:"max_speed" validate:"gtefield=MinSpeed"`
}

type ServerConfig struct {
	Port int `yaml:"port" json:"port" env:"WAYPOINT_PORT" validate:"gte=1,lte=65535"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level" env:"WAYPOINT_LOG_LEVEL" validate:"oneof=debug info warn warning error"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Playback: PlaybackConfig{
			BaseInterval: playback.DefaultSpeedRange.Base,
			Speed:        playback.DefaultSpeed,
			MinSpeed:     playback.DefaultSpeedRange.Min,
			MaxSpeed:     playback.DefaultSpeedRange.Max,
		},
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML or JSON file on top of the defaults, applies WAYPOINT_*
// environment overrides and validates the result.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(path, data, cfg); err != nil {
				return nil, err
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Validate checks field constraints, then the graph against the start vertex.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.BuildGraph().Validate(c.StartVertex())
}

// BuildGraph returns the configured graph, or the reference graph when none
// is set.
func (c *Config) BuildGraph() *domain.Graph {
	if len(c.Graph) == 0 {
		return domain.ReferenceGraph()
	}
	return domain.FromAdjacency(c.Graph, domain.WithDirected(c.Directed))
}

// StartVertex returns the configured source vertex.
func (c *Config) StartVertex() domain.Vertex {
	return domain.Vertex(c.Start)
}

// SpeedRange returns the slider bounds for the playback controller.
func (c *Config) SpeedRange() playback.SpeedRange {
	return playback.SpeedRange{
		Base: c.Playback.BaseInterval,
		Min:  c.Playback.MinSpeed,
		Max:  c.Playback.MaxSpeed,
	}
}

// PlaybackOptions returns controller options for the configured speed.
func (c *Config) PlaybackOptions() ([]playback.Option, error) {
	r := c.SpeedRange()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	interval, err := r.Interval(c.Playback.Speed)
	if err != nil {
		return nil, err
	}
	return []playback.Option{
		playback.WithSpeedRange(r),
		playback.WithInterval(interval),
	}, nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() slog.Level {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}
