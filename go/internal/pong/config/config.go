package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ServePolicy selects how a serve picks its launch angle
type ServePolicy string

const (
	// ServeUniform picks any angle in [0, 2π)
	ServeUniform ServePolicy = "uniform"
	// ServeDiagonal keeps the ball in the four diagonal quadrants
	ServeDiagonal ServePolicy = "diagonal"
)

// Game holds the tuning shared by both peers of a match.
// Both peers must run the same values or their simulations drift apart between resyncs.
type Game struct {
	Width        float64     `yaml:"width"`
	Height       float64     `yaml:"height"`
	Padding      float64     `yaml:"padding"` // gap between a paddle and its wall
	PaddleWidth  float64     `yaml:"paddle_width"`
	PaddleHeight float64     `yaml:"paddle_height"`
	BallSize     float64     `yaml:"ball_size"`
	PlayerSpeed  float64     `yaml:"player_speed"` // paddle step per frame
	BallSpeed    float64     `yaml:"ball_speed"`   // serve magnitude
	WinScore     int         `yaml:"win_score"`
	ServePolicy  ServePolicy `yaml:"serve_policy"`
	FrameRate    int         `yaml:"frame_rate"`
}

// Default returns the stock playfield
func Default() Game {
	return Game{
		Width:        800,
		Height:       400,
		Padding:      10,
		PaddleWidth:  10,
		PaddleHeight: 100,
		BallSize:     10,
		PlayerSpeed:  5,
		BallSpeed:    5,
		WinScore:     10,
		ServePolicy:  ServeUniform,
		FrameRate:    60,
	}
}

// Validate checks that the playfield can hold both paddles and the ball
func (g Game) Validate() error {
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return fmt.Errorf("playfield must be positive, got %vx%v", g.Width, g.Height)
	case g.PaddleWidth <= 0 || g.PaddleHeight <= 0:
		return fmt.Errorf("paddle must be positive, got %vx%v", g.PaddleWidth, g.PaddleHeight)
	case g.PaddleHeight > g.Height:
		return fmt.Errorf("paddle height %v exceeds playfield height %v", g.PaddleHeight, g.Height)
	case 2*(g.Padding+g.PaddleWidth) >= g.Width:
		return fmt.Errorf("paddles do not fit in playfield width %v", g.Width)
	case g.BallSize <= 0 || g.BallSize >= g.Height:
		return fmt.Errorf("invalid ball size %v", g.BallSize)
	case g.PlayerSpeed <= 0 || g.BallSpeed <= 0:
		return fmt.Errorf("speeds must be positive")
	case g.WinScore <= 0:
		return fmt.Errorf("win score must be positive, got %d", g.WinScore)
	case g.FrameRate <= 0:
		return fmt.Errorf("frame rate must be positive, got %d", g.FrameRate)
	}

	switch g.ServePolicy {
	case ServeUniform, ServeDiagonal:
	default:
		return fmt.Errorf("unknown serve policy %q", g.ServePolicy)
	}
	return nil
}

// FrameInterval is the time between two simulation ticks
func (g Game) FrameInterval() time.Duration {
	return time.Second / time.Duration(g.FrameRate)
}

// Load reads a yaml file over the defaults. An empty path yields the defaults.
func Load(path string) (Game, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Game{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Game{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Game{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads PONG_CONFIG and applies PONG_* overrides
func FromEnv() (Game, error) {
	cfg, err := Load(GetEnv("PONG_CONFIG", ""))
	if err != nil {
		return Game{}, err
	}

	cfg.WinScore = GetEnvAsInt("PONG_WIN_SCORE", cfg.WinScore)
	cfg.FrameRate = GetEnvAsInt("PONG_FRAME_RATE", cfg.FrameRate)
	cfg.ServePolicy = ServePolicy(GetEnv("PONG_SERVE_POLICY", string(cfg.ServePolicy)))

	if err := cfg.Validate(); err != nil {
		return Game{}, fmt.Errorf("invalid environment overrides: %w", err)
	}
	return cfg, nil
}

// GetEnv returns the variable or a default
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvAsInt returns the variable parsed as an int, or the default
func GetEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// GetEnvAsBool returns the variable parsed as a bool, or the default
func GetEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
