package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate and LoadConfig for unusable settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable of a session. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	TileSize          float64 `yaml:"tile_size"`
	MoveSpeed         float64 `yaml:"move_speed"`
	PlayerRadius      float64 `yaml:"player_radius"`
	CollectibleRadius float64 `yaml:"collectible_radius"`

	Cols          int     `yaml:"cols"`
	Rows          int     `yaml:"rows"`
	Collectibles  int     `yaml:"collectibles"`
	BaseCountdown float64 `yaml:"base_countdown"`
	Growth        float64 `yaml:"growth"`

	// MaxStep caps the simulated time of one scheduler pass. Longer ticks are
	// split so nothing moves more than a fraction of a tile per pass.
	MaxStep float64 `yaml:"max_step"`

	// Seed feeds the session RNG. Zero picks a random seed.
	Seed uint64 `yaml:"seed"`

	Hazard HazardConfig `yaml:"hazard"`
}

// HazardConfig tunes falling books.
type HazardConfig struct {
	FallChance   float64 `yaml:"fall_chance"`
	Cooldown     float64 `yaml:"cooldown"`
	DropDelay    float64 `yaml:"drop_delay"`
	Lifetime     float64 `yaml:"lifetime"`
	SearchRadius float64 `yaml:"search_radius"` // in tiles
	Impulse      float64 `yaml:"impulse"`
	Damping      float64 `yaml:"damping"`
	Radius       float64 `yaml:"radius"`
}

func DefaultConfig() Config {
	return Config{
		TileSize:          64,
		MoveSpeed:         180,
		PlayerRadius:      20,
		CollectibleRadius: 19.2,
		Cols:              13,
		Rows:              11,
		Collectibles:      5,
		BaseCountdown:     90,
		Growth:            1.5,
		MaxStep:           0.05,
		Hazard: HazardConfig{
			FallChance:   1.0,
			Cooldown:     0.3,
			DropDelay:    1.0,
			Lifetime:     5,
			SearchRadius: 3,
			Impulse:      240,
			Damping:      0.8,
			Radius:       16,
		},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects unusable values and clamps FallChance into [0,1].
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"tile_size", c.TileSize},
		{"move_speed", c.MoveSpeed},
		{"player_radius", c.PlayerRadius},
		{"collectible_radius", c.CollectibleRadius},
		{"base_countdown", c.BaseCountdown},
		{"growth", c.Growth},
		{"max_step", c.MaxStep},
		{"hazard.lifetime", c.Hazard.Lifetime},
		{"hazard.radius", c.Hazard.Radius},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}

	if c.Growth < 1 {
		return fmt.Errorf("%w: growth must be at least 1, got %v", ErrInvalidConfig, c.Growth)
	}
	if c.Cols < 1 || c.Rows < 1 {
		return fmt.Errorf("%w: maze size %dx%d", ErrInvalidConfig, c.Cols, c.Rows)
	}
	if c.Collectibles < 1 {
		return fmt.Errorf("%w: collectibles must be at least 1, got %d", ErrInvalidConfig, c.Collectibles)
	}
	if c.PlayerRadius >= c.TileSize/2 {
		return fmt.Errorf("%w: player_radius %v does not fit a %v corridor", ErrInvalidConfig, c.PlayerRadius, c.TileSize)
	}

	h := &c.Hazard
	if h.Cooldown < 0 || h.DropDelay < 0 || h.SearchRadius < 0 || h.Impulse < 0 || h.Damping < 0 {
		return fmt.Errorf("%w: hazard timings, radius, impulse and damping must not be negative", ErrInvalidConfig)
	}
	h.FallChance = min(max(h.FallChance, 0), 1)
	return nil
}

// CountdownFor returns the countdown of a 1-based level.
func (c Config) CountdownFor(level int) float64 {
	countdown := c.BaseCountdown
	for range level - 1 {
		countdown *= c.Growth
	}
	return countdown
}

// DimensionsFor returns the maze size of a 1-based level. Each level multiplies
// the previous size by Growth and truncates, so rounding loss accumulates.
func (c Config) DimensionsFor(level int) (cols, rows int) {
	cols, rows = c.Cols, c.Rows
	for range level - 1 {
		cols, rows = c.grow(cols, rows)
	}
	return cols, rows
}

func (c Config) grow(cols, rows int) (int, int) {
	return int(float64(cols) * c.Growth), int(float64(rows) * c.Growth)
}
