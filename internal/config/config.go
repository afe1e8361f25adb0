package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Game       GameConfig        `toml:"game"`
	MapGen     MapGenConfig      `toml:"mapgen"`
	World      WorldConfig       `toml:"world"`
	QuadTree   QuadTreeConfig    `toml:"quadtree"`
	Systems    []SystemConfig    `toml:"systems"`
	Behaviours []BehaviourConfig `toml:"behaviours"`
	Blueprints BlueprintConfig   `toml:"blueprints"`
	Scripting  ScriptingConfig   `toml:"scripting"`
	Logging    LoggingConfig     `toml:"logging"`
	Metrics    MetricsConfig     `toml:"metrics"`
}

type GameConfig struct {
	StepRate        Duration `toml:"step_rate"`         // fixed logic sub-step
	MaxSteps        int      `toml:"max_steps"`         // logic steps per Advance before time is dropped
	Seed            int64    `toml:"seed"`              // 0 = time based
	StartMap        string   `toml:"start_map"`         // map entered on WorldEnter
	StartGenerator  string   `toml:"start_generator"`   // generator for the start map
	Player          string   `toml:"player"`            // player blueprint
	SecondsPerRound int64    `toml:"seconds_per_round"` // calendar time per completed round
}

type MapGenConfig struct {
	Width        int     `toml:"width"`
	Height       int     `toml:"height"`
	Depth        int     `toml:"depth"`
	MinPartition int     `toml:"min_partition"`
	MaxRatio     float64 `toml:"max_ratio"`
	TileSize     int     `toml:"tile_size"`
	Wall         string  `toml:"wall"`
	Floor        string  `toml:"floor"`
	Stairs       string  `toml:"stairs"`
}

type WorldConfig struct {
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	NoiseScale float64 `toml:"noise_scale"`
	StairsX    int     `toml:"stairs_x"`
	StairsY    int     `toml:"stairs_y"`
	EntryX     int     `toml:"entry_x"`
	EntryY     int     `toml:"entry_y"`
}

type QuadTreeConfig struct {
	MaxItems int `toml:"max_items"`
	MaxLevel int `toml:"max_level"`
}

// SystemConfig names one processor and its options, e.g.
//
//	[[systems]]
//	name = "TurnProcessor"
//	options = { min_turn_time = "200ms" }
type SystemConfig struct {
	Name    string         `toml:"name"`
	Options map[string]any `toml:"options"`
}

// BehaviourConfig binds a behaviour to every entity carrying a component.
type BehaviourConfig struct {
	Component string `toml:"component"`
	Name      string `toml:"name"`
}

type BlueprintConfig struct {
	Dir string `toml:"dir"` // empty = embedded blueprints
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // empty = embedded scripts
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // terminal front end logs here instead of stderr
}

type MetricsConfig struct {
	Listen string `toml:"listen"` // empty disables the /metrics endpoint
}

// Duration decodes TOML strings such as "200ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	systems, behaviours := cfg.Systems, cfg.Behaviours
	cfg.Systems, cfg.Behaviours = nil, nil
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, fmt.Errorf("parse config %s: unknown key %s", name, keys[0])
	}
	if !md.IsDefined("systems") {
		cfg.Systems = systems
	}
	if !md.IsDefined("behaviours") {
		cfg.Behaviours = behaviours
	}
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Game: GameConfig{
			StepRate:        Duration{20 * time.Millisecond},
			MaxSteps:        10,
			StartMap:        "world",
			StartGenerator:  "world",
			Player:          "game.player",
			SecondsPerRound: 6,
		},
		MapGen: MapGenConfig{
			Width:        80,
			Height:       50,
			Depth:        6,
			MinPartition: 8,
			MaxRatio:     1.3,
			TileSize:     32,
			Wall:         "tiles.stone_wall",
			Floor:        "tiles.stone_floor",
			Stairs:       "tiles.stairs",
		},
		World: WorldConfig{
			Width:      140,
			Height:     100,
			NoiseScale: 0.08,
			StairsX:    25,
			StairsY:    25,
			EntryX:     20,
			EntryY:     20,
		},
		QuadTree: QuadTreeConfig{
			MaxItems: 5,
			MaxLevel: 5,
		},
		Systems: []SystemConfig{
			{Name: "InputProcessor"},
			{Name: "TurnProcessor", Options: map[string]any{"min_turn_time": "200ms"}},
			{Name: "WorldInitializer"},
			{Name: "MapChangeProcessor"},
			{Name: "MovementProcessor"},
			{Name: "UseProcessor"},
		},
		Behaviours: []BehaviourConfig{
			{Component: "Input", Name: "InputBehaviour"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
