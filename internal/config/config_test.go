package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "game.toml"))
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Game.StepRate.Duration)
	assert.Equal(t, 80, cfg.MapGen.Width)
	assert.InDelta(t, 1.3, cfg.MapGen.MaxRatio, 1e-9)
	require.Len(t, cfg.Systems, 6)
	assert.Equal(t, "TurnProcessor", cfg.Systems[1].Name)
	assert.Equal(t, "200ms", cfg.Systems[1].Options["min_turn_time"])
	assert.Equal(t, []BehaviourConfig{{Component: "Input", Name: "InputBehaviour"}}, cfg.Behaviours)
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
[mapgen]
width = 40

[[systems]]
name = "MovementProcessor"
`), "inline")
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.MapGen.Width)
	assert.Equal(t, 50, cfg.MapGen.Height)
	assert.Equal(t, []SystemConfig{{Name: "MovementProcessor"}}, cfg.Systems)
	assert.Equal(t, Defaults().Behaviours, cfg.Behaviours)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`[game]
step_rate = "soon"`), "inline")
	require.Error(t, err)

	_, err = Parse([]byte(`[game]
colour = "blue"`), "inline")
	require.ErrorContains(t, err, "unknown key")

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
