package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/config"
	"github.com/nightcaste/nightcaste/internal/core/event"
	"github.com/nightcaste/nightcaste/internal/engine"
)

func TestKeyFor(t *testing.T) {
	tests := []struct {
		key  tcell.Key
		r    rune
		want event.Key
		ok   bool
	}{
		{tcell.KeyUp, 0, event.KeyUp, true},
		{tcell.KeyLeft, 0, event.KeyLeft, true},
		{tcell.KeyEnter, 0, event.KeyUse, true},
		{tcell.KeyRune, 'l', event.KeyRight, true},
		{tcell.KeyRune, 'p', event.KeyPause, true},
		{tcell.KeyRune, 'x', "", false},
		{tcell.KeyTab, 0, "", false},
	}
	for _, tt := range tests {
		got, ok := keyFor(tt.key, tt.r)
		assert.Equal(t, tt.ok, ok, "%v %q", tt.key, tt.r)
		assert.Equal(t, tt.want, got)
	}
}

func TestDrawCentresPlayer(t *testing.T) {
	cfg := config.Defaults()
	cfg.Game.Seed = 3
	eng, err := engine.New(cfg, engine.Options{}, zap.NewNop())
	require.NoError(t, err)
	defer eng.Close()
	eng.Start()
	require.NoError(t, eng.Step())

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(41, 21)

	term := &terminal{screen: screen}
	term.Draw(eng)

	ch, _, _, _ := screen.GetContent(20, 10)
	assert.Equal(t, '@', ch)
	ch, _, _, _ = screen.GetContent(1, 20)
	assert.Equal(t, 'w', ch, "status line starts with the map name")
}

func TestNewLoggerFile(t *testing.T) {
	path := t.TempDir() + "/game.log"
	log, err := newLogger(config.LoggingConfig{Level: "debug", File: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())
	assert.FileExists(t, path)
}
