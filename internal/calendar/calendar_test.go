package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/event"
)

func TestYear(t *testing.T) {
	cases := []struct {
		tm   Time
		want int64
	}{
		{0, 0},
		{Time(Year), 1},
		{Time(Year + Year/2), 1},
		{Time(15*28*Day + 5*Day), 1}, // Calibration has five days
		{Time(42 * Year), 42},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tm.Year(), "time %d", tc.tm)
	}
}

func TestDayOfYear(t *testing.T) {
	cases := []struct {
		tm   Time
		want int
	}{
		{0, 1},
		{Time(Day), 2},
		{Time(Day + Day/2), 2},
		{Time(Year), 1},
		{Time(15*28*Day + 5*Day), 1},
		{Time(Year + 41*Day), 42},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.tm.DayOfYear(), "time %d", tc.tm)
	}
}

func TestMonthAndDay(t *testing.T) {
	cases := []struct {
		tm    Time
		month Month
		day   int
	}{
		{0, AscendingAir, 1},
		{Time(Day), AscendingAir, 2},
		{Time(27 * Day), AscendingAir, 28},
		{Time(28 * Day), ResplendentAir, 1},
		{Time(55 * Day), ResplendentAir, 28},
		{Time(Year), AscendingAir, 1},
		{Time(15 * 28 * Day), Calibration, 1},
		{Time(15*28*Day + 4*Day), Calibration, 5},
		{Time(15*28*Day + 5*Day), AscendingAir, 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.month, tc.tm.Month(), "time %d", tc.tm)
		assert.Equal(t, tc.day, tc.tm.DayOfMonth(), "time %d", tc.tm)
	}
}

func TestClockFields(t *testing.T) {
	assert.Equal(t, 23, Time(9999*Day+23*Hour).Hour())
	assert.Equal(t, 0, Time(24*Hour).Hour())
	assert.Equal(t, 59, Time(9999*Hour+59*Minute).Minute())
	assert.Equal(t, 0, Time(60*Minute).Minute())
	assert.Equal(t, 42, Time(9999*Minute+42).Second())
}

func TestString(t *testing.T) {
	assert.Equal(t, "00:00 h, 1. Ascending Air 0", Time(0).String())
	assert.Equal(t, "15:56 h, 20. Resplendent Earth 147", Time(90274556*Minute).String())
	assert.Equal(t, "Month(17)", Month(17).String())
}

func TestClockAdvancesPerRound(t *testing.T) {
	bus := event.NewBus()
	c := NewClock(bus, Time(23*Hour+59*Minute), 6, zap.NewNop())
	for i := 0; i < 10; i++ {
		bus.Throw(event.RoundCompleted, event.Round{Number: uint64(i + 1)})
	}
	_, err := bus.ProcessEvents()
	require.NoError(t, err)
	assert.Equal(t, Time(Day), c.Now())
	assert.Equal(t, 2, c.Now().DayOfYear())
}
