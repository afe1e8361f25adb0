package calendar

import (
	"go.uber.org/zap"

	"github.com/nightcaste/nightcaste/internal/core/event"
)

// Clock advances game time by a fixed amount for every completed round.
type Clock struct {
	now      Time
	perRound int64
	log      *zap.Logger
}

// NewClock starts at start and listens for completed rounds on bus.
func NewClock(bus *event.Bus, start Time, secondsPerRound int64, log *zap.Logger) *Clock {
	c := &Clock{now: start, perRound: secondsPerRound, log: log}
	bus.RegisterListener(event.RoundCompleted, c.onRound)
	return c
}

func (c *Clock) Now() Time { return c.now }

func (c *Clock) onRound(ev event.Event) error {
	before := c.now
	c.now = c.now.Add(c.perRound)
	if before.DayOfYear() != c.now.DayOfYear() {
		c.log.Info("new day", zap.Stringer("date", c.now))
	}
	return nil
}
