// Package metrics exposes engine counters in the Prometheus text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nightcaste/nightcaste/internal/core/event"
	coresys "github.com/nightcaste/nightcaste/internal/core/system"
)

const namespace = "nightcaste"

// Collector owns a private registry so several engines can run in one
// process (tests do).
type Collector struct {
	reg        *prometheus.Registry
	dispatched *prometheus.CounterVec
	handlers   prometheus.Counter
	rounds     prometheus.Counter
	maps       *prometheus.CounterVec
	steps      prometheus.Counter
}

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatched_total",
			Help:      "Events popped from the bus, by type.",
		}, []string{"type"}),
		handlers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_handler_calls_total",
			Help:      "Handler invocations across all dispatched events.",
		}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_completed_total",
			Help:      "Turn rounds completed by the scheduler.",
		}),
		maps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maps_generated_total",
			Help:      "Map levels generated, by generator.",
		}, []string{"generator"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logic_steps_total",
			Help:      "Fixed logic steps run.",
		}),
	}
	c.reg.MustRegister(c.dispatched, c.handlers, c.rounds, c.maps, c.steps)
	return c
}

// Gauge registers a gauge read from fn at scrape time.
func (c *Collector) Gauge(name, help string, fn func() float64) {
	c.reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// EventDispatched implements event.Observer.
func (c *Collector) EventDispatched(ev event.Event, handlers int) {
	c.dispatched.WithLabelValues(string(ev.Type)).Inc()
	c.handlers.Add(float64(handlers))
	if ev.Type == event.RoundCompleted {
		c.rounds.Inc()
	}
}

// MapGenerated implements mapgen.Recorder.
func (c *Collector) MapGenerated(generator string) {
	c.maps.WithLabelValues(generator).Inc()
}

// StepSystem counts logic steps at the end of every step.
func (c *Collector) StepSystem() coresys.System { return stepCounter{c.steps} }

type stepCounter struct{ steps prometheus.Counter }

func (stepCounter) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s stepCounter) Update(time.Duration) error {
	s.steps.Inc()
	return nil
}

// Handler serves the registry for /metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
