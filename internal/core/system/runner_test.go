package system

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
	err   error
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"turn", PhaseTurn, &log, nil})
	r.Register(recorder{"dispatch", PhaseDispatch, &log, nil})
	r.Register(recorder{"behaviour-a", PhaseBehaviour, &log, nil})
	r.Register(recorder{"behaviour-b", PhaseBehaviour, &log, nil})
	r.Register(recorder{"input", PhaseInput, &log, nil})

	require.NoError(t, r.Tick(time.Millisecond))
	assert.Equal(t, []string{"input", "behaviour-a", "behaviour-b", "dispatch", "turn"}, log)

	log = log[:0]
	require.NoError(t, r.TickPhase(PhaseBehaviour, time.Millisecond))
	assert.Equal(t, []string{"behaviour-a", "behaviour-b"}, log)
}

func TestRunnerStopsOnError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	r := NewRunner()
	r.Register(recorder{"dispatch", PhaseDispatch, &log, boom})
	r.Register(recorder{"turn", PhaseTurn, &log, nil})

	err := r.Tick(time.Millisecond)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "dispatch phase")
	assert.Equal(t, []string{"dispatch"}, log)
}
