package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineRunsUntilDone(t *testing.T) {
	eng := NewEngine()
	var ticks []uint64
	eng.OnTick = func(tick uint64) error {
		ticks = append(ticks, tick)
		return nil
	}
	doneChecks := 0
	eng.Done = func() bool {
		doneChecks++
		return len(ticks) >= 3
	}
	reports := 0
	eng.ReportEvery = 2
	eng.OnReport = func(uint64) { reports++ }

	require.NoError(t, eng.Run())
	assert.Equal(t, []uint64{1, 2, 3}, ticks)
	assert.Equal(t, uint64(3), eng.Tick)
	assert.Equal(t, 4, doneChecks, "done is checked once per tick boundary")
	assert.Equal(t, 1, reports)
}

func TestEngineTickLimit(t *testing.T) {
	eng := NewEngine()
	eng.MaxTicks = 5
	eng.OnTick = func(uint64) error { return nil }
	eng.Done = func() bool { return false }

	err := eng.Run()
	assert.ErrorIs(t, err, ErrTickLimit)
	assert.Equal(t, uint64(5), eng.Tick)
}

func TestEngineStopsOnTickError(t *testing.T) {
	boom := errors.New("boom")
	eng := NewEngine()
	eng.OnTick = func(tick uint64) error {
		if tick == 2 {
			return boom
		}
		return nil
	}
	eng.Done = func() bool { return false }

	err := eng.Run()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, uint64(2), eng.Tick)
}
