package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
)

func TestProgressCalculator_ComputeOverall(t *testing.T) {
	c := NewProgressCalculator(nil)

	tests := []struct {
		current phase.Key
		want    int
	}{
		{phase.KeyLead, 5},        // 0.5*10
		{phase.KeyProspect, 18},   // 10 + 7.5 = 17.5
		{phase.KeyApproved, 33},   // 10 + 15 + 7.5 = 32.5
		{phase.KeyExecution, 60},  // 40 + 20
		{phase.KeySupplement, 85}, // 80 + 5
		{phase.KeyCompletion, 95}, // 90 + 5
		{"UNKNOWN", 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.current), func(t *testing.T) {
			assert.Equal(t, tt.want, c.ComputeOverall(tt.current, false))
		})
	}
}

func TestProgressCalculator_ComputeOverall_Complete(t *testing.T) {
	c := NewProgressCalculator(nil)
	for _, p := range phase.DefaultRegistry().Phases() {
		assert.Equal(t, 100, c.ComputeOverall(p.Key, true))
	}
}

func TestProgressCalculator_OverallBound(t *testing.T) {
	c := NewProgressCalculator(nil)
	for _, p := range phase.DefaultRegistry().Phases() {
		got := c.ComputeOverall(p.Key, false)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, IncompleteProgressCap)
	}
}

func TestProgressCalculator_Cap(t *testing.T) {
	c := NewProgressCalculator(nil, WithProgressCap(90))
	assert.Equal(t, 90, c.ComputeOverall(phase.KeyCompletion, false))

	ignored := NewProgressCalculator(nil, WithProgressCap(100), WithPartialCredit(1.5))
	assert.Equal(t, 95, ignored.ComputeOverall(phase.KeyCompletion, false))
	assert.Equal(t, 33, ignored.ComputeOverall(phase.KeyApproved, false))
}

func TestProgressCalculator_PartialCredit(t *testing.T) {
	c := NewProgressCalculator(nil, WithPartialCredit(0.25))

	// 10 + 15 + 0.25*15 = 28.75
	assert.Equal(t, 29, c.ComputeOverall(phase.KeyApproved, false))
	p := c.ComputeBreakdown(phase.KeyApproved)[phase.KeyApproved]
	assert.Equal(t, 25, p.Progress)
}

func TestProgressCalculator_MonotonicBreakdown(t *testing.T) {
	c := NewProgressCalculator(nil)
	registry := phase.DefaultRegistry()

	for i, current := range registry.Phases() {
		breakdown := c.ComputeBreakdown(current.Key)
		require.Len(t, breakdown, registry.Len())

		currents := 0
		for j, p := range registry.Phases() {
			got := breakdown[p.Key]
			switch {
			case j < i:
				assert.Equal(t, 100, got.Progress)
				assert.True(t, got.IsCompleted)
				assert.False(t, got.IsCurrent || got.IsPending)
			case j == i:
				assert.Equal(t, 50, got.Progress)
				assert.True(t, got.IsCurrent)
				assert.False(t, got.IsCompleted || got.IsPending)
				currents++
			default:
				assert.Equal(t, 0, got.Progress)
				assert.True(t, got.IsPending)
				assert.False(t, got.IsCompleted || got.IsCurrent)
			}
		}
		assert.Equal(t, 1, currents, "phase %s", current.Key)
	}
}

func TestProgressCalculator_UnknownKeyIsStart(t *testing.T) {
	c := NewProgressCalculator(nil)
	assert.Equal(t, c.ComputeBreakdown(phase.KeyLead), c.ComputeBreakdown("NOT_A_PHASE"))
}

func TestProgressCalculator_CompletedBreakdown(t *testing.T) {
	c := NewProgressCalculator(nil)
	for key, p := range c.CompletedBreakdown() {
		assert.Equal(t, 100, p.Progress, key)
		assert.True(t, p.IsCompleted, key)
		assert.False(t, p.IsCurrent, key)
		assert.False(t, p.IsPending, key)
	}
}

func TestProgressCalculator_NotStartedBreakdown(t *testing.T) {
	c := NewProgressCalculator(nil)
	breakdown := c.NotStartedBreakdown()
	require.Len(t, breakdown, 6)

	lead := breakdown[phase.KeyLead]
	assert.Equal(t, 0, lead.Progress)
	assert.True(t, lead.IsCurrent)
	for _, key := range []phase.Key{phase.KeyProspect, phase.KeyApproved, phase.KeyExecution, phase.KeySupplement, phase.KeyCompletion} {
		assert.True(t, breakdown[key].IsPending, key)
		assert.Equal(t, 0, breakdown[key].Progress, key)
	}
}
