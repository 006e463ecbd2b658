package service

import (
	"math"

	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

const (
	// CurrentPhasePartialCredit is the share of the active phase's weight counted as done.
	// No sub-phase completion signal exists yet, so an active phase counts as half done.
	CurrentPhasePartialCredit = 0.5

	// IncompleteProgressCap bounds the overall percentage until the workflow is flagged complete
	IncompleteProgressCap = 95

	// CompleteProgress is reported once the workflow is flagged complete
	CompleteProgress = 100
)

// ProgressCalculator turns a lifecycle position into per-phase and overall progress
type ProgressCalculator struct {
	registry      *phase.Registry
	partialCredit float64
	progressCap   int
}

// ProgressOption customizes a ProgressCalculator
type ProgressOption func(*ProgressCalculator)

// WithPartialCredit overrides the share of the active phase counted as done.
// Values outside (0, 1) are ignored.
func WithPartialCredit(credit float64) ProgressOption {
	return func(c *ProgressCalculator) {
		if credit > 0 && credit < 1 {
			c.partialCredit = credit
		}
	}
}

// WithProgressCap overrides the ceiling applied to incomplete workflows.
// Values outside 1..99 are ignored.
func WithProgressCap(ceiling int) ProgressOption {
	return func(c *ProgressCalculator) {
		if ceiling >= 1 && ceiling < CompleteProgress {
			c.progressCap = ceiling
		}
	}
}

// NewProgressCalculator creates a calculator. A nil registry selects phase.DefaultRegistry().
func NewProgressCalculator(registry *phase.Registry, opts ...ProgressOption) *ProgressCalculator {
	if registry == nil {
		registry = phase.DefaultRegistry()
	}
	c := &ProgressCalculator{
		registry:      registry,
		partialCredit: CurrentPhasePartialCredit,
		progressCap:   IncompleteProgressCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// indexOrStart resolves key to a lifecycle index, treating unknown keys as the start
func (c *ProgressCalculator) indexOrStart(key phase.Key) int {
	i, err := c.registry.IndexOf(key)
	if err != nil {
		return 0
	}
	return i
}

// ComputeBreakdown returns the progress of every phase when current is active
func (c *ProgressCalculator) ComputeBreakdown(current phase.Key) workflow.Breakdown {
	ci := c.indexOrStart(current)
	currentProgress := int(math.Round(c.partialCredit * 100))

	out := make(workflow.Breakdown, c.registry.Len())
	for j, p := range c.registry.Phases() {
		switch {
		case j < ci:
			out[p.Key] = workflow.PhaseProgress{Progress: 100, IsCompleted: true}
		case j == ci:
			out[p.Key] = workflow.PhaseProgress{Progress: currentProgress, IsCurrent: true}
		default:
			out[p.Key] = workflow.PhaseProgress{Progress: 0, IsPending: true}
		}
	}
	return out
}

// NotStartedBreakdown returns the table of a project with no recorded phase:
// the lifecycle start is current at 0% and everything else is pending.
func (c *ProgressCalculator) NotStartedBreakdown() workflow.Breakdown {
	start := c.registry.First().Key
	out := c.ComputeBreakdown(start)
	p := out[start]
	p.Progress = 0
	out[start] = p
	return out
}

// CompletedBreakdown returns the frozen table of a finished workflow
func (c *ProgressCalculator) CompletedBreakdown() workflow.Breakdown {
	out := make(workflow.Breakdown, c.registry.Len())
	for _, p := range c.registry.Phases() {
		out[p.Key] = workflow.PhaseProgress{Progress: 100, IsCompleted: true}
	}
	return out
}

// ComputeOverall returns the weighted completion percentage.
// Incomplete workflows never exceed the cap; complete ones are always 100.
func (c *ProgressCalculator) ComputeOverall(current phase.Key, workflowComplete bool) int {
	if workflowComplete {
		return CompleteProgress
	}

	ci := c.indexOrStart(current)
	done := 0.0
	for j, p := range c.registry.Phases() {
		if j < ci {
			done += float64(p.Weight)
		} else if j == ci {
			done += c.partialCredit * float64(p.Weight)
			break
		}
	}

	overall := int(math.Round(done * 100 / float64(phase.TotalWeight)))
	if overall > c.progressCap {
		overall = c.progressCap
	}
	if overall < 0 {
		overall = 0
	}
	return overall
}
