package workflow

import (
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
)

// PhaseProgress is the completion status of one phase
type PhaseProgress struct {
	Progress    int
	IsCompleted bool
	IsCurrent   bool
	IsPending   bool
}

// Breakdown maps every registered phase to its progress
type Breakdown map[phase.Key]PhaseProgress

// Clone returns an independent copy
func (b Breakdown) Clone() Breakdown {
	out := make(Breakdown, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// State is the derived, immutable workflow snapshot of a project revision
type State struct {
	projectID              string
	currentPhase           phase.Key
	currentPhaseDisplay    string
	currentSection         string
	currentSectionDisplay  string
	currentLineItem        string
	currentLineItemDisplay string
	overallProgress        int
	breakdown              Breakdown
	workflowComplete       bool
	cacheKey               string
}

// StateParams carries the values used to build a State
type StateParams struct {
	ProjectID              string
	CurrentPhase           phase.Key
	CurrentPhaseDisplay    string
	CurrentSection         string
	CurrentSectionDisplay  string
	CurrentLineItem        string
	CurrentLineItemDisplay string
	OverallProgress        int
	Breakdown              Breakdown
	WorkflowComplete       bool
	CacheKey               string
}

// NewState builds a snapshot. The breakdown is copied.
func NewState(p StateParams) *State {
	return &State{
		projectID:              p.ProjectID,
		currentPhase:           p.CurrentPhase,
		currentPhaseDisplay:    p.CurrentPhaseDisplay,
		currentSection:         p.CurrentSection,
		currentSectionDisplay:  p.CurrentSectionDisplay,
		currentLineItem:        p.CurrentLineItem,
		currentLineItemDisplay: p.CurrentLineItemDisplay,
		overallProgress:        p.OverallProgress,
		breakdown:              p.Breakdown.Clone(),
		workflowComplete:       p.WorkflowComplete,
		cacheKey:               p.CacheKey,
	}
}

func (s *State) ProjectID() string              { return s.projectID }
func (s *State) CurrentPhase() phase.Key        { return s.currentPhase }
func (s *State) CurrentPhaseDisplay() string    { return s.currentPhaseDisplay }
func (s *State) CurrentSection() string         { return s.currentSection }
func (s *State) CurrentSectionDisplay() string  { return s.currentSectionDisplay }
func (s *State) CurrentLineItem() string        { return s.currentLineItem }
func (s *State) CurrentLineItemDisplay() string { return s.currentLineItemDisplay }
func (s *State) OverallProgress() int           { return s.overallProgress }
func (s *State) WorkflowComplete() bool         { return s.workflowComplete }
func (s *State) CacheKey() string               { return s.cacheKey }

// PhaseBreakdown returns a copy of the per-phase progress table
func (s *State) PhaseBreakdown() Breakdown {
	return s.breakdown.Clone()
}

// PhaseProgress returns the progress of a single phase
func (s *State) PhaseProgress(key phase.Key) (PhaseProgress, bool) {
	p, ok := s.breakdown[key]
	return p, ok
}
