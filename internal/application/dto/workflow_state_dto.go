package dto

import (
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

// PhaseOutput describes one registry entry
type PhaseOutput struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Weight      int    `json:"weight"`
	Color       string `json:"color"`
}

// PhaseProgressOutput is one row of a state's phase breakdown
type PhaseProgressOutput struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Color       string `json:"color"`
	Progress    int    `json:"progress"`
	IsCompleted bool   `json:"is_completed"`
	IsCurrent   bool   `json:"is_current"`
	IsPending   bool   `json:"is_pending"`
}

// WorkflowStateOutput is the rendering-friendly form of a workflow.State
type WorkflowStateOutput struct {
	ProjectID              string                `json:"project_id"`
	CurrentPhase           string                `json:"current_phase"`
	CurrentPhaseDisplay    string                `json:"current_phase_display"`
	CurrentSection         string                `json:"current_section,omitempty"`
	CurrentSectionDisplay  string                `json:"current_section_display"`
	CurrentLineItem        string                `json:"current_line_item,omitempty"`
	CurrentLineItemDisplay string                `json:"current_line_item_display"`
	OverallProgress        int                   `json:"overall_progress"`
	WorkflowComplete       bool                  `json:"workflow_complete"`
	PhaseBreakdown         []PhaseProgressOutput `json:"phase_breakdown"`
	CacheKey               string                `json:"cache_key,omitempty"`
}

// ToPhaseOutputs lists the registry in lifecycle order
func ToPhaseOutputs(registry *phase.Registry) []PhaseOutput {
	phases := registry.Phases()
	out := make([]PhaseOutput, 0, len(phases))
	for _, p := range phases {
		out = append(out, PhaseOutput{
			Key:         string(p.Key),
			DisplayName: p.DisplayName,
			Weight:      p.Weight,
			Color:       p.Color,
		})
	}
	return out
}

// ToWorkflowStateOutput converts a state, ordering its breakdown by registry
func ToWorkflowStateOutput(state *workflow.State, registry *phase.Registry) WorkflowStateOutput {
	breakdown := make([]PhaseProgressOutput, 0, registry.Len())
	for _, p := range registry.Phases() {
		progress, ok := state.PhaseProgress(p.Key)
		if !ok {
			continue
		}
		breakdown = append(breakdown, PhaseProgressOutput{
			Key:         string(p.Key),
			DisplayName: p.DisplayName,
			Color:       p.Color,
			Progress:    progress.Progress,
			IsCompleted: progress.IsCompleted,
			IsCurrent:   progress.IsCurrent,
			IsPending:   progress.IsPending,
		})
	}

	return WorkflowStateOutput{
		ProjectID:              state.ProjectID(),
		CurrentPhase:           string(state.CurrentPhase()),
		CurrentPhaseDisplay:    state.CurrentPhaseDisplay(),
		CurrentSection:         state.CurrentSection(),
		CurrentSectionDisplay:  state.CurrentSectionDisplay(),
		CurrentLineItem:        state.CurrentLineItem(),
		CurrentLineItemDisplay: state.CurrentLineItemDisplay(),
		OverallProgress:        state.OverallProgress(),
		WorkflowComplete:       state.WorkflowComplete(),
		PhaseBreakdown:         breakdown,
		CacheKey:               state.CacheKey(),
	}
}
