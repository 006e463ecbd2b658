package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/application/dto"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/phasetrack/internal/util"
)

func newStateCmd() *cobra.Command {
	var (
		source     sourceFlags
		projectID  string
		jsonOutput bool
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show the derived workflow state of projects",
		Long:  `Read project markers from a file or the project database and print
each project's current phase, overall progress and phase breakdown.

Only the latest revision of each project is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outPath != "" {
				return runStateSnapshot(cmd.Context(), afero.NewOsFs(), outPath, source)
			}
			return runState(cmd.Context(), cmd.OutOrStdout(), source, projectID, jsonOutput)
		},
	}

	source.bind(cmd)
	cmd.Flags().StringVar(&projectID, "project", "", "Only show this project")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output state in JSON format")
	cmd.Flags().StringVar(&outPath, "out", "", "Atomically write every project's state as JSON to this file")

	return cmd
}

func runState(ctx context.Context, w io.Writer, source sourceFlags, projectID string, jsonOutput bool) error {
	outputs, err := collectStates(ctx, source, projectID)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		var v interface{} = outputs
		if projectID != "" {
			v = outputs[0]
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		return nil
	}

	if len(outputs) == 0 {
		fmt.Fprintln(w, "No projects found")
		return nil
	}
	for i, out := range outputs {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printState(w, out)
	}
	return nil
}

// runStateSnapshot writes all projects' states to path for dashboards polling the file
func runStateSnapshot(ctx context.Context, fs afero.Fs, path string, source sourceFlags) error {
	outputs, err := collectStates(ctx, source, "")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := util.WriteFileAtomic(fs, path, data, 0644); err != nil {
		return err
	}
	GetLogger().Info("wrote %d project state(s) to %s", len(outputs), path)
	return nil
}

// collectStates derives the state of one project, or of the latest revision of every project
func collectStates(ctx context.Context, source sourceFlags, projectID string) ([]dto.WorkflowStateOutput, error) {
	container, err := openContainer(source)
	if err != nil {
		return nil, err
	}
	defer container.Close()

	markerSource, err := container.GetMarkerSource()
	if err != nil {
		return nil, fmt.Errorf("%w: pass --file or --db", err)
	}

	var markers []*workflow.Marker
	if projectID != "" {
		m, err := markerSource.FindMarker(ctx, projectID)
		if err != nil {
			return nil, err
		}
		markers = []*workflow.Marker{m}
	} else {
		all, err := markerSource.ListMarkers(ctx)
		if err != nil {
			return nil, err
		}
		markers = latestMarkers(all)
	}

	states := container.GetStateService()
	outputs := make([]dto.WorkflowStateOutput, 0, len(markers))
	for _, m := range markers {
		outputs = append(outputs, dto.ToWorkflowStateOutput(states.GetState(m), states.Registry()))
	}
	return outputs, nil
}

func printState(w io.Writer, out dto.WorkflowStateOutput) {
	status := fmt.Sprintf("%d%%", out.OverallProgress)
	if out.WorkflowComplete {
		status += " (complete)"
	}
	fmt.Fprintf(w, "Project   : %s\n", out.ProjectID)
	fmt.Fprintf(w, "Phase     : %s\n", out.CurrentPhaseDisplay)
	fmt.Fprintf(w, "Progress  : %s\n", status)
	fmt.Fprintf(w, "Section   : %s\n", out.CurrentSectionDisplay)
	fmt.Fprintf(w, "Line item : %s\n", out.CurrentLineItemDisplay)

	parts := make([]string, 0, len(out.PhaseBreakdown))
	for _, p := range out.PhaseBreakdown {
		mark := " "
		switch {
		case p.IsCompleted:
			mark = "x"
		case p.IsCurrent:
			mark = ">"
		}
		parts = append(parts, fmt.Sprintf("[%s] %s %d%%", mark, p.DisplayName, p.Progress))
	}
	fmt.Fprintf(w, "Phases    : %s\n", strings.Join(parts, ", "))
}
