package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/application/dto"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/phase"
)

func newPhasesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "phases",
		Short: "List workflow phases in lifecycle order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPhases(cmd.OutOrStdout(), phase.DefaultRegistry(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output phases in JSON format")

	return cmd
}

func runPhases(w io.Writer, registry *phase.Registry, jsonOutput bool) error {
	phases := dto.ToPhaseOutputs(registry)

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(phases); err != nil {
			return fmt.Errorf("encode phases: %w", err)
		}
		return nil
	}

	for i, p := range phases {
		fmt.Fprintf(w, "%d. %-12s %-16s %3d%%  %s\n", i+1, p.Key, p.DisplayName, p.Weight, p.Color)
	}
	return nil
}
