package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
)

func newReplayCmd() *cobra.Command {
	var (
		source      sourceFlags
		showMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Announce every marker in order and print the resulting notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), cmd.OutOrStdout(), source, showMetrics)
		},
	}

	source.bind(cmd)
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "Print cache counters after the replay")

	return cmd
}

func runReplay(ctx context.Context, w io.Writer, source sourceFlags, showMetrics bool) error {
	container, err := openContainer(source)
	if err != nil {
		return err
	}
	defer container.Close()

	markerSource, err := container.GetMarkerSource()
	if err != nil {
		return fmt.Errorf("%w: pass --file or --db", err)
	}
	markers, err := markerSource.ListMarkers(ctx)
	if err != nil {
		return err
	}

	notifier := container.GetNotifier()
	sub := notifier.Subscribe(notificationPrinter(w))
	defer sub.Unsubscribe()

	for _, m := range markers {
		if err := ctx.Err(); err != nil {
			return err
		}
		notifier.AnnounceChange(m.ProjectID, m)
	}

	if showMetrics {
		return printMetrics(w, container.GetMetricsRegistry())
	}
	return nil
}

// notificationPrinter renders one line per change notification
func notificationPrinter(w io.Writer) func(string, *workflow.State) {
	return func(projectID string, state *workflow.State) {
		fmt.Fprintf(w, "%s: %s %d%% [%s / %s] (%s)\n",
			projectID,
			state.CurrentPhaseDisplay(),
			state.OverallProgress(),
			state.CurrentSectionDisplay(),
			state.CurrentLineItemDisplay(),
			state.CacheKey(),
		)
	}
}
