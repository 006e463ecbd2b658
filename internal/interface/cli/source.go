package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/domain/model/workflow"
	"github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/di"
)

// sourceFlags selects where markers are read from
type sourceFlags struct {
	file string
	db   string
}

func (f *sourceFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "Marker file (YAML, or JSON when ending in .json)")
	cmd.Flags().StringVar(&f.db, "db", "", "SQLite project database (default: db_path setting)")
}

func openContainer(f sourceFlags) (*di.Container, error) {
	container, err := di.NewContainer(di.Config{
		App:        globalConfig,
		MarkerFile: f.file,
		DBPath:     f.db,
		Logger:     app.GetLogger(),
	})
	if err != nil {
		return nil, err
	}
	return container, nil
}

// latestMarkers keeps the last revision of every project, in order of first appearance
func latestMarkers(markers []*workflow.Marker) []*workflow.Marker {
	index := make(map[string]int, len(markers))
	var out []*workflow.Marker
	for _, m := range markers {
		if i, ok := index[m.ProjectID]; ok {
			out[i] = m
			continue
		}
		index[m.ProjectID] = len(out)
		out = append(out, m)
	}
	return out
}

func printMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s %g\n", mf.GetName(), m.GetCounter().GetValue())
		}
	}
	return nil
}
