package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/infrastructure/watcher"
)

func newWatchCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a marker file and announce projects whose version changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd.OutOrStdout(), file)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Marker file to watch")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWatch(ctx context.Context, w io.Writer, file string) error {
	path, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", file, err)
	}

	container, err := openContainer(sourceFlags{file: path})
	if err != nil {
		return err
	}
	defer container.Close()

	notifier := container.GetNotifier()
	sub := notifier.Subscribe(notificationPrinter(w))
	defer sub.Unsubscribe()

	GetLogger().Info("watching %s", path)
	mw := watcher.NewMarkerWatcher(path, container.GetMarkerFile(), notifier, app.GetLogger())
	return mw.Run(ctx)
}
