package cli

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/phasetrack/internal/app"
	"github.com/YoshitsuguKoike/phasetrack/internal/app/config"
	"github.com/YoshitsuguKoike/phasetrack/internal/buildinfo"
	infraConfig "github.com/YoshitsuguKoike/phasetrack/internal/infra/config"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig config.Config = config.Defaults()

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "phasetrack",
		Short:        "Workflow progress and phase tracking",
		SilenceUsage: true,
		Version:      buildinfo.GetVersion(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Priority: ENV > setting.json > defaults
			cfg, err := infraConfig.LoadSettings(afero.NewOsFs(), app.HomeDir())
			if err != nil {
				InitGlobalLogger(config.DefaultStderrLevel)
				InitializeLoggers(GetLogger())
				GetLogger().Warn("failed to load settings, using defaults: %v", err)
				globalConfig = config.Defaults()
				return nil
			}

			globalConfig = cfg
			InitGlobalLogger(cfg.StderrLevel())
			InitializeLoggers(GetLogger())
			GetLogger().Debug("configuration loaded from %s", cfg.ConfigSource())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newPhasesCmd())
	cmd.AddCommand(newStateCmd())
	cmd.AddCommand(newReplayCmd())
	cmd.AddCommand(newWatchCmd())
	return cmd
}
