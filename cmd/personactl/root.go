package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"persona-service/internal/app"
	"persona-service/internal/config"
)

type globalFlags struct {
	configPath string
	filesDir   string
	sample     bool
	logLevel   string
}

// newRootCmd builds a fresh command tree so tests do not share flag state.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var a *app.App

	root := &cobra.Command{
		Use:           "personactl",
		Short:         "Offline scammer persona profiling",
		Long:          `Runs the persona pipeline over the configured data sources and prints JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath)
			if err != nil {
				return err
			}
			if flags.filesDir != "" {
				cfg.Data.BackendFilesDir = flags.filesDir
			}
			if flags.sample {
				cfg.Data.UseSampleData = true
			}
			if flags.logLevel != "" {
				cfg.Logging.Level = flags.logLevel
			}

			a, err = app.New(cfg, app.NewLogger(cfg))
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
				_ = a.Logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "configs/config.yml", "config file")
	root.PersistentFlags().StringVar(&flags.filesDir, "files-dir", "", "override data.backend_files_dir")
	root.PersistentFlags().BoolVar(&flags.sample, "sample", false, "skip the upstream API and use bundled sample data")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level")

	current := func() *app.App { return a }
	root.AddCommand(
		newPersonasCmd(current),
		newPersonaCmd(current),
		newConversationsCmd(current),
		newAnalyzeCmd(current),
		newClassifyCmd(current),
		newDashboardCmd(current),
		newAskCmd(current),
		newNormalizeCmd(),
	)
	return root
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
