package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Jayden-Richmond/Radius-Finance/internal/config"
	"github.com/Jayden-Richmond/Radius-Finance/internal/logging"
)

var (
	verbose    bool
	configPath string
	dataDir    string

	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "radius",
	Short: "Radius Finance is a demo client-side banking dashboard",
	Long: `Radius Finance serves a demo banking dashboard over synthetic CSV
datasets: weekly spending aggregated per entity, cohort averages for the
entity's state, and an income-adjusted regional reference line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// version works without a config or data directory
		if cmd.Name() == "version" {
			return nil
		}

		if dataDir != "" {
			os.Setenv("RADIUS_DATA_DIR", dataDir)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		logger = logging.Init(verbose || cfg.Debug, cfg.LogDirectory)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a JSON config file")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "data directory for datasets, database and logs (same as RADIUS_DATA_DIR)")
}
