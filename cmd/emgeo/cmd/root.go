package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "emgeo",
	Short: "emgeo - EDA layout ingestion for electromagnetic solvers",
	Long: `emgeo normalizes schematic, solver-project and PCB layout files into
one canonical geometric model (conductors, ports, substrate, bounds).

Supported formats:
  - Qucs-style schematics (.sch)
  - Sonnet-style method-of-moments projects (.son)
  - KiCad boards (.kicad_pcb)

Examples:
  emgeo detect filter.sch        # Classify a layout file
  emgeo info board.kicad_pcb     # Show extracted geometry summary
  emgeo ports coupler.son        # List excitation ports`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var config zap.Config
		if verbose {
			config = zap.NewDevelopmentConfig()
		} else {
			config = zap.NewProductionConfig()
			config.Encoding = "console"
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
