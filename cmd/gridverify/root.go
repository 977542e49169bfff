package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/gridverify/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "gridverify",
	Short: "Discretization error and uncertainty for grid convergence studies",
	Long: `gridverify fits discretization models to responses computed on a series
of refined grids and reports the extrapolated value, observed order of
convergence, numerical error and uncertainty of every level.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	PersistentPreRunE: initLogging,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	f.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.Version = version
}

func initLogging(cmd *cobra.Command, _ []string) error {
	level, err := logging.ParseLevel(rootFlags.logLevel)
	if err != nil {
		return err
	}
	switch rootFlags.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", rootFlags.logFormat)
	}
	logging.Init(level, rootFlags.logFormat, cmd.ErrOrStderr())

	return nil
}
