// Package main provides the fastnet CLI.
//
// Usage:
//
//	fastnet train --config net.yaml --input in.csv --target out.csv --out model.fnet
//	fastnet train --config net.yaml --class signal.csv --class noise.csv --out model.fnet
//	fastnet sim --model model.fnet --input in.csv
//	fastnet info --model model.fnet
//	fastnet export --model model.fnet --out model.safetensors
//	fastnet import --config net.yaml --weights model.safetensors --out model.fnet
//	fastnet version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/fastnet/internal/report"
	"github.com/born-ml/fastnet/internal/serialization"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:          "fastnet",
		Short:        "Train and run feedforward neural networks",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")

	root.AddCommand(
		newTrainCmd(&g),
		newSimCmd(),
		newInfoCmd(),
		newExportCmd(),
		newImportCmd(),
		newVersionCmd(),
	)
	return root
}

// reporter logs to w at info level, or debug with --verbose.
func (g *globalFlags) reporter(w io.Writer) *report.Logger {
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return report.New(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fastnet %s (file format %d)\n",
				serialization.FastnetVersion, serialization.FormatVersion)
		},
	}
}
