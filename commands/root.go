package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/penwyp/go-kadlog/internal/analyzer"
	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/util"
	"github.com/spf13/cobra"
)

var (
	// Logging related
	debug     bool
	logFile   string
	logFormat string

	// Input/output
	input        string
	outputFormat string
	outputPath   string
	labelLength  int

	// Plotting
	gnuplotScript   string
	gnuplotTerminal string
	gnuplotImage    string

	watch bool

	rootCmd = &cobra.Command{
		Use:   "go-kadlog [flags]",
		Short: "DHT lookup log to plot data converter",
		Long: `go-kadlog reads the event log of a Kademlia DHT lookup and reconstructs,
for every peer contacted, when it was dialed and queried, whether the dial
failed, and whether it ended up among the K closest peers. The result is a
tab-separated dataset ready for gnuplot.

The whole log is read before anything is written.

Examples:
  go-kadlog < lookup.log                                  # TSV dataset on stdout
  go-kadlog -i lookup.log -o table                        # Human-readable table
  go-kadlog -i lookup.log --out lookup.tsv --gnuplot lookup.gp
  go-kadlog -i lookup.log --out lookup.tsv --watch        # Rebuild on every change
  go-kadlog shrink < lookup.log                           # Shorten peer IDs in a log`,
		SilenceUsage: true,
		RunE:         runAnalyze,
	}
)

const (
	defaultLogFile = "~/.go-kadlog/logs/app.log"
)

func init() {
	// Input
	rootCmd.Flags().StringVarP(&input, "input", "i", analyzer.StdinPath,
		"Lookup log file (- for standard input)")

	// Output configuration
	rootCmd.Flags().StringVarP(&outputFormat, "output", "o", "tsv",
		"Output format (tsv, json, table, csv)")
	rootCmd.Flags().StringVar(&outputFormat, "format", "",
		"Alias for --output")
	rootCmd.Flags().StringVar(&outputPath, "out", "",
		"Write the report to this file instead of standard output")

	// Plotting
	rootCmd.Flags().StringVar(&gnuplotScript, "gnuplot", "",
		"Also write a gnuplot script for the dataset (requires --out)")
	rootCmd.Flags().StringVar(&gnuplotTerminal, "gnuplot-terminal", "",
		"gnuplot terminal (default \"svg size 1200,800\")")
	rootCmd.Flags().StringVar(&gnuplotImage, "gnuplot-image", "",
		"Image written by the gnuplot script (default: dataset name with .svg)")

	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false,
		"Re-run whenever the input file changes")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", defaultLogFile,
		"Log file path")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", string(util.FormatText),
		"Log entry format (text, json)")

	// Shared with shrink
	rootCmd.PersistentFlags().IntVar(&labelLength, "label-len", peerid.DefaultLabelLength,
		"Number of hex characters in peer labels")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	// Handle format alias
	if format := cmd.Flags().Lookup("format"); format != nil && format.Changed {
		outputFormat = format.Value.String()
	}

	config := &analyzer.Config{
		Input:           input,
		OutputFormat:    outputFormat,
		LabelLength:     labelLength,
		GnuplotScript:   gnuplotScript,
		GnuplotTerminal: gnuplotTerminal,
		GnuplotImage:    gnuplotImage,
		Watch:           watch,
	}
	if input != analyzer.StdinPath {
		config.Input = expandPath(input)
	}
	if outputPath != "" {
		config.OutputPath = expandPath(outputPath)
	}

	a, err := analyzer.New(config)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

// initLogging sets up the global logger; --debug also logs to stderr.
// An unusable log file only moves logging to stderr.
func initLogging() error {
	format, err := util.ParseLogFormat(logFormat)
	if err != nil {
		return err
	}

	logLevel := "info"
	if debug {
		logLevel = "debug"
	}

	path := expandPath(logFile)
	// a missing directory surfaces when the file is opened
	_ = ensureDir(filepath.Dir(path))

	err = util.InitLogger(util.LoggerConfig{
		Level:   logLevel,
		File:    path,
		Format:  format,
		Console: debug,
	})
	if err != nil {
		util.LogWarn(fmt.Sprintf("Logging to stderr only: %v", err))
	}
	return nil
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
