package analyzer

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/penwyp/go-kadlog/internal/core/peerid"
	"github.com/penwyp/go-kadlog/internal/core/timeline"
	"github.com/penwyp/go-kadlog/internal/data/parser"
	"github.com/penwyp/go-kadlog/internal/data/watcher"
	"github.com/penwyp/go-kadlog/internal/presentation/formatter"
	"github.com/penwyp/go-kadlog/internal/presentation/plot"
	"github.com/penwyp/go-kadlog/internal/util"
)

// StdinPath selects standard input as the log source.
const StdinPath = "-"

type Config struct {
	Input        string // log file, or StdinPath
	OutputFormat string // tsv, json, table, csv
	OutputPath   string // report file; empty writes to stdout
	LabelLength  int
	// gnuplot script configuration
	GnuplotScript   string
	GnuplotTerminal string
	GnuplotImage    string
	// Re-run the whole batch whenever Input changes
	Watch bool
}

// Analyzer runs the two-phase batch: read the whole log, then emit the report.
type Analyzer struct {
	config    *Config
	parser    *parser.Parser
	formatter formatter.Formatter
}

func New(config *Config) (*Analyzer, error) {
	if config.Input == "" {
		config.Input = StdinPath
	}
	if config.LabelLength <= 0 {
		config.LabelLength = peerid.DefaultLabelLength
	}
	if config.Watch && config.Input == StdinPath {
		return nil, fmt.Errorf("--watch needs a log file, not standard input")
	}
	if config.GnuplotScript != "" && config.OutputPath == "" {
		return nil, fmt.Errorf("--gnuplot needs the dataset written to a file (--out)")
	}
	if config.GnuplotScript != "" && config.OutputFormat != "" && config.OutputFormat != "tsv" {
		return nil, fmt.Errorf("--gnuplot needs the tsv output format, got %s", config.OutputFormat)
	}

	f, err := formatter.New(config.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		config:    config,
		parser:    parser.NewParser(),
		formatter: f,
	}, nil
}

// Run processes the input once, then, in watch mode, again after every
// change to the input file until ctx is done.
func (a *Analyzer) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if !a.config.Watch {
		return a.runOnce(stdin, stdout)
	}

	// watch before the first run so no change in between is missed
	fw, err := watcher.NewFileWatcher(a.config.Input)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", a.config.Input, err)
	}
	defer fw.Close()

	if err := a.runOnce(stdin, stdout); err != nil {
		return err
	}

	util.LogInfo("Watching " + a.config.Input + " for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events():
			if !ok {
				return nil
			}
			util.LogDebugf("Input changed (%s), re-running", ev.Operation)
			if err := a.runOnce(stdin, stdout); err != nil {
				// the file may be mid-write; keep watching
				util.LogWarnf("Re-run failed: %v", err)
			}
		}
	}
}

func (a *Analyzer) runOnce(stdin io.Reader, stdout io.Writer) error {
	startTime := time.Now()

	// Phase 1: consume the whole log
	tl, err := a.parse(stdin)
	if err != nil {
		return err
	}
	util.LogDebug(fmt.Sprintf("Phase 1 - Parse duration: %v, %s", time.Since(startTime), tl.Summary()))

	if len(tl.Unmatched()) > 0 {
		util.LogInfof("%d lines did not match any event", len(tl.Unmatched()))
	}

	// Phase 2: emit
	report := formatter.NewReport(tl, a.config.LabelLength)
	if err := a.emit(report, stdout); err != nil {
		return err
	}

	if a.config.GnuplotScript != "" {
		params := plot.Params{
			DataPath:   a.config.OutputPath,
			OutputPath: a.config.GnuplotImage,
			Terminal:   a.config.GnuplotTerminal,
			NumPeers:   report.NumPeers,
		}
		if err := plot.WriteFile(a.config.GnuplotScript, params); err != nil {
			return err
		}
		util.LogDebug(fmt.Sprintf("Wrote gnuplot script %s", a.config.GnuplotScript))
	}

	util.WithFields(
		util.Field{Key: "input", Value: a.config.Input},
		util.Field{Key: "format", Value: a.config.OutputFormat},
		util.Field{Key: "peers", Value: report.NumPeers},
		util.Field{Key: "edges", Value: len(report.Causality)},
		util.Field{Key: "ignored", Value: len(report.Ignored)},
		util.Field{Key: "duration", Value: time.Since(startTime).String()},
	).Info("Report written")
	return nil
}

func (a *Analyzer) parse(stdin io.Reader) (*timeline.Timeline, error) {
	if a.config.Input == StdinPath {
		return a.parser.Parse(stdin)
	}
	tl, err := a.parser.ParseFile(a.config.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", a.config.Input, err)
	}
	return tl, nil
}

func (a *Analyzer) emit(report *formatter.Report, stdout io.Writer) error {
	if a.config.OutputPath == "" {
		return a.formatter.Format(stdout, report)
	}

	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := a.formatter.Format(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
