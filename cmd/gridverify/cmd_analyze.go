package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/gridverify/chart"
	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/internal/logging"
	"github.com/arloliu/gridverify/report"
	"github.com/arloliu/gridverify/snapshot"
	"github.com/arloliu/gridverify/study"
)

var analyzeFlags struct {
	example      string
	key          string
	style        string
	csvPath      string
	plotPath     string
	index        int
	snapshotPath string
	compression  string
	encoding     string
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [study-file]",
	Short: "Run the analysis described by a study file",
	Long: `Analyze loads a YAML or JSON study file, fits the selected discretization
model and prints a summary table for every response quantity.

Usage:
  gridverify analyze cavity.yaml
  gridverify analyze --example cavity --key drag --plot drag.png
  gridverify analyze cavity.yaml --csv - --snapshot cavity.gvs --compression lz4 --encoding gorilla`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&analyzeFlags.example, "example", "", "Run a bundled example study instead of a file (see 'gridverify models')")
	f.StringVar(&analyzeFlags.key, "key", "", "Response quantity to summarize and plot (default: all for summaries, first for plots)")
	f.StringVar(&analyzeFlags.style, "style", "ascii", "Summary table style: ascii or markdown")
	f.StringVar(&analyzeFlags.csvPath, "csv", "", "Write the result table as CSV to this path ('-' for stdout)")
	f.StringVar(&analyzeFlags.plotPath, "plot", "", "Render a convergence plot; format follows the extension (png, svg, pdf)")
	f.IntVar(&analyzeFlags.index, "index", 0, "Discretization level whose error and uncertainty bands are plotted")
	f.StringVar(&analyzeFlags.snapshotPath, "snapshot", "", "Archive the report as a binary snapshot at this path")
	f.StringVar(&analyzeFlags.compression, "compression", "zstd", "Snapshot compression: none, zstd, s2, lz4")
	f.StringVar(&analyzeFlags.encoding, "encoding", "raw", "Snapshot float column encoding: raw or gorilla")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logging.New("analyze")

	s, err := loadStudy(args)
	if err != nil {
		return err
	}
	style, err := report.ParseStyle(analyzeFlags.style)
	if err != nil {
		return err
	}
	compression, err := format.ParseCompression(analyzeFlags.compression)
	if err != nil {
		return err
	}
	encoding, err := format.ParseEncoding(analyzeFlags.encoding)
	if err != nil {
		return err
	}

	a, err := s.Analyze(discretization.WithLogger(logging.New("discretization")))
	if err != nil {
		return err
	}
	log.Info("analysis solved", "study", s.Name, "preset", a.Preset(), "levels", a.Len(), "responses", len(a.Keys()))

	rep, err := report.New(s.Name, a)
	if err != nil {
		return err
	}
	for _, resp := range rep.Responses {
		if resp.UncertaintyFailure != "" {
			log.Warn("uncertainty unavailable", "key", resp.Key, "reason", resp.UncertaintyFailure)
		}
	}

	out := cmd.OutOrStdout()
	if analyzeFlags.csvPath != "-" {
		if err := summarize(out, rep, analyzeFlags.key, style); err != nil {
			return err
		}
	}

	if analyzeFlags.csvPath != "" {
		if err := writeFile(analyzeFlags.csvPath, out, func(w io.Writer) error {
			return report.WriteCSV(w, rep)
		}); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}

	if analyzeFlags.plotPath != "" {
		err := chart.Save(analyzeFlags.plotPath, a, analyzeFlags.key, analyzeFlags.index,
			chart.WithTitle(s.Name), chart.WithLabels(a.SizeKey(), analyzeFlags.key))
		if err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		log.Info("plot written", "path", analyzeFlags.plotPath)
	}

	if analyzeFlags.snapshotPath != "" {
		if err := writeFile(analyzeFlags.snapshotPath, out, func(w io.Writer) error {
			return snapshot.Write(w, rep, snapshot.WithCompression(compression), snapshot.WithEncoding(encoding))
		}); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		log.Info("snapshot written", "path", analyzeFlags.snapshotPath, "compression", compression, "encoding", encoding)
	}

	return nil
}

func loadStudy(args []string) (*study.Study, error) {
	switch {
	case analyzeFlags.example != "" && len(args) > 0:
		return nil, errors.New("pass either a study file or --example, not both")
	case analyzeFlags.example != "":
		return study.LoadExample(analyzeFlags.example)
	case len(args) == 1:
		return study.LoadFile(args[0])
	default:
		return nil, errors.New("a study file or --example is required\n\nUsage: gridverify analyze <study.yaml>")
	}
}

// summarize prints the summary of key, or of every response when key is empty.
func summarize(w io.Writer, rep *report.Report, key string, style report.Style) error {
	keys := rep.Keys()
	if key != "" {
		keys = []string{key}
	}

	fmt.Fprintf(w, "Study: %s (%s)\n\n", rep.Name, rep.Preset)
	for i, k := range keys {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if err := report.Summarize(w, rep, k, style); err != nil {
			return err
		}
	}

	return nil
}

// writeFile runs write against path, or against stdout when path is "-".
func writeFile(path string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if path == "-" {
		return write(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return write(f)
}
