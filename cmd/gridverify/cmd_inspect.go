package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/arloliu/gridverify/report"
	"github.com/arloliu/gridverify/snapshot"
)

var inspectFlags struct {
	key   string
	style string
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot-file>",
	Short: "Describe a snapshot written by 'analyze --snapshot'",
	Long: `Inspect verifies a snapshot checksum, prints its header and the summary of
the archived responses.

Usage:
  gridverify inspect cavity.gvs
  gridverify inspect cavity.gvs --key drag --style markdown`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	f := inspectCmd.Flags()
	f.StringVar(&inspectFlags.key, "key", "", "Only summarize this response quantity")
	f.StringVar(&inspectFlags.style, "style", "ascii", "Summary table style: ascii or markdown")
}

func runInspect(cmd *cobra.Command, args []string) error {
	style, err := report.ParseStyle(inspectFlags.style)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	rd, err := snapshot.NewReader(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	h := rd.Header()
	stats := rd.Stats()
	byteOrder := "little-endian"
	if h.IsBigEndian() {
		byteOrder = "big-endian"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendRows([]table.Row{
		{"Study", rd.Name()},
		{"Version", h.Version},
		{"Byte order", byteOrder},
		{"Compression", h.Compression},
		{"Encoding", h.Encoding},
		{"Payload", fmt.Sprintf("%d bytes (raw %d, %.1f%% saved)", h.PayloadSize, h.RawSize, stats.SpaceSavings())},
		{"Checksum", fmt.Sprintf("0x%016x", h.Checksum)},
		{"Levels", h.LevelCount},
		{"Responses", fmt.Sprintf("%v", rd.Keys())},
	})

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, tw.Render())
	fmt.Fprintln(out)

	if inspectFlags.key != "" {
		// Resolve through the key index first so unknown keys fail fast.
		if _, err := rd.Response(inspectFlags.key); err != nil {
			return err
		}
	}
	rep, err := rd.Report()
	if err != nil {
		return err
	}

	return summarize(out, rep, inspectFlags.key, style)
}
