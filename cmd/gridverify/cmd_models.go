package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/format"
	"github.com/arloliu/gridverify/study"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List presets, model names, snapshot options and bundled example studies",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Presets:")
	for _, p := range []discretization.Preset{
		discretization.PresetClassic,
		discretization.PresetAverage,
		discretization.PresetCustom,
	} {
		fmt.Fprintf(out, "  %s\n", p)
	}

	fmt.Fprintln(out, "Discretization models (model):")
	for _, k := range discretization.ModelKinds() {
		fmt.Fprintf(out, "  %s\n", k)
	}
	fmt.Fprintln(out, "Error models (error):")
	for _, k := range discretization.ErrorKinds() {
		fmt.Fprintf(out, "  %s\n", k)
	}
	fmt.Fprintln(out, "Uncertainty models (uncertainty):")
	for _, k := range discretization.UncertaintyKinds() {
		fmt.Fprintf(out, "  %s\n", k)
	}

	fmt.Fprintln(out, "Snapshot compressions (analyze --compression):")
	for _, c := range []format.CompressionType{format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		fmt.Fprintf(out, "  %s\n", strings.ToLower(c.String()))
	}
	fmt.Fprintln(out, "Snapshot encodings (analyze --encoding):")
	for _, e := range []format.EncodingType{format.TypeRaw, format.TypeGorilla} {
		fmt.Fprintf(out, "  %s\n", strings.ToLower(e.String()))
	}

	fmt.Fprintln(out, "Example studies (analyze --example):")
	for _, name := range study.ListExamples() {
		fmt.Fprintf(out, "  %s\n", name)
	}

	return nil
}
