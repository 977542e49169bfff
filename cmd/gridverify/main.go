// gridverify estimates discretization error and uncertainty for grid
// convergence studies.
//
// Usage:
//
//	gridverify analyze study.yaml [--key drag] [--csv out.csv] [--plot drag.png] [--snapshot out.gvs]
//	gridverify analyze --example cavity
//	gridverify inspect out.gvs [--key drag]
//	gridverify models
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
