// Command riskctl is the operator CLI for the flood-risk map: it classifies
// elevations, parses search input, samples and validates elevation rasters,
// and generates synthetic rasters for local runs and tests.
//
// Usage:
//
//	riskctl classify 0.4 1.5 12
//	riskctl parse "3°23.4'E 6°31.5'N"
//	riskctl sample --raster data/lagos-dem.asc -- 6.45 3.39
//	riskctl validate --raster data/lagos-dem.asc
//	riskctl genmock --out data/lagos-dem.asc
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "riskctl",
		Short:        "Flood-risk map operator tools",
		SilenceUsage: true,
	}
	root.AddCommand(
		newClassifyCmd(),
		newParseCmd(),
		newLegendCmd(),
		newSampleCmd(),
		newValidateCmd(),
		newGenmockCmd(),
	)
	return root
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
