package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-map/internal/config"
	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "classify <elevation>...",
		Short:   "Classify elevations in metres into flood-risk categories",
		Example: "  riskctl classify 0 0.4 1.5 12\n  riskctl classify -- -2",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				v, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					return fmt.Errorf("invalid elevation %q", arg)
				}
				c := domain.Classify(v)
				printf(cmd, "%s\t%s\t%s\tfill=%s\n", arg, c.Key, domain.PopupLabel(v), describeFill(v))
			}
			return nil
		},
	}
}

func describeFill(v float64) string {
	fill, ok := domain.PixelFill(v)
	switch {
	case !ok:
		return "none"
	case fill == "":
		return "transparent"
	default:
		return fill
	}
}

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <text>",
		Short: "Parse search box text into a latitude/longitude pair",
		Long: "Parse accepts a decimal pair (\"6.5244, 3.3792\") or a degree/decimal-minute\n" +
			"pair with the longitude token first (\"3°23.4'E 6°31.5'N\"). Pairs that could\n" +
			"be lng,lat are swapped before validation.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			c, err := domain.ParseCoordinateInput(text)
			if errors.Is(err, domain.ErrNoMatch) {
				return fmt.Errorf("%q is not a coordinate", text)
			}
			if err != nil {
				return errors.New(domain.UserMessage(err))
			}
			printf(cmd, "%s\n", c)
			return nil
		},
	}
}

func newLegendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legend",
		Short: "Print the map legend",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, c := range domain.Legend() {
				printf(cmd, "%s\t%s\n", c.Color, c.Label)
			}
		},
	}
}

func newSampleCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:     "sample --raster <path> <lat> <lng>",
		Short:   "Look up elevation and risk category at a point",
		Example: "  riskctl sample --raster data/lagos-dem.asc -- 6.45 3.39",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[0])
			}
			lng, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[1])
			}

			g, err := raster.FileSource(path).Load(cmd.Context())
			if err != nil {
				return err
			}
			v, ok := g.Sample(lat, lng)
			if !ok {
				printf(cmd, "outside raster %+v\n", g.Bounds())
				return nil
			}
			printf(cmd, "Elevation: %.2f m\nCategory: %s\n", v, domain.PopupLabel(v))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "raster", config.DefaultRasterSource, "ESRI ASCII grid to sample")
	return cmd
}
