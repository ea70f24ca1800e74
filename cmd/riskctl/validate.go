package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/flood-risk-map/internal/config"
	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	notes  []string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var (
		path          string
		maxOutOfRange float64
		covers        []float64
	)
	cmd := &cobra.Command{
		Use:   "validate --raster <path>",
		Short: "Check an elevation raster before deploying it",
		Long: "Validate loads an ESRI ASCII grid and checks its geometry, no-data coverage\n" +
			"and how its samples fall into the risk bands. It exits non-zero when a\n" +
			"phase fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := raster.FileSource(path).Load(cmd.Context())
			if err != nil {
				return err
			}

			phases := []*phase{
				checkGeometry(g, covers),
				checkCoverage(g),
				checkBands(g, maxOutOfRange),
			}

			failed := 0
			for _, p := range phases {
				status := "PASS"
				if !p.passed() {
					status = "FAIL"
					failed++
				}
				printf(cmd, "[%s] %s\n", status, p.name)
				for _, n := range p.notes {
					printf(cmd, "  %s\n", n)
				}
				for _, e := range p.errors {
					printf(cmd, "  error: %s\n", e)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d phases failed", failed, len(phases))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "raster", config.DefaultRasterSource, "ESRI ASCII grid to validate")
	cmd.Flags().Float64Var(&maxOutOfRange, "max-out-of-range", 0.05, "largest tolerated fraction of data cells outside every risk band")
	cmd.Flags().Float64SliceVar(&covers, "covers", nil, "lat,lng that must fall inside the raster")
	return cmd
}

func checkGeometry(g *raster.Georaster, covers []float64) *phase {
	p := &phase{name: "geometry"}
	b := g.Bounds()
	p.notef("%dx%d cells, bounds south=%g west=%g north=%g east=%g", g.Width, g.Height, b.South, b.West, b.North, b.East)

	if b.South < -90 || b.North > 90 || b.West < -180 || b.East > 180 {
		p.errorf("bounds exceed world extent")
	}
	if len(covers) > 0 {
		if len(covers) != 2 {
			p.errorf("--covers needs exactly lat,lng")
		} else if _, ok := g.Sample(covers[0], covers[1]); !ok {
			p.errorf("point %g,%g is outside the raster", covers[0], covers[1])
		}
	}
	return p
}

func checkCoverage(g *raster.Georaster) *phase {
	p := &phase{name: "coverage"}
	total := g.Width * g.Height
	nodata, nonFinite := 0, 0
	for _, row := range g.Values {
		for _, v := range row {
			switch {
			case g.IsNoData(v):
				nodata++
			case math.IsNaN(v) || math.IsInf(v, 0):
				nonFinite++
			}
		}
	}
	p.notef("%d of %d cells are no-data", nodata, total)
	if nodata == total {
		p.errorf("raster has no data cells")
	}
	if nonFinite > 0 {
		p.errorf("%d cells are not finite", nonFinite)
	}
	return p
}

func checkBands(g *raster.Georaster, maxOutOfRange float64) *phase {
	p := &phase{name: "bands"}
	counts, data := bandCounts(g)
	if data == 0 {
		p.errorf("no data cells to classify")
		return p
	}
	for _, c := range append(domain.Legend(), domain.OutOfRange) {
		if n := counts[c.Key]; n > 0 {
			p.notef("%-24s %7d  %5.1f%%", c.Label, n, 100*float64(n)/float64(data))
		}
	}
	if frac := float64(counts[domain.OutOfRange.Key]) / float64(data); frac > maxOutOfRange {
		p.errorf("%.1f%% of cells fall outside every band (limit %.1f%%)", 100*frac, 100*maxOutOfRange)
	}
	return p
}

func bandCounts(g *raster.Georaster) (map[string]int, int) {
	counts := map[string]int{}
	data := 0
	for _, row := range g.Values {
		for _, v := range row {
			if g.IsNoData(v) {
				continue
			}
			counts[domain.Classify(v).Key]++
			data++
		}
	}
	return counts, data
}
