package raster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// maxGridCells caps ncols*nrows so a bad header cannot force a huge
// allocation before any sample is read.
const maxGridCells = 1 << 25

// ParseASCIIGrid reads an ESRI ASCII grid: a six-line header (ncols, nrows,
// xllcorner|xllcenter, yllcorner|yllcenter, cellsize, optional NODATA_value)
// followed by nrows rows of samples, north first.
func ParseASCIIGrid(r io.Reader) (*Georaster, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var pending string
	for sc.Scan() {
		tok := sc.Text()
		key := strings.ToLower(tok)
		if !isHeaderKey(key) {
			pending = tok
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("ascii grid: missing value for %s", tok)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: header %s: %w", tok, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("ascii grid: missing %s", k)
		}
	}

	cols, rows := header["ncols"], header["nrows"]
	if !validDimension(cols) || !validDimension(rows) || cols*rows > maxGridCells {
		return nil, fmt.Errorf("ascii grid: invalid size %gx%g", cols, rows)
	}
	g := &Georaster{
		Width:       int(cols),
		Height:      int(rows),
		PixelWidth:  header["cellsize"],
		PixelHeight: header["cellsize"],
	}
	if !validPixelSize(g.PixelWidth) {
		return nil, fmt.Errorf("ascii grid: invalid cellsize %g", g.PixelWidth)
	}

	half := g.PixelWidth / 2
	switch {
	case hasKey(header, "xllcorner"):
		g.XMin = header["xllcorner"]
	case hasKey(header, "xllcenter"):
		g.XMin = header["xllcenter"] - half
	default:
		return nil, errors.New("ascii grid: missing xllcorner")
	}
	var yMin float64
	switch {
	case hasKey(header, "yllcorner"):
		yMin = header["yllcorner"]
	case hasKey(header, "yllcenter"):
		yMin = header["yllcenter"] - half
	default:
		return nil, errors.New("ascii grid: missing yllcorner")
	}
	g.YMax = yMin + float64(g.Height)*g.PixelHeight
	if nd, ok := header["nodata_value"]; ok {
		g.NoData = &nd
	}

	g.Values = make([][]float64, g.Height)
	row, col := 0, 0
	g.Values[0] = make([]float64, g.Width)
	put := func(tok string) error {
		if row >= g.Height {
			return fmt.Errorf("ascii grid: more than %d samples", g.Width*g.Height)
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return fmt.Errorf("ascii grid: row %d col %d: %w", row, col, err)
		}
		g.Values[row][col] = v
		col++
		if col == g.Width {
			col = 0
			row++
			if row < g.Height {
				g.Values[row] = make([]float64, g.Width)
			}
		}
		return nil
	}

	if pending != "" {
		if err := put(pending); err != nil {
			return nil, err
		}
	}
	for sc.Scan() {
		if err := put(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if row != g.Height {
		return nil, fmt.Errorf("ascii grid: expected %d samples, got %d", g.Width*g.Height, row*g.Width+col)
	}
	return g, nil
}

func isHeaderKey(k string) bool {
	switch k {
	case "ncols", "nrows", "xllcorner", "xllcenter", "yllcorner", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func hasKey(m map[string]float64, k string) bool {
	_, ok := m[k]
	return ok
}

// WriteASCIIGrid writes g in the format ParseASCIIGrid reads, using corner
// registration. Only square pixels can be represented.
func WriteASCIIGrid(w io.Writer, g *Georaster) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.PixelWidth != g.PixelHeight {
		return fmt.Errorf("ascii grid: non-square pixels %gx%g", g.PixelWidth, g.PixelHeight)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", g.Width, g.Height)
	fmt.Fprintf(bw, "xllcorner %s\nyllcorner %s\ncellsize %s\n",
		formatSample(g.XMin), formatSample(g.Bounds().South), formatSample(g.PixelWidth))
	if g.NoData != nil {
		fmt.Fprintf(bw, "NODATA_value %s\n", formatSample(*g.NoData))
	}
	for _, row := range g.Values {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(formatSample(v))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ascii grid: %w", err)
	}
	return nil
}

func formatSample(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// validDimension accepts whole numbers from 1 to maxGridCells.
func validDimension(f float64) bool {
	return f >= 1 && f <= maxGridCells && f == math.Trunc(f)
}
