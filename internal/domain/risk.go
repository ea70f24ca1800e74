package domain

// RiskCategory is one flood-risk classification derived from elevation.
type RiskCategory struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color"` // legend swatch, hex
}

// OutOfRangeLabel is the popup label for elevations outside every band.
const OutOfRangeLabel = "Out of Range"

var (
	Ocean      = RiskCategory{Key: "ocean", Label: "Ocean", Color: "#ADD8E6"}
	VeryHigh   = RiskCategory{Key: "very_high", Label: "Very High Risk (0–1m)", Color: "#bd0026"}
	High       = RiskCategory{Key: "high", Label: "High Risk (1–2m)", Color: "#f03b20"}
	Medium     = RiskCategory{Key: "medium", Label: "Medium Risk (2–5m)", Color: "#fd8d3c"}
	Low        = RiskCategory{Key: "low", Label: "Low Risk (5–10m)", Color: "#fecc5c"}
	VeryLow    = RiskCategory{Key: "very_low", Label: "Very Low Risk (10–15m)", Color: "#ffffb2"}
	Unaffected = RiskCategory{Key: "unaffected", Label: "Unaffected Area (15m+)", Color: "#c7e9c0"}
	OutOfRange = RiskCategory{Key: "out_of_range", Label: OutOfRangeLabel}
)

// legendOrder lists categories top to bottom as the map legend shows them.
var legendOrder = []RiskCategory{Unaffected, VeryLow, Low, Medium, High, VeryHigh, Ocean}

// Classify maps an elevation in metres to its risk category. Bands are
// checked in order and the first match wins. Values outside every band,
// including NaN and infinities, resolve to OutOfRange.
func Classify(value float64) RiskCategory {
	switch {
	case value == 0:
		return Ocean
	case value > 0 && value <= 1:
		return VeryHigh
	case value > 1 && value <= 2:
		return High
	case value > 2 && value <= 5:
		return Medium
	case value > 5 && value < 10:
		return Low
	case value > 10 && value < 15:
		return VeryLow
	case value > 15 && value < 80:
		return Unaffected
	default:
		return OutOfRange
	}
}

// InBand reports whether value falls inside one of the documented bands.
func InBand(value float64) bool {
	return Classify(value) != OutOfRange
}

// PixelFill returns the overlay fill color for a raster sample. Ocean is
// transparent (empty color, ok). Values outside every band are undefined and
// report ok == false so the renderer draws nothing.
func PixelFill(value float64) (string, bool) {
	c := Classify(value)
	switch c {
	case OutOfRange:
		return "", false
	case Ocean:
		return "", true
	default:
		return c.Color, true
	}
}

// PopupLabel returns the category label shown in the click popup, falling
// back to "Out of Range" for values outside every band.
func PopupLabel(value float64) string {
	return Classify(value).Label
}

// Legend returns the legend entries in display order. The slice is a copy.
func Legend() []RiskCategory {
	out := make([]RiskCategory, len(legendOrder))
	copy(out, legendOrder)
	return out
}

// CategoryByKey looks up a category by its key, including out_of_range.
func CategoryByKey(key string) (RiskCategory, bool) {
	for _, c := range legendOrder {
		if c.Key == key {
			return c, true
		}
	}
	if key == OutOfRange.Key {
		return OutOfRange, true
	}
	return RiskCategory{}, false
}
