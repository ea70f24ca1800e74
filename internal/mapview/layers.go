package mapview

// BaseLayer is a tile layer the client can toggle between.
type BaseLayer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

var (
	OpenStreetMap = BaseLayer{
		Name:        "OpenStreetMap",
		URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
		Attribution: "&copy; OpenStreetMap contributors",
		MaxZoom:     22,
	}
	Satellite = BaseLayer{
		Name:        "Satellite (Esri)",
		URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
		Attribution: "Tiles &copy; Esri &mdash; Source: Esri & GIS Community",
		MaxZoom:     23,
	}
)

// BaseLayers lists the toggleable base layers, default first.
func BaseLayers() []BaseLayer {
	return []BaseLayer{OpenStreetMap, Satellite}
}

// Overlay describes the DEM overlay drawn over the base layer.
type Overlay struct {
	Name       string  `json:"name"`
	Opacity    float64 `json:"opacity"`
	Resolution int     `json:"resolution"`
}

// DEMOverlay is the elevation overlay as configured on the map page.
var DEMOverlay = Overlay{Name: "DEM Raster", Opacity: 0.6, Resolution: 256}
