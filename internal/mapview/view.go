// Package mapview holds the per-map state the UI event handlers act on:
// view center and zoom, the active base layer, and the single search marker.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
)

// DefaultCenter is the initial view center over Lagos.
var DefaultCenter = domain.Coordinate{Lat: 6.5244, Lng: 3.3792}

// Initial zoom and the zoom used when jumping to a search result.
const (
	DefaultZoom = 10
	SearchZoom  = 23
)

// Sampler looks up elevation at a point. raster.Store implements it.
type Sampler interface {
	Sample(lat, lng float64) (float64, bool)
}

// Recorder receives lookup events. It must not block.
type Recorder interface {
	Record(event domain.LookupEvent)
}

// Marker is the search result pin.
type Marker struct {
	ID        string            `json:"id"`
	Position  domain.Coordinate `json:"position"`
	Title     string            `json:"title"`
	Popup     string            `json:"popup"`
	PlaceName string            `json:"place_name,omitempty"`
	PlacedAt  time.Time         `json:"placed_at"`
}

// Popup is the click popup content.
type Popup struct {
	Position  domain.Coordinate   `json:"position"`
	Elevation *float64            `json:"elevation"` // nil for non-finite samples
	Category  domain.RiskCategory `json:"category"`
	Label     string              `json:"label"`
	Content   string              `json:"content"`
}

// SearchResult is the outcome of one search box submission.
type SearchResult struct {
	Outcome domain.Outcome `json:"outcome"`
	Marker  *Marker        `json:"marker,omitempty"`
	Message string         `json:"message,omitempty"`
}

// State is a snapshot of the view.
type State struct {
	Center    domain.Coordinate `json:"center"`
	Zoom      int               `json:"zoom"`
	BaseLayer string            `json:"base_layer"`
	Bounds    *raster.Bounds    `json:"bounds,omitempty"`
	Marker    *Marker           `json:"marker,omitempty"`
}

// View owns the map state. The search marker is a single slot: placing a
// new marker releases the previous one.
type View struct {
	sampler  Sampler
	geocoder domain.Geocoder
	recorder Recorder
	logger   *slog.Logger
	metrics  *observability.Metrics

	mu     sync.Mutex
	center domain.Coordinate
	zoom   int
	base   BaseLayer
	bounds *raster.Bounds
	marker *Marker
}

// New creates a View centred on DefaultCenter. geocoder and recorder may be
// nil to disable place search and event recording.
func New(sampler Sampler, geocoder domain.Geocoder, recorder Recorder, logger *slog.Logger, metrics *observability.Metrics) *View {
	return &View{
		sampler:  sampler,
		geocoder: geocoder,
		recorder: recorder,
		logger:   logger,
		metrics:  metrics,
		center:   DefaultCenter,
		zoom:     DefaultZoom,
		base:     OpenStreetMap,
	}
}

// FitBounds centres the view on a loaded raster's extent.
func (v *View) FitBounds(b raster.Bounds) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bounds = &b
	v.center = domain.Coordinate{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}

// Click classifies the elevation under (lat, lng). ok is false when the
// point is outside the raster, in which case no popup opens.
func (v *View) Click(lat, lng float64) (Popup, bool) {
	pos := domain.Coordinate{Lat: lat, Lng: lng}

	value, ok := v.sampler.Sample(lat, lng)
	if !ok {
		v.metrics.Clicks.WithLabelValues(string(domain.OutcomeOutside)).Inc()
		ev := domain.NewLookupEvent(domain.KindClick, domain.OutcomeOutside)
		ev.Coordinate = &pos
		v.record(ev)
		return Popup{}, false
	}

	category := domain.Classify(value)
	label := domain.PopupLabel(value)
	v.metrics.Classifications.WithLabelValues("popup", category.Key).Inc()
	v.metrics.Clicks.WithLabelValues(string(domain.OutcomePopup)).Inc()

	// NaN and infinities still classify, but JSON cannot carry them.
	var elevation *float64
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		elevation = &value
	}

	ev := domain.NewLookupEvent(domain.KindClick, domain.OutcomePopup)
	ev.Coordinate = &pos
	ev.Elevation = elevation
	ev.Category = category.Key
	ev.Label = label
	v.record(ev)

	return Popup{
		Position:  pos,
		Elevation: elevation,
		Category:  category,
		Label:     label,
		Content:   fmt.Sprintf("<b>Elevation:</b> %.2f m<br/><b>Category:</b> %s", value, label),
	}, true
}

// Search handles a search box submission. Coordinates move the view and
// replace the marker; malformed or out-of-range input yields an alert;
// anything else is handed to the place geocoder when one is configured and
// dropped silently otherwise.
func (v *View) Search(ctx context.Context, text string) SearchResult {
	coord, err := domain.ParseCoordinateInput(text)

	var result SearchResult
	switch {
	case err == nil:
		result = SearchResult{Outcome: domain.OutcomeMoved, Marker: v.moveTo(coord, "")}
	case errors.Is(err, domain.ErrNoMatch):
		result = v.searchPlace(ctx, text)
	default:
		result = SearchResult{Outcome: domain.OutcomeAlert, Message: domain.UserMessage(err)}
		v.logger.Debug("search rejected", "input", text, "error", err)
	}

	v.metrics.Searches.WithLabelValues(string(result.Outcome)).Inc()

	ev := domain.NewLookupEvent(domain.KindSearch, result.Outcome)
	ev.Input = text
	ev.Message = result.Message
	if result.Marker != nil {
		pos := result.Marker.Position
		ev.Coordinate = &pos
	}
	v.record(ev)

	return result
}

func (v *View) searchPlace(ctx context.Context, text string) SearchResult {
	coord, place, ok := domain.ResolvePlace(ctx, text, v.geocoder, v.logger)
	if !ok {
		return SearchResult{Outcome: domain.OutcomeIgnored}
	}
	return SearchResult{Outcome: domain.OutcomePlace, Marker: v.moveTo(coord, place.PlaceName)}
}

// moveTo switches to satellite imagery, zooms in on c and replaces the
// search marker.
func (v *View) moveTo(c domain.Coordinate, placeName string) *Marker {
	m := newMarker(c, placeName)

	v.mu.Lock()
	previous := v.marker
	v.marker = m
	v.center = c
	v.zoom = SearchZoom
	v.base = Satellite
	v.mu.Unlock()

	if previous != nil {
		v.logger.Debug("search marker replaced", "previous", previous.ID, "marker", m.ID)
	}

	out := *m
	return &out
}

// DismissMarker removes the search marker. It reports whether one existed.
func (v *View) DismissMarker() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	had := v.marker != nil
	v.marker = nil
	return had
}

// Marker returns a copy of the current search marker, or nil.
func (v *View) Marker() *Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.marker == nil {
		return nil
	}
	m := *v.marker
	return &m
}

// State returns a snapshot of the view.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()

	s := State{
		Center:    v.center,
		Zoom:      v.zoom,
		BaseLayer: v.base.Name,
	}
	if v.bounds != nil {
		b := *v.bounds
		s.Bounds = &b
	}
	if v.marker != nil {
		m := *v.marker
		s.Marker = &m
	}
	return s
}

func (v *View) record(ev domain.LookupEvent) {
	if v.recorder == nil {
		return
	}
	v.recorder.Record(ev)
}

func newMarker(c domain.Coordinate, placeName string) *Marker {
	popup := fmt.Sprintf("<b>Exact Location</b><br>Latitude: %.6f<br>Longitude: %.6f", c.Lat, c.Lng)
	if placeName != "" {
		popup = fmt.Sprintf("<b>%s</b><br>Latitude: %.6f<br>Longitude: %.6f", html.EscapeString(placeName), c.Lat, c.Lng)
	}
	return &Marker{
		ID:        uuid.NewString(),
		Position:  c,
		Title:     "Exact Location: " + c.String(),
		Popup:     popup,
		PlaceName: placeName,
		PlacedAt:  domain.Now().UTC(),
	}
}
