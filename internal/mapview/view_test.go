package mapview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/flood-risk-map/internal/domain"
	"github.com/couchcryptid/flood-risk-map/internal/observability"
	"github.com/couchcryptid/flood-risk-map/internal/raster"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type fixedSampler struct {
	value float64
	ok    bool
}

func (s fixedSampler) Sample(_, _ float64) (float64, bool) { return s.value, s.ok }

type captureRecorder struct {
	mu     sync.Mutex
	events []domain.LookupEvent
}

func (r *captureRecorder) Record(ev domain.LookupEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *captureRecorder) last(t *testing.T) domain.LookupEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  int
}

func (g *stubGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.GeocodingResult, error) {
	g.calls++
	return g.result, g.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestView(s Sampler, g domain.Geocoder, r Recorder) (*View, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(s, g, r, discardLogger(), m), m
}

// --- tests ---

func TestNew_InitialState(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)
	s := v.State()

	assert.Equal(t, DefaultCenter, s.Center)
	assert.Equal(t, DefaultZoom, s.Zoom)
	assert.Equal(t, OpenStreetMap.Name, s.BaseLayer)
	assert.Nil(t, s.Bounds)
	assert.Nil(t, s.Marker)
}

func TestView_FitBounds(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)
	v.FitBounds(raster.Bounds{South: 6, West: 3, North: 7, East: 4})

	s := v.State()
	require.NotNil(t, s.Bounds)
	assert.Equal(t, domain.Coordinate{Lat: 6.5, Lng: 3.5}, s.Center)
}

func TestView_Click_InsideRaster(t *testing.T) {
	rec := &captureRecorder{}
	v, metrics := newTestView(fixedSampler{value: 1.5, ok: true}, nil, rec)

	popup, ok := v.Click(6.45, 3.40)

	require.True(t, ok)
	assert.Equal(t, domain.High, popup.Category)
	assert.Equal(t, "High Risk (1–2m)", popup.Label)
	require.NotNil(t, popup.Elevation)
	assert.Equal(t, 1.5, *popup.Elevation)
	assert.Equal(t, "<b>Elevation:</b> 1.50 m<br/><b>Category:</b> High Risk (1–2m)", popup.Content)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Classifications.WithLabelValues("popup", "high")))

	ev := rec.last(t)
	assert.Equal(t, domain.KindClick, ev.Kind)
	assert.Equal(t, domain.OutcomePopup, ev.Outcome)
	require.NotNil(t, ev.Elevation)
	assert.Equal(t, 1.5, *ev.Elevation)
	assert.Equal(t, "high", ev.Category)
}

func TestView_Click_NonFiniteSample(t *testing.T) {
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		t.Run(fmt.Sprint(value), func(t *testing.T) {
			rec := &captureRecorder{}
			v, _ := newTestView(fixedSampler{value: value, ok: true}, nil, rec)

			popup, ok := v.Click(6.5, 3.5)

			require.True(t, ok)
			assert.Equal(t, domain.OutOfRange, popup.Category)
			assert.Equal(t, "Out of Range", popup.Label)
			assert.Nil(t, popup.Elevation)
			assert.Nil(t, rec.last(t).Elevation)

			_, err := json.Marshal(popup)
			require.NoError(t, err)
			_, err = json.Marshal(rec.last(t))
			require.NoError(t, err)
		})
	}
}

func TestView_Click_OutOfRangeValue(t *testing.T) {
	v, _ := newTestView(fixedSampler{value: 120, ok: true}, nil, nil)

	popup, ok := v.Click(6.45, 3.40)

	require.True(t, ok)
	assert.Equal(t, domain.OutOfRange, popup.Category)
	assert.Equal(t, "Out of Range", popup.Label)
	assert.Contains(t, popup.Content, "120.00 m")
}

func TestView_Click_OutsideRaster(t *testing.T) {
	rec := &captureRecorder{}
	v, metrics := newTestView(fixedSampler{ok: false}, nil, rec)

	_, ok := v.Click(40, 40)

	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Clicks.WithLabelValues("outside")))
	assert.Equal(t, domain.OutcomeOutside, rec.last(t).Outcome)
}

func TestView_Search_Coordinate(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	rec := &captureRecorder{}
	v, metrics := newTestView(fixedSampler{}, nil, rec)

	res := v.Search(context.Background(), "3.3792 6.5244")

	assert.Equal(t, domain.OutcomeMoved, res.Outcome)
	require.NotNil(t, res.Marker)
	assert.Equal(t, domain.Coordinate{Lat: 6.5244, Lng: 3.3792}, res.Marker.Position)
	assert.Equal(t, "Exact Location: 6.524400, 3.379200", res.Marker.Title)
	assert.Equal(t, "<b>Exact Location</b><br>Latitude: 6.524400<br>Longitude: 3.379200", res.Marker.Popup)
	assert.Equal(t, fakeClock.Now(), res.Marker.PlacedAt)

	s := v.State()
	assert.Equal(t, res.Marker.Position, s.Center)
	assert.Equal(t, SearchZoom, s.Zoom)
	assert.Equal(t, Satellite.Name, s.BaseLayer)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Searches.WithLabelValues("moved")))

	ev := rec.last(t)
	assert.Equal(t, domain.KindSearch, ev.Kind)
	assert.Equal(t, "3.3792 6.5244", ev.Input)
	require.NotNil(t, ev.Coordinate)
}

func TestView_Search_ReplacesMarker(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)

	first := v.Search(context.Background(), "3.3792 6.5244")
	second := v.Search(context.Background(), "-33.86,151.21")

	require.NotNil(t, first.Marker)
	require.NotNil(t, second.Marker)
	assert.NotEqual(t, first.Marker.ID, second.Marker.ID)

	current := v.Marker()
	require.NotNil(t, current)
	assert.Equal(t, second.Marker.ID, current.ID, "only the latest marker remains")
}

func TestView_Search_Alert(t *testing.T) {
	rec := &captureRecorder{}
	v, _ := newTestView(fixedSampler{}, nil, rec)
	placed := v.Search(context.Background(), "3.3792 6.5244")

	res := v.Search(context.Background(), "200,200")

	assert.Equal(t, domain.OutcomeAlert, res.Outcome)
	assert.Equal(t, domain.InvalidRangeMessage, res.Message)
	assert.Nil(t, res.Marker)
	assert.Equal(t, placed.Marker.ID, v.Marker().ID, "alerts leave the marker alone")
	assert.Equal(t, domain.InvalidRangeMessage, rec.last(t).Message)
}

func TestView_Search_NoMatchIgnored(t *testing.T) {
	v, metrics := newTestView(fixedSampler{}, nil, nil)

	res := v.Search(context.Background(), "not a coordinate")

	assert.Equal(t, domain.OutcomeIgnored, res.Outcome)
	assert.Empty(t, res.Message)
	assert.Nil(t, v.Marker())
	assert.Equal(t, DefaultZoom, v.State().Zoom)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Searches.WithLabelValues("ignored")))
}

func TestView_Search_PlaceFallback(t *testing.T) {
	geo := &stubGeocoder{result: domain.GeocodingResult{
		Lat: 6.6018, Lon: 3.3515, PlaceName: "Ikeja", FormattedAddress: "Ikeja, Lagos State, Nigeria",
	}}
	v, _ := newTestView(fixedSampler{}, geo, nil)

	res := v.Search(context.Background(), "Ikeja")

	assert.Equal(t, domain.OutcomePlace, res.Outcome)
	require.NotNil(t, res.Marker)
	assert.Equal(t, "Ikeja", res.Marker.PlaceName)
	assert.Equal(t, domain.Coordinate{Lat: 6.6018, Lng: 3.3515}, res.Marker.Position)
	assert.Contains(t, res.Marker.Popup, "<b>Ikeja</b>")
	assert.Equal(t, 1, geo.calls)
}

func TestView_Search_PlaceFallbackFailureIgnored(t *testing.T) {
	geo := &stubGeocoder{err: errors.New("timeout")}
	v, _ := newTestView(fixedSampler{}, geo, nil)

	res := v.Search(context.Background(), "Ikeja")

	assert.Equal(t, domain.OutcomeIgnored, res.Outcome)
	assert.Nil(t, v.Marker())
}

func TestView_Search_CoordinatesSkipGeocoder(t *testing.T) {
	geo := &stubGeocoder{}
	v, _ := newTestView(fixedSampler{}, geo, nil)

	v.Search(context.Background(), "3°23.4'E 6°31.5'N")
	v.Search(context.Background(), "200,200")

	assert.Equal(t, 0, geo.calls)
}

func TestView_DismissMarker(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)
	assert.False(t, v.DismissMarker())

	v.Search(context.Background(), "3.3792 6.5244")
	assert.True(t, v.DismissMarker())
	assert.Nil(t, v.Marker())
	assert.Nil(t, v.State().Marker)
}

func TestView_Search_ConcurrentKeepsSingleMarker(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v.Search(context.Background(), "3.3792 6.5244")
		}()
	}
	wg.Wait()

	assert.NotNil(t, v.Marker())
}

func TestView_MarkerIsCopy(t *testing.T) {
	v, _ := newTestView(fixedSampler{}, nil, nil)
	res := v.Search(context.Background(), "3.3792 6.5244")
	res.Marker.Title = "mutated"

	assert.Equal(t, "Exact Location: 6.524400, 3.379200", v.Marker().Title)
}
