package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lookup kinds.
const (
	KindClick  = "click"
	KindSearch = "search"
)

// Outcome describes what a lookup did to the map view.
type Outcome string

const (
	OutcomePopup   Outcome = "popup"   // click inside the raster, popup opened
	OutcomeOutside Outcome = "outside" // click outside the raster, nothing shown
	OutcomeMoved   Outcome = "moved"   // coordinate search, marker placed
	OutcomePlace   Outcome = "place"   // place-name search, marker placed
	OutcomeAlert   Outcome = "alert"   // user-facing error shown
	OutcomeIgnored Outcome = "ignored" // input dropped silently
)

// LookupEvent records a single click or search handled by the map view.
type LookupEvent struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	Outcome    Outcome     `json:"outcome"`
	Input      string      `json:"input,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Elevation  *float64    `json:"elevation,omitempty"`
	Category   string      `json:"category,omitempty"`
	Label      string      `json:"label,omitempty"`
	Message    string      `json:"message,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewLookupEvent stamps a fresh id and the package clock time.
func NewLookupEvent(kind string, outcome Outcome) LookupEvent {
	return LookupEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		Outcome:    outcome,
		OccurredAt: clock.Now().UTC(),
	}
}
