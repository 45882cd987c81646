package models

import (
	"sort"
	"time"
)

// AlertLevel is the PAGER alert classification attached to a feed feature.
type AlertLevel string

const (
	AlertNone   AlertLevel = ""
	AlertGreen  AlertLevel = "green"
	AlertYellow AlertLevel = "yellow"
	AlertOrange AlertLevel = "orange"
	AlertRed    AlertLevel = "red"
)

func AlertLevelFrom(s *string) AlertLevel {
	if s == nil {
		return AlertNone
	}
	switch AlertLevel(*s) {
	case AlertGreen, AlertYellow, AlertOrange, AlertRed:
		return AlertLevel(*s)
	}
	return AlertNone
}

// FeedResponse matches the JSON envelope delivered by the earthquake catalog feed.
type FeedResponse struct {
	Features []Feature `json:"features"`
}

// AlertsResponse matches the envelope returned by the companion server's unread endpoint.
type AlertsResponse struct {
	Alerts []Feature `json:"alerts"`
}

type Feature struct {
	ID         string            `json:"id"`
	Properties FeatureProperties `json:"properties"`
	Geometry   Geometry          `json:"geometry"`
}

type FeatureProperties struct {
	Mag     *float64 `json:"mag"`
	Place   *string  `json:"place"`
	Time    *float64 `json:"time"` // epoch milliseconds
	Alert   *string  `json:"alert"`
	Tsunami *int     `json:"tsunami"`
	URL     *string  `json:"url"`
	Type    *string  `json:"type"`
	Title   *string  `json:"title"`
}

type Geometry struct {
	Coordinates []float64 `json:"coordinates"` // [longitude, latitude, depth]
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Earthquake is the immutable in-app record decoded from a feed feature.
// Identity is the event ID alone, never the content.
type Earthquake struct {
	ID         string
	Magnitude  *float64
	Place      *string
	TimeMillis *float64
	Alert      AlertLevel
	Tsunami    *int
	Coordinate Coordinate
	URL        *string
}

func EarthquakeFromFeature(f Feature) Earthquake {
	eq := Earthquake{
		ID:         f.ID,
		Magnitude:  f.Properties.Mag,
		Place:      f.Properties.Place,
		TimeMillis: f.Properties.Time,
		Alert:      AlertLevelFrom(f.Properties.Alert),
		Tsunami:    f.Properties.Tsunami,
		URL:        f.Properties.URL,
	}
	if len(f.Geometry.Coordinates) >= 2 {
		eq.Coordinate = Coordinate{
			Latitude:  f.Geometry.Coordinates[1],
			Longitude: f.Geometry.Coordinates[0],
		}
	}
	return eq
}

func EarthquakesFromFeatures(features []Feature) []Earthquake {
	out := make([]Earthquake, len(features))
	for i, f := range features {
		out[i] = EarthquakeFromFeature(f)
	}
	return out
}

func (e Earthquake) Equal(other Earthquake) bool {
	return e.ID == other.ID
}

// OccurredAt resolves the epoch-millisecond timestamp, reporting false when the
// feed omitted it.
func (e Earthquake) OccurredAt() (time.Time, bool) {
	if e.TimeMillis == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(*e.TimeMillis)).UTC(), true
}

// SortTimeDescending orders quakes newest-first; records without a timestamp sink
// to the end.
func SortTimeDescending(quakes []Earthquake) {
	sort.SliceStable(quakes, func(i, j int) bool {
		return millisOrZero(quakes[i]) > millisOrZero(quakes[j])
	})
}

func millisOrZero(e Earthquake) float64 {
	if e.TimeMillis == nil {
		return 0
	}
	return *e.TimeMillis
}
