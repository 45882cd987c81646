package app

import (
	"time"

	"github.com/vibecoderx/QuakeTrack/lib/models"
)

type CityView struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Country      string   `json:"country"`
	State        *string  `json:"state,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Radius       float64  `json:"radius"`
	Unit         string   `json:"unit"`
	MinMagnitude *float64 `json:"min_magnitude,omitempty"`
}

func (view CityView) From(entity models.City) CityView {
	return CityView{
		ID:           entity.ID.String(),
		Name:         entity.Name,
		Country:      entity.Country,
		State:        entity.State,
		Latitude:     entity.Latitude,
		Longitude:    entity.Longitude,
		Radius:       entity.Radius,
		Unit:         string(entity.Unit),
		MinMagnitude: entity.MinMagnitude,
	}
}

type EarthquakeView struct {
	ID         string            `json:"id"`
	Magnitude  *float64          `json:"magnitude"`
	Place      *string           `json:"place"`
	Time       *string           `json:"time"`
	Alert      string            `json:"alert,omitempty"`
	Tsunami    *int              `json:"tsunami,omitempty"`
	Coordinate models.Coordinate `json:"coordinate"`
	URL        *string           `json:"url,omitempty"`
}

func (view EarthquakeView) From(entity models.Earthquake) EarthquakeView {
	out := EarthquakeView{
		ID:         entity.ID,
		Magnitude:  entity.Magnitude,
		Place:      entity.Place,
		Alert:      string(entity.Alert),
		Tsunami:    entity.Tsunami,
		Coordinate: entity.Coordinate,
		URL:        entity.URL,
	}
	if at, ok := entity.OccurredAt(); ok {
		out.Time = isoformat(at)
	}
	return out
}

type PlaceView struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   *string `json:"state,omitempty"`
	Lat     string  `json:"lat"`
	Lng     string  `json:"lng"`
}

func (view PlaceView) From(entity models.Place) PlaceView {
	return PlaceView{
		ID:      entity.ID,
		Name:    entity.Name,
		Country: entity.Country,
		State:   entity.State,
		Lat:     entity.Lat,
		Lng:     entity.Lng,
	}
}

type SearchResultsView struct {
	Results []EarthquakeView `json:"results"`
	Message string           `json:"message,omitempty"`
}

type Fromable[Entity any, Repr any] interface {
	From(Entity) Repr
}

func FromMany[T any, U Fromable[T, U]](elems []T) []U {
	out := make([]U, len(elems))
	for i, t := range elems {
		var u U
		out[i] = u.From(t)
	}
	return out
}

func isoformat(t time.Time) *string {
	s := t.UTC().Format(time.RFC3339)
	return &s
}
