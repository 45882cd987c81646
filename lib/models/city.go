package models

import (
	"github.com/google/uuid"
)

// DistanceUnit tags the radius a city was entered with. The server contract is
// kilometers-only, so miles are converted at sync time.
type DistanceUnit string

const (
	Kilometers DistanceUnit = "km"
	Miles      DistanceUnit = "mi"
)

const kmPerMile = 1.60934

// City is a user-defined geographic point monitored for earthquake alerts.
// The identifier is assigned once at creation and stays stable across edits.
type City struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Country      string       `json:"country"`
	State        *string      `json:"state,omitempty"`
	Latitude     float64      `json:"latitude"`
	Longitude    float64      `json:"longitude"`
	Radius       float64      `json:"radius"`
	Unit         DistanceUnit `json:"unit"`
	MinMagnitude *float64     `json:"min_magnitude,omitempty"`
}

type Cities []City

// RadiusKm returns the notification radius in kilometers regardless of the unit
// the user entered it in.
func (c City) RadiusKm() float64 {
	if c.Unit == Miles {
		return c.Radius * kmPerMile
	}
	return c.Radius
}

// MinMagnitudeOrDefault applies the server's default policy for an absent
// threshold: notify on everything.
func (c City) MinMagnitudeOrDefault() float64 {
	if c.MinMagnitude == nil {
		return 0.0
	}
	return *c.MinMagnitude
}
