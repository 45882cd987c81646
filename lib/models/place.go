package models

import (
	"strconv"
)

// GeoNamesResponse matches the gazetteer's searchJSON envelope.
type GeoNamesResponse struct {
	Geonames []Place `json:"geonames"`
}

// Place is one candidate returned by the geocoding service. Latitude and
// longitude arrive as strings on the wire.
type Place struct {
	ID      int     `json:"geonameId"`
	Name    string  `json:"name"`
	Country string  `json:"countryName"`
	State   *string `json:"adminName1,omitempty"`
	Lat     string  `json:"lat"`
	Lng     string  `json:"lng"`
}

func (p Place) Coordinate() (Coordinate, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Coordinate{}, err
	}
	lng, err := strconv.ParseFloat(p.Lng, 64)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Latitude: lat, Longitude: lng}, nil
}
