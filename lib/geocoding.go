package lib

import (
	"context"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Queries below this length return no candidates without hitting the service.
const minQueryLength = 3

// Geocoder resolves free-text city prefixes against the gazetteer service.
// Stateless: every query issues a fresh request, nothing is cached.
type Geocoder struct {
	cfg       *config.Config
	log       *zap.Logger
	transport http.RoundTripper
}

func NewGeocoder(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper) *Geocoder {
	return &Geocoder{cfg, log, transport}
}

// SearchCities returns up to ten populated-place candidates whose names start
// with the query.
func (g *Geocoder) SearchCities(ctx context.Context, query string) ([]models.Place, error) {
	if len(query) < minQueryLength {
		return nil, nil
	}

	var response models.GeoNamesResponse
	err := requests.URL(g.cfg.GeoNames.Endpoint).
		Transport(g.transport).
		Param("name_startsWith", query).
		Param("maxRows", "10").
		Param("username", g.cfg.GeoNames.Username).
		Param("featureClass", "P").
		ToJSON(&response).
		Fetch(ctx)
	if err != nil {
		g.log.Sugar().Infow("Geocoding search failed", "query", query, "err", err)
		return nil, err
	}
	return response.Geonames, nil
}
