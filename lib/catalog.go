package lib

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	historyMinMagnitude = 4.0
	historyYearLimit    = 20
)

// Catalog queries the public earthquake catalog. Results are ordered by
// magnitude server-side; no caching or fallback is kept on this side.
type Catalog struct {
	cfg       *config.Config
	log       *zap.Logger
	transport http.RoundTripper
}

func NewCatalog(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper) *Catalog {
	return &Catalog{cfg, log, transport}
}

// SearchByYear returns the strongest recorded quakes of a calendar year.
func (c *Catalog) SearchByYear(ctx context.Context, year int) ([]models.Earthquake, error) {
	var response models.FeedResponse
	err := requests.URL(c.cfg.Catalog.QueryURL).
		Transport(c.transport).
		Param("format", "geojson").
		Param("starttime", fmt.Sprintf("%d-01-01", year)).
		Param("endtime", fmt.Sprintf("%d-12-31", year)).
		Param("minmagnitude", fmt.Sprintf("%.1f", historyMinMagnitude)).
		Param("orderby", "magnitude").
		Param("limit", fmt.Sprint(historyYearLimit)).
		ToJSON(&response).
		Fetch(ctx)
	if err != nil {
		c.log.Sugar().Infow("Catalog year search failed", "year", year, "err", err)
		return nil, err
	}
	return models.EarthquakesFromFeatures(response.Features), nil
}

// SearchByDate returns all quakes recorded on a single calendar day.
func (c *Catalog) SearchByDate(ctx context.Context, date time.Time) ([]models.Earthquake, error) {
	start := date.Format("2006-01-02")
	end := date.AddDate(0, 0, 1).Format("2006-01-02")

	var response models.FeedResponse
	err := requests.URL(c.cfg.Catalog.QueryURL).
		Transport(c.transport).
		Param("format", "geojson").
		Param("starttime", start).
		Param("endtime", end).
		Param("orderby", "magnitude").
		ToJSON(&response).
		Fetch(ctx)
	if err != nil {
		c.log.Sugar().Infow("Catalog date search failed", "date", start, "err", err)
		return nil, err
	}
	return models.EarthquakesFromFeatures(response.Features), nil
}

// EventByID resolves a single event, typically from a tapped notification's
// deep link. Absent on any failure; there is no partial or cached fallback.
func (c *Catalog) EventByID(ctx context.Context, eventID string) (*models.Earthquake, error) {
	var feature models.Feature
	err := requests.URL(c.cfg.Catalog.QueryURL).
		Transport(c.transport).
		Param("format", "geojson").
		Param("eventid", eventID).
		ToJSON(&feature).
		Fetch(ctx)
	if err != nil {
		c.log.Sugar().Infow("Catalog event lookup failed", "event_id", eventID, "err", err)
		return nil, err
	}
	quake := models.EarthquakeFromFeature(feature)
	return &quake, nil
}
