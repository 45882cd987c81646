package lib

import (
	"context"
	"time"

	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *Store
	gateway  *Gateway
	catalog  *Catalog
	geocoder *Geocoder

	*manageCities
}

func NewService(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, store *Store, gateway *Gateway, catalog *Catalog, geocoder *Geocoder) *Service {
	return &Service{
		cfg, log, store, gateway, catalog, geocoder,
		&manageCities{log, store, gateway},
	}
}

func (svc *Service) Cities() models.Cities {
	return svc.store.Cities()
}

// SetPushToken stores the new token, re-syncs the snapshot under it, and
// pulls whatever alerts accumulated for it server-side.
func (svc *Service) SetPushToken(ctx context.Context, token string) {
	svc.gateway.SetPushToken(token)
	svc.syncAsync(ctx, svc.store.Cities())
	go svc.gateway.FetchUnreadAlerts(context.WithoutCancel(ctx))
}

func (svc *Service) FetchUnreadAlerts(ctx context.Context) ([]models.Earthquake, error) {
	return svc.gateway.FetchUnreadAlerts(ctx)
}

func (svc *Service) UnreadAlerts() []models.Earthquake {
	return svc.gateway.UnreadAlerts()
}

func (svc *Service) ClearAllAlerts(ctx context.Context) {
	svc.gateway.ClearAllAlerts(ctx)
}

// FetchEarthquakeByID resolves a deep-linked event identifier into a full
// record, or nothing at all.
func (svc *Service) FetchEarthquakeByID(ctx context.Context, eventID string) (*models.Earthquake, error) {
	return svc.catalog.EventByID(ctx, eventID)
}

func (svc *Service) SearchHistoryByYear(ctx context.Context, year int) ([]models.Earthquake, error) {
	return svc.catalog.SearchByYear(ctx, year)
}

func (svc *Service) SearchHistoryByDate(ctx context.Context, date time.Time) ([]models.Earthquake, error) {
	return svc.catalog.SearchByDate(ctx, date)
}

func (svc *Service) SearchPlaces(ctx context.Context, query string) ([]models.Place, error) {
	return svc.geocoder.SearchCities(ctx, query)
}
