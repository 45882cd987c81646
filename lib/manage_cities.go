package lib

import (
	"context"

	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/zap"
)

type manageCities struct {
	log     *zap.Logger
	store   *Store
	gateway *Gateway
}

// AddCity appends the city and pushes the updated snapshot to the server.
func (svc *manageCities) AddCity(ctx context.Context, city models.City) {
	cities := svc.store.Add(city)
	svc.log.Sugar().Infof("Added city %s (%s)", city.Name, city.ID)
	svc.syncAsync(ctx, cities)
}

// UpdateCity replaces the matching entry; reports false when no entry matched,
// in which case nothing is persisted or synced.
func (svc *manageCities) UpdateCity(ctx context.Context, city models.City) bool {
	cities, ok := svc.store.Update(city)
	if !ok {
		svc.log.Sugar().Infof("No city matches id %s, skipping update", city.ID)
		return false
	}
	svc.syncAsync(ctx, cities)
	return true
}

// DeleteCities removes the entries at the given positions.
func (svc *manageCities) DeleteCities(ctx context.Context, indices []int) {
	cities := svc.store.DeleteAt(indices)
	svc.syncAsync(ctx, cities)
}

// syncAsync fires the snapshot sync without waiting on it. The detached
// context outlives the originating request; completion order against later
// mutations is not guaranteed, the server applies last-write-wins.
func (svc *manageCities) syncAsync(ctx context.Context, cities models.Cities) {
	go svc.gateway.SyncSubscriptions(context.WithoutCancel(ctx), cities)
}
