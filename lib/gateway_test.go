package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibecoderx/QuakeTrack/badges"
	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/zap"
)

type captureSetter struct {
	mu     sync.Mutex
	counts []int
}

func (s *captureSetter) SetBadgeCount(ctx context.Context, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, count)
	return nil
}

func (s *captureSetter) last() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.counts) == 0 {
		return 0, false
	}
	return s.counts[len(s.counts)-1], true
}

func newTestGateway(cfg *config.Config) (*Gateway, *captureSetter) {
	setter := &captureSetter{}
	registry := badges.Registry{"test": setter}
	return NewGateway(nil, cfg, zap.NewNop(), http.DefaultTransport, registry), setter
}

func alertsBody(features ...models.Feature) string {
	b, _ := json.Marshal(models.AlertsResponse{Alerts: features})
	return string(b)
}

func featureWithTime(id string, millis float64) models.Feature {
	return models.Feature{
		ID:         id,
		Properties: models.FeatureProperties{Time: &millis},
		Geometry:   models.Geometry{Coordinates: []float64{139.65, 35.67, 10}},
	}
}

func TestSyncSubscriptionsConvertsMilesToKilometers(t *testing.T) {
	received := make(chan preferencesPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload preferencesPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		received <- payload
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UpdatePreferencesURL = srv.URL

	gw, _ := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	minMag := 3.0
	cities := models.Cities{
		{ID: uuid.New(), Name: "Denver", Latitude: 39.74, Longitude: -104.99, Radius: 100, Unit: models.Miles},
		{ID: uuid.New(), Name: "Tokyo", Latitude: 35.68, Longitude: 139.65, Radius: 50, Unit: models.Kilometers, MinMagnitude: &minMag},
	}
	gw.SyncSubscriptions(context.Background(), cities)

	payload := <-received
	assert.Equal(t, "token-1", payload.FCMToken)
	require.Len(t, payload.Cities, 2)
	assert.InDelta(t, 160.934, payload.Cities[0].RadiusKm, 0.001)
	assert.Equal(t, 0.0, payload.Cities[0].MinMagnitude)
	assert.Equal(t, 50.0, payload.Cities[1].RadiusKm)
	assert.Equal(t, 3.0, payload.Cities[1].MinMagnitude)
}

func TestSyncSubscriptionsSkipsWithoutToken(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UpdatePreferencesURL = srv.URL

	gw, _ := newTestGateway(cfg)
	gw.SyncSubscriptions(context.Background(), models.Cities{{ID: uuid.New(), Name: "Tokyo"}})

	assert.Zero(t, requests)
}

func TestFetchUnreadAlertsReplacesCacheAndSetsBadge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token-1", r.URL.Query().Get("fcm_token"))
		fmt.Fprint(w, alertsBody(
			featureWithTime("older", 1000),
			featureWithTime("newer", 2000),
		))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UnreadAlertsURL = srv.URL

	gw, setter := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	alerts, err := gw.FetchUnreadAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "newer", alerts[0].ID)
	assert.Equal(t, "older", alerts[1].ID)

	count, ok := setter.last()
	require.True(t, ok)
	assert.Equal(t, 2, count)
}

func TestFetchUnreadAlertsFailureLeavesCacheUnchanged(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, alertsBody(featureWithTime("kept", 1000)))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UnreadAlertsURL = srv.URL

	gw, _ := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	_, err := gw.FetchUnreadAlerts(context.Background())
	require.NoError(t, err)

	_, err = gw.FetchUnreadAlerts(context.Background())
	require.Error(t, err)

	alerts := gw.UnreadAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "kept", alerts[0].ID)
}

// Two overlapping fetches complete out of order: the earlier-issued response
// arrives last and must be discarded rather than overwrite the newer snapshot.
func TestOverlappingFetchesDiscardStaleResponse(t *testing.T) {
	firstRequestLanded := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls int
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()

		if n == 1 {
			close(firstRequestLanded)
			<-releaseFirst
			fmt.Fprint(w, alertsBody(featureWithTime("stale", 1000)))
			return
		}
		fmt.Fprint(w, alertsBody(featureWithTime("fresh", 2000)))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UnreadAlertsURL = srv.URL

	gw, _ := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		gw.FetchUnreadAlerts(context.Background())
	}()

	<-firstRequestLanded

	// Second fetch issues and applies while the first is still in flight.
	_, err := gw.FetchUnreadAlerts(context.Background())
	require.NoError(t, err)

	close(releaseFirst)
	wg.Wait()

	alerts := gw.UnreadAlerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "fresh", alerts[0].ID)
}

func TestClearAllAlertsIsOptimistic(t *testing.T) {
	received := make(chan tokenPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var payload tokenPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			received <- payload
			return
		}
		fmt.Fprint(w, alertsBody(featureWithTime("a", 1000)))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UnreadAlertsURL = srv.URL
	cfg.AlertServer.ClearAlertsURL = srv.URL

	gw, setter := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	_, err := gw.FetchUnreadAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, gw.UnreadAlerts(), 1)

	gw.ClearAllAlerts(context.Background())

	assert.Empty(t, gw.UnreadAlerts())
	count, ok := setter.last()
	require.True(t, ok)
	assert.Zero(t, count)
	assert.Equal(t, "token-1", (<-received).FCMToken)
}

func TestClearAllAlertsLocalEvenWhenServerFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, alertsBody(featureWithTime("a", 1000)))
	}))
	defer srv.Close()

	cfg := &config.Config{}
	cfg.AlertServer.UnreadAlertsURL = srv.URL
	cfg.AlertServer.ClearAlertsURL = srv.URL

	gw, _ := newTestGateway(cfg)
	gw.SetPushToken("token-1")

	_, err := gw.FetchUnreadAlerts(context.Background())
	require.NoError(t, err)

	gw.ClearAllAlerts(context.Background())
	assert.Empty(t, gw.UnreadAlerts())
}
