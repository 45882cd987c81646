package lib

import (
	"context"
	"net/http"
	"sync"

	"github.com/carlmjohnson/requests"
	"github.com/vibecoderx/QuakeTrack/badges"
	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Gateway talks to the companion alerting server. Every call is best-effort:
// nothing is retried or queued, and each sync transmits the full subscription
// snapshot so the server can apply last-write-wins.
//
// It also owns the unread-alert cache, which is derived entirely from server
// responses and replaced wholesale on every successful fetch.
type Gateway struct {
	cfg       *config.Config
	log       *zap.Logger
	transport http.RoundTripper
	badges    badges.Registry

	mu          sync.Mutex
	token       string
	alerts      []models.Earthquake
	lastIssued  uint64
	lastApplied uint64
}

func NewGateway(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, transport http.RoundTripper, badges badges.Registry) *Gateway {
	return &Gateway{cfg: cfg, log: log, transport: transport, badges: badges}
}

// SetPushToken records the platform-issued push token. It lives in memory
// only; the platform re-delivers it on every cold start.
func (g *Gateway) SetPushToken(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.token = token
}

func (g *Gateway) PushToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// UnreadAlerts returns the last applied alert snapshot, newest first.
func (g *Gateway) UnreadAlerts() []models.Earthquake {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Earthquake{}, g.alerts...)
}

type preferencesPayload struct {
	FCMToken string        `json:"fcm_token"`
	Cities   []cityPayload `json:"cities"`
}

type cityPayload struct {
	ID           string  `json:"id"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusKm     float64 `json:"radius_km"`
	MinMagnitude float64 `json:"min_magnitude"`
}

type tokenPayload struct {
	FCMToken string `json:"fcm_token"`
}

// SyncSubscriptions pushes the full city snapshot plus the push token to the
// server. Radius values are converted to kilometers here; the server contract
// is kilometers-only. Failures are logged and otherwise unobservable.
func (g *Gateway) SyncSubscriptions(ctx context.Context, cities models.Cities) {
	token := g.PushToken()
	if token == "" {
		g.log.Sugar().Info("Skipping preference sync: push token is missing")
		return
	}

	payload := preferencesPayload{
		FCMToken: token,
		Cities:   make([]cityPayload, len(cities)),
	}
	for i, city := range cities {
		payload.Cities[i] = cityPayload{
			ID:           city.ID.String(),
			Latitude:     city.Latitude,
			Longitude:    city.Longitude,
			RadiusKm:     city.RadiusKm(),
			MinMagnitude: city.MinMagnitudeOrDefault(),
		}
	}

	err := requests.URL(g.cfg.AlertServer.UpdatePreferencesURL).
		Transport(g.transport).
		BodyJSON(&payload).
		Fetch(ctx)
	if err != nil {
		g.log.Sugar().Infow("Preference sync failed", "err", err)
		return
	}
	g.log.Sugar().Infof("Synced %d cities to server", len(cities))
}

// FetchUnreadAlerts pulls the server's unread list for this token and replaces
// the local cache with it, sorted newest-first, then reports the count to the
// badge registry. On any failure the cache is left as it was.
//
// Overlapping fetches race on completion order; each call takes a sequence
// number, and a response is only applied if no later-issued response has been
// applied already.
func (g *Gateway) FetchUnreadAlerts(ctx context.Context) ([]models.Earthquake, error) {
	token := g.PushToken()
	if token == "" {
		g.log.Sugar().Info("Cannot fetch alerts: push token is missing")
		return g.UnreadAlerts(), nil
	}

	g.mu.Lock()
	g.lastIssued++
	seq := g.lastIssued
	g.mu.Unlock()

	var response models.AlertsResponse
	err := requests.URL(g.cfg.AlertServer.UnreadAlertsURL).
		Transport(g.transport).
		Param("fcm_token", token).
		ToJSON(&response).
		Fetch(ctx)
	if err != nil {
		g.log.Sugar().Infow("Failed to fetch unread alerts", "err", err)
		return g.UnreadAlerts(), err
	}

	quakes := models.EarthquakesFromFeatures(response.Alerts)
	models.SortTimeDescending(quakes)

	g.mu.Lock()
	if seq < g.lastApplied {
		g.mu.Unlock()
		g.log.Sugar().Infof("Discarding stale alert response (seq %d < %d)", seq, g.lastApplied)
		return g.UnreadAlerts(), nil
	}
	g.lastApplied = seq
	g.alerts = quakes
	count := len(g.alerts)
	g.mu.Unlock()

	g.setBadges(ctx, count)
	g.log.Sugar().Infof("Fetched %d unread alerts", count)
	return append([]models.Earthquake{}, quakes...), nil
}

// ClearAllAlerts empties the cache and zeroes the badge immediately, then asks
// the server to clear its side. If the POST is lost, local and server state
// diverge until the next fetch overwrites the cache; that window is accepted.
func (g *Gateway) ClearAllAlerts(ctx context.Context) {
	g.mu.Lock()
	g.alerts = nil
	g.lastApplied = g.lastIssued
	g.mu.Unlock()

	g.setBadges(ctx, 0)

	token := g.PushToken()
	if token == "" {
		return
	}

	err := requests.URL(g.cfg.AlertServer.ClearAlertsURL).
		Transport(g.transport).
		BodyJSON(&tokenPayload{FCMToken: token}).
		Fetch(ctx)
	if err != nil {
		g.log.Sugar().Infow("Failed to clear alerts on server", "err", err)
	}
}

func (g *Gateway) setBadges(ctx context.Context, count int) {
	for platform, setter := range g.badges {
		if err := setter.SetBadgeCount(ctx, count); err != nil {
			g.log.Sugar().Infow("Failed to set badge count", "platform", platform, "err", err)
		}
	}
}
