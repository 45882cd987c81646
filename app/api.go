package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/vibecoderx/QuakeTrack/config"
	"github.com/vibecoderx/QuakeTrack/lib"
	"github.com/vibecoderx/QuakeTrack/lib/models"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// User-facing placeholder messages for the search flow. Failures are never
// surfaced with more detail than this.
const (
	searchFailedMessage  = "Couldn't find anything. Please try again."
	searchEmptyMessage   = "No earthquakes found for your criteria."
	searchInvalidMessage = "Invalid search parameters."
)

func NewAPI(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, svc *lib.Service) *http.Server {
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	srv := &http.Server{Addr: addr, Handler: router(cfg, log, svc)}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go srv.ListenAndServe()
			return nil
		},
		OnStop: srv.Shutdown,
	})

	return srv
}

func router(cfg *config.Config, log *zap.Logger, svc *lib.Service) http.Handler {
	ctrl := &controller{log, svc}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cities", func(r chi.Router) {
			r.Get("/", ctrl.listCities)
			r.Post("/", ctrl.addCity)
			r.Put("/{city_id}", ctrl.updateCity)
			r.Delete("/", ctrl.deleteCities)
		})
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", ctrl.listAlerts)
			r.Delete("/", ctrl.clearAlerts)
		})
		r.Put("/push-token", ctrl.setPushToken)
		r.Route("/search", func(r chi.Router) {
			r.Get("/places", ctrl.searchPlaces)
			r.Get("/history", ctrl.searchHistory)
		})
		r.Get("/earthquakes/{event_id}", ctrl.getEarthquake)
	})

	return r
}

type controller struct {
	log *zap.Logger
	svc *lib.Service
}

func (ctrl *controller) reject(w http.ResponseWriter, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), status)
	} else {
		w.WriteHeader(status)
	}
}

func (ctrl *controller) resolve(w http.ResponseWriter, status int, body any) {
	if b, err := json.Marshal(body); err != nil {
		ctrl.reject(w, http.StatusInternalServerError, err)
		ctrl.log.Sugar().Error("Request failed", "error", err)
		return
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if b != nil {
			w.Write(b)
		}
	}
}

type cityForm struct {
	Name         string   `json:"name"`
	Country      string   `json:"country"`
	State        *string  `json:"state"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	Radius       float64  `json:"radius"`
	Unit         string   `json:"unit"`
	MinMagnitude *float64 `json:"min_magnitude"`
}

func (f cityForm) toCity(id uuid.UUID) (models.City, error) {
	if f.Name == "" {
		return models.City{}, errors.New("Name is required")
	}
	if f.Country == "" {
		return models.City{}, errors.New("Country is required")
	}
	if f.Radius <= 0 {
		return models.City{}, errors.New("Radius must be positive")
	}

	unit := models.DistanceUnit(f.Unit)
	switch unit {
	case "":
		unit = models.Kilometers
	case models.Kilometers, models.Miles:
	default:
		return models.City{}, fmt.Errorf("Unknown unit %q", f.Unit)
	}

	return models.City{
		ID:           id,
		Name:         f.Name,
		Country:      f.Country,
		State:        f.State,
		Latitude:     f.Latitude,
		Longitude:    f.Longitude,
		Radius:       f.Radius,
		Unit:         unit,
		MinMagnitude: f.MinMagnitude,
	}, nil
}

func (ctrl *controller) listCities(w http.ResponseWriter, r *http.Request) {
	cities := ctrl.svc.Cities()
	ctrl.resolve(w, http.StatusOK, FromMany[models.City, CityView](cities))
}

func (ctrl *controller) addCity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var form cityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	city, err := form.toCity(uuid.New())
	if err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	ctrl.svc.AddCity(ctx, city)
	ctrl.resolve(w, http.StatusCreated, CityView{}.From(city))
}

func (ctrl *controller) updateCity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "city_id"))
	if err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	var form cityForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	city, err := form.toCity(id)
	if err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	if !ctrl.svc.UpdateCity(ctx, city) {
		ctrl.reject(w, http.StatusNotFound, errors.New("No city with that id"))
		return
	}
	ctrl.resolve(w, http.StatusOK, CityView{}.From(city))
}

func (ctrl *controller) deleteCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Indices []int `json:"indices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}

	ctrl.svc.DeleteCities(ctx, body.Indices)
	ctrl.resolve(w, http.StatusOK, FromMany[models.City, CityView](ctrl.svc.Cities()))
}

func (ctrl *controller) listAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// A failed fetch leaves the cache as it was; the caller just sees the
	// last applied snapshot.
	alerts, _ := ctrl.svc.FetchUnreadAlerts(ctx)
	ctrl.resolve(w, http.StatusOK, FromMany[models.Earthquake, EarthquakeView](alerts))
}

func (ctrl *controller) clearAlerts(w http.ResponseWriter, r *http.Request) {
	ctrl.svc.ClearAllAlerts(r.Context())
	ctrl.resolve(w, http.StatusOK, map[string]any{"cleared": true})
}

func (ctrl *controller) setPushToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		ctrl.reject(w, http.StatusBadRequest, err)
		return
	}
	if body.Token == "" {
		ctrl.reject(w, http.StatusBadRequest, errors.New("Token is required"))
		return
	}

	ctrl.svc.SetPushToken(r.Context(), body.Token)
	ctrl.resolve(w, http.StatusAccepted, map[string]any{"accepted": true})
}

func (ctrl *controller) searchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Failures surface as an empty candidate list, same as no matches.
	places, _ := ctrl.svc.SearchPlaces(ctx, r.URL.Query().Get("q"))
	ctrl.resolve(w, http.StatusOK, FromMany[models.Place, PlaceView](places))
}

func (ctrl *controller) searchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var quakes []models.Earthquake
	var err error

	switch {
	case r.URL.Query().Get("year") != "":
		var year int
		year, err = strconv.Atoi(r.URL.Query().Get("year"))
		if err != nil {
			ctrl.resolve(w, http.StatusBadRequest, SearchResultsView{Message: searchInvalidMessage})
			return
		}
		quakes, err = ctrl.svc.SearchHistoryByYear(ctx, year)

	case r.URL.Query().Get("date") != "":
		var date time.Time
		date, err = time.Parse("2006-01-02", r.URL.Query().Get("date"))
		if err != nil {
			ctrl.resolve(w, http.StatusBadRequest, SearchResultsView{Message: searchInvalidMessage})
			return
		}
		quakes, err = ctrl.svc.SearchHistoryByDate(ctx, date)

	default:
		ctrl.resolve(w, http.StatusBadRequest, SearchResultsView{Message: searchInvalidMessage})
		return
	}

	view := SearchResultsView{Results: FromMany[models.Earthquake, EarthquakeView](quakes)}
	switch {
	case err != nil:
		// No distinction is surfaced between a failed request and no data.
		view.Message = searchFailedMessage
	case len(quakes) == 0:
		view.Message = searchEmptyMessage
	}
	ctrl.resolve(w, http.StatusOK, view)
}

func (ctrl *controller) getEarthquake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	quake, err := ctrl.svc.FetchEarthquakeByID(ctx, chi.URLParam(r, "event_id"))
	if err != nil || quake == nil {
		ctrl.reject(w, http.StatusNotFound, errors.New("Earthquake not found"))
		return
	}
	ctrl.resolve(w, http.StatusOK, EarthquakeView{}.From(*quake))
}
