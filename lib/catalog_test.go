package lib

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vibecoderx/QuakeTrack/config"
	"go.uber.org/zap"
)

func newTestCatalog(url string) *Catalog {
	cfg := &config.Config{}
	cfg.Catalog.QueryURL = url
	return NewCatalog(nil, cfg, zap.NewNop(), http.DefaultTransport)
}

func TestSearchByYearRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "geojson", q.Get("format"))
		assert.Equal(t, "2011-01-01", q.Get("starttime"))
		assert.Equal(t, "2011-12-31", q.Get("endtime"))
		assert.Equal(t, "4.0", q.Get("minmagnitude"))
		assert.Equal(t, "magnitude", q.Get("orderby"))
		assert.Equal(t, "20", q.Get("limit"))

		fmt.Fprint(w, `{"features": [{"id": "official20110311", "properties": {"mag": 9.1}, "geometry": {"coordinates": [142.373, 38.297, 29]}}]}`)
	}))
	defer srv.Close()

	quakes, err := newTestCatalog(srv.URL).SearchByYear(context.Background(), 2011)
	require.NoError(t, err)
	require.Len(t, quakes, 1)
	assert.Equal(t, "official20110311", quakes[0].ID)
	require.NotNil(t, quakes[0].Magnitude)
	assert.Equal(t, 9.1, *quakes[0].Magnitude)
}

func TestSearchByDateSpansOneDay(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2011-03-11", q.Get("starttime"))
		assert.Equal(t, "2011-03-12", q.Get("endtime"))
		assert.Equal(t, "magnitude", q.Get("orderby"))
		assert.Empty(t, q.Get("minmagnitude"))

		fmt.Fprint(w, `{"features": []}`)
	}))
	defer srv.Close()

	date := time.Date(2011, 3, 11, 0, 0, 0, 0, time.UTC)
	quakes, err := newTestCatalog(srv.URL).SearchByDate(context.Background(), date)
	require.NoError(t, err)
	assert.Empty(t, quakes)
}

func TestEventByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us7000abcd", r.URL.Query().Get("eventid"))
		fmt.Fprint(w, `{"id": "us7000abcd", "properties": {"mag": 5.5, "alert": "orange", "tsunami": 0}, "geometry": {"coordinates": [121.4, 23.6, 10]}}`)
	}))
	defer srv.Close()

	quake, err := newTestCatalog(srv.URL).EventByID(context.Background(), "us7000abcd")
	require.NoError(t, err)
	require.NotNil(t, quake)
	assert.Equal(t, "us7000abcd", quake.ID)
	assert.Equal(t, 23.6, quake.Coordinate.Latitude)
}

func TestEventByIDAbsentOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	quake, err := newTestCatalog(srv.URL).EventByID(context.Background(), "nope")
	assert.Error(t, err)
	assert.Nil(t, quake)
}
