package fpl_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fpl-data-service/internal/fpl"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestFetchBootstrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bootstrap-static/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"events":[],"teams":[{"id":1,"name":"Arsenal","short_name":"ARS"}],"elements":[]}`))
	}))
	defer server.Close()

	client := fpl.NewClient(server.URL, 5*time.Second, testLogger())

	raw, err := client.FetchBootstrap(context.Background())
	require.NoError(t, err)

	boot, err := fpl.ParseBootstrap(raw)
	require.NoError(t, err)
	require.Len(t, boot.Teams, 1)
	assert.Equal(t, "ARS", boot.Teams[0].ShortName)
}

func TestFetchFixtures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"event":2,"team_h":1,"team_a":2,"team_h_difficulty":4,"team_a_difficulty":3,"finished":false}]`))
	}))
	defer server.Close()

	client := fpl.NewClient(server.URL, 5*time.Second, testLogger())

	raw, err := client.FetchFixtures(context.Background())
	require.NoError(t, err)

	fixtures, err := fpl.ParseFixtures(raw)
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	require.NotNil(t, fixtures[0].Event)
	assert.Equal(t, 2, *fixtures[0].Event)
	assert.Equal(t, 4, fixtures[0].TeamHDifficulty)
}

func TestFetchFailsOnNonSuccessStatus(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusNotFound, http.StatusTooManyRequests} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		client := fpl.NewClient(server.URL, 5*time.Second, testLogger())
		_, err := client.FetchBootstrap(context.Background())
		assert.Error(t, err, "status %d", status)

		server.Close()
	}
}

func TestFetchFailsOnInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := fpl.NewClient(server.URL, 5*time.Second, testLogger())
	_, err := client.FetchBootstrap(context.Background())
	assert.Error(t, err)
}

func TestFetchRespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := fpl.NewClient(server.URL, 5*time.Second, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchBootstrap(ctx)
	assert.Error(t, err)
}
