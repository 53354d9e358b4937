package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearanvil/trafficled/internal/fetch"
	"github.com/bearanvil/trafficled/internal/ota"
	"github.com/bearanvil/trafficled/internal/server"
	"github.com/bearanvil/trafficled/internal/speeds"
	"github.com/bearanvil/trafficled/internal/stream"
)

const demoVersion = "V1_0_5"

func demoEndpoints(t *testing.T) *server.Endpoints {
	t.Helper()
	e := server.NewEndpoints()
	loadDemo(e, demoVersion)
	return e
}

func body(t *testing.T, e *server.Endpoints, path string) server.Endpoint {
	t.Helper()
	ep, ok := e.Get(path)
	require.True(t, ok, "%s not registered", path)
	return ep
}

func TestLoadDemo_VersionDocumentParses(t *testing.T) {
	ep := body(t, demoEndpoints(t), "/firmware/version.json")
	assert.Equal(t, http.StatusOK, ep.Status)

	got, err := ota.ParseVersionDocument(context.Background(), stream.NewReaderSource(bytes.NewReader(ep.Body)))
	require.NoError(t, err)
	assert.Equal(t, ota.VersionInfo{Hardware: 2, Revision: 0, Major: 1, Minor: 7, Patch: 1}, got)
}

func TestLoadDemo_SpeedFilesParse(t *testing.T) {
	e := demoEndpoints(t)
	tests := []struct {
		dataset fetch.Dataset
		want    []speeds.Record
	}{
		{
			fetch.Dataset{Direction: fetch.North, Category: fetch.Live},
			[]speeds.Record{{LED: 1, Speed: 22}, {LED: 2, Speed: 48}, {LED: 3, Speed: 61}, {LED: 4, Speed: 70}, {LED: 5, Speed: speeds.RemoveSpeed}},
		},
		{
			fetch.Dataset{Direction: fetch.North, Category: fetch.Typical},
			[]speeds.Record{{LED: 1, Speed: 60}, {LED: 2, Speed: 60}, {LED: 3, Speed: 65}, {LED: 4, Speed: 70}},
		},
		{
			fetch.Dataset{Direction: fetch.South, Category: fetch.Live},
			[]speeds.Record{{LED: 10, Speed: 55}, {LED: 11, Speed: 30}, {LED: 12, Speed: 68}},
		},
		{
			fetch.Dataset{Direction: fetch.South, Category: fetch.Typical},
			[]speeds.Record{{LED: 10, Speed: 60}, {LED: 11, Speed: 62}, {LED: 12, Speed: 68}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.dataset.String(), func(t *testing.T) {
			ep := body(t, e, fetch.URL("", demoVersion, tt.dataset))
			assert.Equal(t, http.StatusOK, ep.Status)

			got, err := speeds.ReadAll(context.Background(), stream.NewReaderSource(bytes.NewReader(ep.Body)), 16, 100)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadDemo_FailingEndpoints(t *testing.T) {
	e := demoEndpoints(t)
	assert.Equal(t, http.StatusServiceUnavailable, body(t, e, "/fail/503").Status)
	assert.Equal(t, http.StatusNotFound, body(t, e, "/fail/404").Status)
	assert.Len(t, e.Paths(), 7)
}

func TestLoadDemo_UpdateCheckAgainstServer(t *testing.T) {
	srv := server.New(server.Config{ChunkSize: 5}, demoEndpoints(t), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	installed := ota.VersionInfo{Hardware: 2, Revision: 0, Major: 1, Minor: 7, Patch: 0}
	client := ota.NewClient(ts.URL+"/firmware/version.json", installed)
	client.Attempts = 1

	res, err := client.QueryUpdateAvailable(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Available)
	assert.True(t, res.PatchOnly)
	assert.Equal(t, uint32(1), res.Server.Patch)
}
