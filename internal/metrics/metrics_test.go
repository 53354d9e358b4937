package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_StreamObserver(t *testing.T) {
	c := New()
	obs := c.Stream("version")

	obs.ObserveChunk(10)
	obs.ObserveChunk(5)
	obs.ObserveRetry()

	assert.Equal(t, 15.0, testutil.ToFloat64(c.streamBytes.WithLabelValues("version")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.streamChunks.WithLabelValues("version")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.streamRetries.WithLabelValues("version")))
}

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.RecordsParsed("live north", 12)
	c.ParseFailed("speeds", "malformed input")
	c.RequestServed("http", 200, 128)
	c.RequestServed("http", 200, 64)

	assert.Equal(t, 12.0, testutil.ToFloat64(c.records.WithLabelValues("live north")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.parseFailures.WithLabelValues("speeds", "malformed input")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("http", "200")))
	assert.Equal(t, 192.0, testutil.ToFloat64(c.servedBytes))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.Nil(t, c.Stream("version"))
	c.RecordsParsed("live north", 1)
	c.ParseFailed("speeds", "x")
	c.RequestServed("http", 500, 1)
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.RecordsParsed("typical south", 3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `trafficled_speeds_records_total{dataset="typical south"} 3`))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.ParseFailed("version", "malformed document")

	path := filepath.Join(t.TempDir(), "trafficled.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `trafficled_parse_failures_total{parser="version",type="malformed document"} 1`)
}
