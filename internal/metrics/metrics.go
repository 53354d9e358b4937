// Package metrics exposes Prometheus counters for streaming parses, speed
// fetches and the data server.
//
// A nil *Collector is valid and records nothing, so callers can leave
// metrics unconfigured.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bearanvil/trafficled/internal/stream"
)

const namespace = "trafficled"

// Collector owns a private registry and the trafficled metric families.
type Collector struct {
	registry *prometheus.Registry

	streamBytes   *prometheus.CounterVec
	streamChunks  *prometheus.CounterVec
	streamRetries *prometheus.CounterVec
	records       *prometheus.CounterVec
	parseFailures *prometheus.CounterVec
	requests      *prometheus.CounterVec
	servedBytes   prometheus.Counter
}

// New creates a Collector with Go runtime and process metrics included.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		streamBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Bytes pulled from byte sources by streaming parsers.",
		}, []string{"parser"}),
		streamChunks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "chunks_total",
			Help:      "Non-empty chunks stored into ring buffers.",
		}, []string{"parser"}),
		streamRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "retries_total",
			Help:      "Reads that returned no data and were retried.",
		}, []string{"parser"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "speeds",
			Name:      "records_total",
			Help:      "Speed records decoded, by dataset.",
		}, []string{"dataset"}),
		parseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Rejected documents and speed files, by parser and error type.",
		}, []string{"parser", "type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Requests served by the data server.",
		}, []string{"transport", "code"}),
		servedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "bytes_total",
			Help:      "Body bytes written by the data server.",
		}),
	}

	c.registry.MustRegister(
		c.streamBytes, c.streamChunks, c.streamRetries,
		c.records, c.parseFailures, c.requests, c.servedBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the registry to path in the text exposition format,
// for the node_exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

// Stream returns a stream.Observer counting refills for the named parser.
func (c *Collector) Stream(parser string) stream.Observer {
	if c == nil {
		return nil
	}
	return &streamObserver{
		bytes:   c.streamBytes.WithLabelValues(parser),
		chunks:  c.streamChunks.WithLabelValues(parser),
		retries: c.streamRetries.WithLabelValues(parser),
	}
}

// RecordsParsed counts n decoded records for dataset.
func (c *Collector) RecordsParsed(dataset string, n int) {
	if c == nil {
		return
	}
	c.records.WithLabelValues(dataset).Add(float64(n))
}

// ParseFailed counts one rejected document.
func (c *Collector) ParseFailed(parser, errType string) {
	if c == nil {
		return
	}
	c.parseFailures.WithLabelValues(parser, errType).Inc()
}

// RequestServed counts one data server response.
func (c *Collector) RequestServed(transport string, code int, bytes int64) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(transport, strconv.Itoa(code)).Inc()
	c.servedBytes.Add(float64(bytes))
}

type streamObserver struct {
	bytes, chunks, retries prometheus.Counter
}

func (o *streamObserver) ObserveChunk(n int) {
	o.bytes.Add(float64(n))
	o.chunks.Inc()
}

func (o *streamObserver) ObserveRetry() {
	o.retries.Inc()
}
