package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/metrics"
)

const (
	// RequestIDHeader carries the per-response id.
	RequestIDHeader = "X-Request-ID"

	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Config holds the server configuration
type Config struct {
	Addr       string
	ChunkSize  int
	ChunkDelay time.Duration

	// Advertise registers the server over mDNS as Instance.
	Advertise bool
	Instance  string
	Version   string
}

// Server serves canned data files over HTTP and websocket.
type Server struct {
	config    Config
	endpoints *Endpoints
	metrics   *metrics.Collector
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	listener net.Listener
	http     *http.Server
	mdns     advertiser
	closing  bool
	wg       sync.WaitGroup
}

// New creates a server for endpoints. m may be nil.
func New(config Config, endpoints *Endpoints, m *metrics.Collector) *Server {
	if endpoints == nil {
		endpoints = NewEndpoints()
	}
	return &Server{
		config:    config,
		endpoints: endpoints,
		metrics:   m,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Endpoints returns the server's response table.
func (s *Server) Endpoints() *Endpoints { return s.endpoints }

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.Handle("/ws/", s.track("ws", http.HandlerFunc(s.serveWebSocket)))
	mux.Handle("/", s.track("http", http.HandlerFunc(s.serveHTTP)))
	return mux
}

// Listen binds the configured address without serving.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return ln.Addr(), nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
		s.mu.Lock()
		ln = s.listener
		s.mu.Unlock()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	logging.Info("Starting trafficled data server",
		zap.String("addr", ln.Addr().String()),
		zap.Int("endpoints", len(s.endpoints.Paths())),
		zap.Int("chunk_size", s.config.ChunkSize),
		zap.Duration("chunk_delay", s.config.ChunkDelay),
	)

	if s.config.Advertise {
		port := ln.Addr().(*net.TCPAddr).Port
		adv, err := advertise(s.config.Instance, port, s.config.Version)
		if err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		} else {
			s.mu.Lock()
			s.mdns = adv
			s.mu.Unlock()
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(sctx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops advertising, refuses new requests and waits for streams in
// flight.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, adv := s.http, s.mdns
	s.mdns = nil
	s.closing = true
	s.mu.Unlock()

	if adv != nil {
		adv.Shutdown()
	}

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}

	// Hijacked websocket connections are not tracked by http.Server.
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		logging.Info("All streams closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return err
}

// beginStream registers a websocket stream with Shutdown. It fails once
// shutdown has started.
func (s *Server) beginStream() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) pacer() pacer {
	return pacer{size: s.config.ChunkSize, delay: s.config.ChunkDelay}
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ep, ok := s.endpoints.Get(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", ep.ContentType)
	w.WriteHeader(ep.Status)
	if r.Method == http.MethodHead {
		return
	}

	flusher, _ := w.(http.Flusher)
	_, err := s.pacer().send(r.Context(), ep.Body, func(chunk []byte) error {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		logging.Debug("Response aborted",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, "/ws")
	ep, ok := s.endpoints.Get(p)
	if !ok || ep.Status != http.StatusOK {
		http.NotFound(w, r)
		return
	}

	if !s.beginStream() {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	remote := r.RemoteAddr
	sent, err := s.pacer().send(r.Context(), ep.Body, func(chunk []byte) error {
		logging.LogWebSocketMessage(remote, "sent", websocket.BinaryMessage, chunk)
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.BinaryMessage, chunk)
	})
	if rw, ok := w.(*recorder); ok {
		rw.bytes += sent
	}
	if err != nil {
		logging.Warn("WebSocket stream aborted",
			zap.String("remote_addr", remote),
			zap.String("path", p),
			zap.Error(err),
		)
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// track assigns a request id and records status, size and latency.
func (s *Server) track(transport string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)

		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.statusCode()
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, status, rec.bytes, time.Since(start),
			zap.String("request_id", id),
			zap.String("transport", transport),
		)
		s.metrics.RequestServed(transport, status, rec.bytes)
	})
}

// recorder captures what a handler wrote. Flush and Hijack pass through.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *recorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (r *recorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
