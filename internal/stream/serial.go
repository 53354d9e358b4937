package stream

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
)

// SerialConfig describes a serial line carrying a document, typically a
// bench device echoing what it would otherwise fetch over HTTP.
type SerialConfig struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
	// MaxIdleReads ends the stream after this many consecutive reads time
	// out with no data. Zero means wait forever.
	MaxIdleReads int
}

// SerialSource reads from a serial port.
type SerialSource struct {
	port    io.ReadCloser
	maxIdle int
	idle    int
}

// OpenSerial opens the configured port.
func OpenSerial(cfg SerialConfig) (*SerialSource, error) {
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Name, err)
	}
	return newSerialSource(port, cfg.MaxIdleReads), nil
}

func newSerialSource(port io.ReadCloser, maxIdle int) *SerialSource {
	return &SerialSource{port: port, maxIdle: maxIdle}
}

// ReadChunk reads whatever the port has buffered. A read timeout shows up
// as zero bytes (or io.EOF on POSIX ports) and counts as idle.
func (s *SerialSource) ReadChunk(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n > 0 {
		s.idle = 0
		if errors.Is(err, io.EOF) {
			err = nil
		}
		return n, err
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}

	s.idle++
	if s.maxIdle > 0 && s.idle >= s.maxIdle {
		return 0, io.EOF
	}
	return 0, ErrTryAgain
}

// Close closes the port.
func (s *SerialSource) Close() error {
	return s.port.Close()
}
