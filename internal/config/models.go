package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/bearanvil/trafficled/internal/fetch"
	"github.com/bearanvil/trafficled/internal/ota"
)

// Config is the root of the configuration file.
type Config struct {
	// LogLevel is one of debug, info, warn, error. Empty keeps logging
	// silent. TRAFFICLED_LOG_LEVEL overrides it.
	LogLevel string       `yaml:"log_level" toml:"log_level"`
	Stream   StreamConfig `yaml:"stream" toml:"stream"`
	OTA      OTAConfig    `yaml:"ota" toml:"ota"`
	Data     DataConfig   `yaml:"data" toml:"data"`
	Server   ServerConfig `yaml:"server" toml:"server"`
}

// StreamConfig sizes the receive window shared by both parsers.
type StreamConfig struct {
	RecvBufSize int `yaml:"recv_buf_size" toml:"recv_buf_size"`
}

// OTAConfig describes where to look for firmware updates and what is installed.
type OTAConfig struct {
	URL       string          `yaml:"url" toml:"url"`
	Retries   int             `yaml:"retries" toml:"retries"`
	Keys      ota.Keys        `yaml:"keys" toml:"keys"`
	Installed ota.VersionInfo `yaml:"installed" toml:"installed"`
}

// DataConfig describes the traffic data server and how speeds are shown.
type DataConfig struct {
	Server        string   `yaml:"server" toml:"server"`
	ServerVersion string   `yaml:"server_version" toml:"server_version"`
	Retries       int      `yaml:"retries" toml:"retries"`
	MaxLEDs       int      `yaml:"max_leds" toml:"max_leds"`
	SlowCutoff    uint32   `yaml:"slow_cutoff" toml:"slow_cutoff"`
	MediumCutoff  uint32   `yaml:"medium_cutoff" toml:"medium_cutoff"`
	Refresh       Duration `yaml:"refresh" toml:"refresh"`
}

// ServerConfig configures trafficled-server.
type ServerConfig struct {
	Addr       string   `yaml:"addr" toml:"addr"`
	Root       string   `yaml:"root" toml:"root"`
	ChunkSize  int      `yaml:"chunk_size" toml:"chunk_size"`
	ChunkDelay Duration `yaml:"chunk_delay" toml:"chunk_delay"`
	Advertise  bool     `yaml:"advertise" toml:"advertise"`
}

// Duration is a time.Duration written as "250ms" in both file formats.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// minWindow is the smallest receive window that holds one speed record.
const minWindow = 8

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Stream: StreamConfig{
			RecvBufSize: ota.DefaultWindowSize,
		},
		OTA: OTAConfig{
			URL:     "http://localhost:8080/firmware/version.json",
			Retries: ota.DefaultAttempts,
			Keys:    ota.DefaultKeys(),
		},
		Data: DataConfig{
			Server:        "http://localhost:8080",
			ServerVersion: fetch.DefaultServerVersion,
			Retries:       fetch.DefaultAttempts,
			MaxLEDs:       fetch.DefaultMaxLEDs,
			SlowCutoff:    50,
			MediumCutoff:  75,
			Refresh:       Duration(30 * time.Second),
		},
		Server: ServerConfig{
			Addr:      ":8080",
			ChunkSize: 64,
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Stream.RecvBufSize < minWindow {
		return fmt.Errorf("stream.recv_buf_size must be at least %d, got %d", minWindow, c.Stream.RecvBufSize)
	}
	if c.OTA.Retries < 0 {
		return fmt.Errorf("ota.retries must not be negative, got %d", c.OTA.Retries)
	}
	if err := c.OTA.Keys.Validate(); err != nil {
		return fmt.Errorf("ota.keys: %w", err)
	}
	if c.Data.Retries < 0 {
		return fmt.Errorf("data.retries must not be negative, got %d", c.Data.Retries)
	}
	if c.Data.MaxLEDs <= 0 {
		return fmt.Errorf("data.max_leds must be positive, got %d", c.Data.MaxLEDs)
	}
	if c.Data.SlowCutoff == 0 || c.Data.SlowCutoff >= c.Data.MediumCutoff {
		return fmt.Errorf("data cutoffs must satisfy 0 < slow < medium, got %d and %d",
			c.Data.SlowCutoff, c.Data.MediumCutoff)
	}
	if c.Data.Refresh < 0 {
		return errors.New("data.refresh must not be negative")
	}
	if c.Server.ChunkSize <= 0 {
		return fmt.Errorf("server.chunk_size must be positive, got %d", c.Server.ChunkSize)
	}
	if c.Server.ChunkDelay < 0 {
		return errors.New("server.chunk_delay must not be negative")
	}
	return nil
}

// Attempts converts a retry count into the attempt count the clients expect.
// Zero retries still makes one attempt.
func Attempts(retries int) int {
	if retries < 1 {
		return 1
	}
	return retries
}
