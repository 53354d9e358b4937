package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/bearanvil/trafficled/internal/ota"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if want := filepath.Join(base, "trafficled"); dir != want {
		t.Errorf("GetConfigDir() = %v, want %v", dir, want)
	}

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", path)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"config.yaml", FormatYAML},
		{"config.yml", FormatYAML},
		{"/etc/trafficled.toml", FormatTOML},
		{"CONFIG.TOML", FormatTOML},
		{"noext", FormatYAML},
	}
	for _, tt := range tests {
		if got := FormatFor(tt.path); got != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if cfg.Stream.RecvBufSize != 128 {
		t.Errorf("RecvBufSize = %d, want 128", cfg.Stream.RecvBufSize)
	}
	if cfg.OTA.Retries != 5 || cfg.Data.Retries != 5 {
		t.Errorf("retries = %d/%d, want 5/5", cfg.OTA.Retries, cfg.Data.Retries)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Data.Server = "http://traffic.local:9000"
			cfg.Data.Refresh = Duration(90 * time.Second)
			cfg.Server.ChunkDelay = Duration(250 * time.Millisecond)
			cfg.OTA.Installed = ota.VersionInfo{Hardware: 2, Revision: 0, Major: 1, Minor: 6, Patch: 3}
			cfg.OTA.Keys.Patch = "patch"

			require.NoError(t, cfg.Save(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
				t.Errorf("mode = %v, want 0600", info.Mode().Perm())
			}
			_, err = os.Stat(path + ".tmp")
			require.True(t, os.IsNotExist(err), "temporary file left behind")

			got, err := Load(path)
			require.NoError(t, err)
			if diff := cmp.Diff(cfg, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("data:\n  server: http://a:1\n  refresh: 5s\n"), 0600))
	cfg, err := Load(yamlPath)
	require.NoError(t, err)
	if cfg.Data.Server != "http://a:1" || cfg.Data.Refresh.Std() != 5*time.Second {
		t.Errorf("yaml values not applied: %+v", cfg.Data)
	}
	if cfg.Data.MaxLEDs != Default().Data.MaxLEDs {
		t.Errorf("MaxLEDs = %d, want default", cfg.Data.MaxLEDs)
	}

	tomlPath := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("[server]\naddr = \":9999\"\nchunk_delay = \"10ms\"\n"), 0600))
	cfg, err = Load(tomlPath)
	require.NoError(t, err)
	if cfg.Server.Addr != ":9999" || cfg.Server.ChunkDelay.Std() != 10*time.Millisecond {
		t.Errorf("toml values not applied: %+v", cfg.Server)
	}
	if cfg.Server.ChunkSize != Default().Server.ChunkSize {
		t.Errorf("ChunkSize = %d, want default", cfg.Server.ChunkSize)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stream:\n  recv_buf_size: 4\n"), 0600))
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "recv_buf_size") {
		t.Fatalf("Load() error = %v, want recv_buf_size complaint", err)
	}

	require.NoError(t, os.WriteFile(path, []byte("data: [\n"), 0600))
	if _, err := Load(path); err == nil {
		t.Fatal("Load() of broken yaml succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"window too small", func(c *Config) { c.Stream.RecvBufSize = 7 }, "recv_buf_size"},
		{"negative ota retries", func(c *Config) { c.OTA.Retries = -1 }, "ota.retries"},
		{"empty key", func(c *Config) { c.OTA.Keys.Major = "" }, "ota.keys"},
		{"duplicate key", func(c *Config) { c.OTA.Keys.Minor = c.OTA.Keys.Major }, "ota.keys"},
		{"no leds", func(c *Config) { c.Data.MaxLEDs = 0 }, "max_leds"},
		{"cutoffs reversed", func(c *Config) { c.Data.SlowCutoff = 80 }, "cutoffs"},
		{"zero slow cutoff", func(c *Config) { c.Data.SlowCutoff = 0 }, "cutoffs"},
		{"zero chunk", func(c *Config) { c.Server.ChunkSize = 0 }, "chunk_size"},
		{"negative delay", func(c *Config) { c.Server.ChunkDelay = Duration(-time.Second) }, "chunk_delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestAttempts(t *testing.T) {
	for retries, want := range map[int]int{-3: 1, 0: 1, 1: 1, 5: 5} {
		if got := Attempts(retries); got != want {
			t.Errorf("Attempts(%d) = %d, want %d", retries, got, want)
		}
	}
}
