// Trafficled-server is a mock traffic data server.
//
// It serves version documents and speed files from a directory, in small
// delayed chunks over HTTP or websocket, so the trafficled client can be
// exercised against slow and fragmented responses without real hardware.
//
// Usage:
//
//	trafficled-server serve [flags]
//
// See 'trafficled-server serve --help' for available options.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/config"
	"github.com/bearanvil/trafficled/internal/fetch"
	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/metrics"
	"github.com/bearanvil/trafficled/internal/server"
	"github.com/bearanvil/trafficled/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trafficled-server",
	Short: "Mock traffic data server",
	Long: `A mock data server for the trafficled client.

Files under --root are served at their relative paths. Responses are written
in --chunk-size pieces with --chunk-delay between them to reproduce the short
reads of a slow network link.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd, versionCmd)
}

var (
	cfgPath    string
	addr       string
	root       string
	chunkSize  int
	chunkDelay time.Duration
	advertise  bool
	instance   string
	logLevel   string
	demo       bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the data server",
	Example: `  # Serve ./data on :8080, 16 bytes every 50ms
  trafficled-server serve --root ./data --chunk-size 16 --chunk-delay 50ms

  # Serve built-in sample files and advertise over mDNS
  trafficled-server serve --demo --advertise`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&cfgPath, "config", "", "Config file (.yaml or .toml); flags override its server section")
	f.StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	f.StringVar(&root, "root", "", "Directory of files to serve")
	f.IntVar(&chunkSize, "chunk-size", 0, "Bytes per write (default from config)")
	f.DurationVar(&chunkDelay, "chunk-delay", 0, "Delay between writes")
	f.BoolVar(&advertise, "advertise", false, "Advertise over mDNS as _trafficled._tcp")
	f.StringVar(&instance, "instance", "", "mDNS instance name (default from hostname)")
	f.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	f.BoolVar(&demo, "demo", false, "Serve built-in sample files in addition to --root")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Sync()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	sc := cfg.Server
	f := cmd.Flags()
	if f.Changed("addr") {
		sc.Addr = addr
	}
	if f.Changed("root") {
		sc.Root = root
	}
	if f.Changed("chunk-size") {
		sc.ChunkSize = chunkSize
	}
	if f.Changed("chunk-delay") {
		sc.ChunkDelay = config.Duration(chunkDelay)
	}
	if f.Changed("advertise") {
		sc.Advertise = advertise
	}
	if sc.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", sc.ChunkSize)
	}

	endpoints := server.NewEndpoints()
	if demo {
		loadDemo(endpoints, cfg.Data.ServerVersion)
	}
	if sc.Root != "" {
		n, err := endpoints.LoadDir(sc.Root)
		if err != nil {
			return err
		}
		logging.Info("Loaded data files", zap.String("root", sc.Root), zap.Int("files", n))
	}
	if len(endpoints.Paths()) == 0 {
		return fmt.Errorf("nothing to serve: pass --root or --demo")
	}

	srv := server.New(server.Config{
		Addr:       sc.Addr,
		ChunkSize:  sc.ChunkSize,
		ChunkDelay: sc.ChunkDelay.Std(),
		Advertise:  sc.Advertise,
		Instance:   instance,
		Version:    cfg.Data.ServerVersion,
	}, endpoints, metrics.New())
	return srv.Start(cmd.Context())
}

// loadDemo registers a version document, four small speed files and two
// failing endpoints for exercising client retries.
func loadDemo(e *server.Endpoints, dataVersion string) {
	e.Set("/firmware/version.json", http.StatusOK, []byte(`{
  # published by the demo server
  "hardware_version": 2,
  "hardware_revision": 0,
  "firmware_major_version": 1,
  "firmware_minor_version": 7,
  "firmware_patch_version": 1
}
`))
	files := map[fetch.Dataset]string{
		{Direction: fetch.North, Category: fetch.Live}:    "1,22\n2,48\n3,61\n4,70\n5,-1\n",
		{Direction: fetch.North, Category: fetch.Typical}: "1,60\n2,60\n3,65\n4,70\n",
		{Direction: fetch.South, Category: fetch.Live}:    "10,55\r\n11,30\r\n12,68",
		{Direction: fetch.South, Category: fetch.Typical}: "10,60\r\n11,62\r\n12,68\r\n",
	}
	for d, body := range files {
		e.Set(fetch.URL("", dataVersion, d), http.StatusOK, []byte(body))
	}
	e.Set("/fail/503", http.StatusServiceUnavailable, []byte("try later\n"))
	e.Set("/fail/404", http.StatusNotFound, []byte("gone\n"))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trafficled-server %s\n", version.Full())
	},
}
