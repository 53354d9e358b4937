package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/config"
	"github.com/bearanvil/trafficled/internal/discovery"
	"github.com/bearanvil/trafficled/internal/fetch"
	"github.com/bearanvil/trafficled/internal/logging"
	"github.com/bearanvil/trafficled/internal/ota"
	"github.com/bearanvil/trafficled/internal/stream"
	"github.com/bearanvil/trafficled/internal/ui"
	"github.com/bearanvil/trafficled/internal/version"
)

// check-update

var (
	updateURL  string
	serialPort string
	serialBaud int
	serialIdle int
)

var checkUpdateCmd = &cobra.Command{
	Use:   "check-update",
	Short: "Check the update server for newer firmware",
	Long: `Fetch the version document from the update server and compare it with
the installed firmware version from the config file.

With --serial the document is read from a serial line instead, for bench
setups where a device relays what it received.`,
	Example: `  # Check the configured update server
  trafficled check-update

  # Read the version document from a USB serial adapter
  trafficled check-update --serial /dev/ttyUSB0 --baud 115200`,
	RunE: runCheckUpdate,
}

func init() {
	checkUpdateCmd.Flags().StringVar(&updateURL, "url", "", "Version document URL (default from config)")
	checkUpdateCmd.Flags().StringVar(&serialPort, "serial", "", "Read the version document from this serial port")
	checkUpdateCmd.Flags().IntVar(&serialBaud, "baud", 115200, "Serial baud rate")
	checkUpdateCmd.Flags().IntVar(&serialIdle, "serial-idle", 10, "Give up after this many idle serial reads")
}

func runCheckUpdate(cmd *cobra.Command, args []string) error {
	p := ui.NewPrinter(cmd.OutOrStdout())

	var (
		res    ota.Result
		err    error
		source string
	)
	if serialPort != "" {
		source = serialPort
		res, err = checkSerial(cmd.Context())
	} else {
		source = firstNonEmpty(updateURL, cfg.OTA.URL)
		res, err = newOTAClient(cfg, source).QueryUpdateAvailable(cmd.Context())
	}

	if err != nil {
		p.Result(ui.NewFailureResult("Update check failed", err,
			"no update will be installed until a check succeeds",
			"source: "+source,
		))
		return err
	}
	p.Result(updateResult(res, source))
	return nil
}

func newOTAClient(c *config.Config, url string) *ota.Client {
	client := ota.NewClient(url, c.OTA.Installed)
	client.Parser = ota.NewParser(c.OTA.Keys, c.Stream.RecvBufSize)
	client.Attempts = config.Attempts(c.OTA.Retries)
	client.UserAgent = version.UserAgent()
	client.Metrics = collector
	return client
}

func checkSerial(ctx context.Context) (ota.Result, error) {
	src, err := stream.OpenSerial(stream.SerialConfig{
		Name:         serialPort,
		Baud:         serialBaud,
		MaxIdleReads: serialIdle,
	})
	if err != nil {
		return ota.Result{}, err
	}
	defer src.Close()

	parser := ota.NewParser(cfg.OTA.Keys, cfg.Stream.RecvBufSize)
	parser.Observer = collector.Stream("version")
	server, err := parser.Parse(ctx, src)
	if err != nil {
		var oe *ota.Error
		if errors.As(err, &oe) {
			collector.ParseFailed("version", oe.Type.String())
		}
		return ota.Result{}, err
	}
	return ota.Check(server, cfg.OTA.Installed), nil
}

func updateResult(res ota.Result, source string) *ui.Result {
	var r *ui.Result
	switch {
	case res.PatchOnly:
		r = ui.NewSuccessResult("Patch update available")
	case res.Available:
		r = ui.NewSuccessResult("Update available")
	default:
		r = ui.NewWarningResult("Firmware is up to date")
	}
	return r.
		AddDetail("Server", res.Server.String()).
		AddDetail("Installed", res.Installed.String()).
		AddDetail("Update", res.Update.String()).
		AddDetail("Source", source)
}

// speeds

var (
	dataServer string
	direction  string
)

var speedsCmd = &cobra.Command{
	Use:   "speeds",
	Short: "Download speeds once and print the LED boards",
	Example: `  trafficled speeds
  trafficled speeds --server http://traffic.local:8080 --direction north`,
	RunE: runSpeeds,
}

func init() {
	for _, c := range []*cobra.Command{speedsCmd, watchCmd} {
		c.Flags().StringVar(&dataServer, "server", "", "Data server base URL (default from config)")
		c.Flags().StringVar(&direction, "direction", "all", "Direction to show (north, south, all)")
	}
}

func newFetchClient(c *config.Config, server string) *fetch.Client {
	client := fetch.NewClient(server)
	client.ServerVersion = c.Data.ServerVersion
	client.WindowSize = c.Stream.RecvBufSize
	client.MaxLEDs = c.Data.MaxLEDs
	client.Attempts = config.Attempts(c.Data.Retries)
	client.UserAgent = version.UserAgent()
	client.Metrics = collector
	return client
}

func cutoffs(c *config.Config) ui.Cutoffs {
	return ui.Cutoffs{Slow: c.Data.SlowCutoff, Medium: c.Data.MediumCutoff}
}

func directions(name string) ([]fetch.Direction, error) {
	switch strings.ToLower(name) {
	case "", "all":
		return []fetch.Direction{fetch.North, fetch.South}, nil
	case "north", "n":
		return []fetch.Direction{fetch.North}, nil
	case "south", "s":
		return []fetch.Direction{fetch.South}, nil
	default:
		return nil, fmt.Errorf("unknown direction %q (want north, south or all)", name)
	}
}

func runSpeeds(cmd *cobra.Command, args []string) error {
	dirs, err := directions(direction)
	if err != nil {
		return err
	}
	server := firstNonEmpty(dataServer, cfg.Data.Server)
	p := ui.NewPrinter(cmd.OutOrStdout())

	snap, err := newFetchClient(cfg, server).FetchAll(cmd.Context())
	if err != nil {
		p.Result(ui.NewFailureResult("Speed download failed", err, "server: "+server))
		return err
	}

	p.Header(ui.NewHeader("Traffic speeds", "trafficled speeds",
		ui.Detail{Key: "Server", Value: server},
		ui.Detail{Key: "Data version", Value: cfg.Data.ServerVersion},
	))
	for _, dir := range dirs {
		live, typical := snap.Pair(dir)
		p.Board(&ui.Board{Title: dir.String(), Live: live, Typical: typical, Cutoffs: cutoffs(cfg)})
	}
	return nil
}

// watch

var (
	refresh     time.Duration
	metricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the LED boards and refresh them periodically",
	Example: `  trafficled watch --interval 10s

  # Expose fetch and parse counters while watching
  trafficled watch --metrics-addr localhost:9108`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if metricsAddr != "" {
			_, stop, err := serveMetrics(metricsAddr)
			if err != nil {
				return err
			}
			defer stop()
		}

		server := firstNonEmpty(dataServer, cfg.Data.Server)
		interval := refresh
		if interval == 0 {
			interval = cfg.Data.Refresh.Std()
		}
		client := newFetchClient(cfg, server)
		m := ui.NewWatchModel(cmd.Context(), client.FetchAll, server, interval, cutoffs(cfg))
		return ui.RunWatch(m)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&refresh, "interval", 0, "Refresh interval (default from config)")
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")
}

// serveMetrics exposes the collector at /metrics on addr until stop is called.
func serveMetrics(addr string) (bound net.Addr, stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn("Metrics server stopped", zap.Error(err))
		}
	}()
	logging.Info("Serving metrics", zap.String("addr", ln.Addr().String()))

	return ln.Addr(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// discover

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find data servers advertised over mDNS",
	RunE: func(cmd *cobra.Command, args []string) error {
		scanner := discovery.NewScanner()
		scanner.Timeout = discoverTimeout

		servers, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}

		p := ui.NewPrinter(cmd.OutOrStdout())
		if len(servers) == 0 {
			p.Result(ui.NewWarningResult("No data servers found").
				AddDetail("Service", discovery.ServiceType).
				AddDetail("Waited", discoverTimeout.String()))
			return nil
		}
		r := ui.NewSuccessResult(fmt.Sprintf("Found %d data server(s)", len(servers)))
		for _, s := range servers {
			r.AddDetail(s.Instance, s.BaseURL())
		}
		p.Result(r)
		return nil
	},
}

func init() {
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", discovery.DefaultScanTimeout, "How long to listen for answers")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
