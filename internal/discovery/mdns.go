package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type trafficled-server registers.
	ServiceType = "_trafficled._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is assumed when an entry carries no port.
	DefaultPort = 8080

	// TXT record keys.
	TXTPath    = "path"
	TXTVersion = "version"
)

// Scanner handles mDNS discovery of data servers.
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration

	browse func(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
		browse:  browseZeroconf,
	}
}

func browseZeroconf(ctx context.Context, entries chan<- *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}
	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// Scan collects every data server that answers before the timeout, sorted
// by instance name.
func (s *Scanner) Scan(ctx context.Context) ([]*DataServer, error) {
	var (
		mu    sync.Mutex
		found = make(map[string]*DataServer)
	)
	err := s.run(ctx, func(d *DataServer) bool {
		mu.Lock()
		found[d.Instance] = d
		mu.Unlock()
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]*DataServer, 0, len(found))
	for _, d := range found {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out, nil
}

// First returns the first data server to answer.
func (s *Scanner) First(ctx context.Context) (*DataServer, error) {
	got := make(chan *DataServer, 1)
	err := s.run(ctx, func(d *DataServer) bool {
		select {
		case got <- d:
		default:
		}
		return false
	})
	if err != nil {
		return nil, err
	}
	select {
	case d := <-got:
		return d, nil
	default:
		return nil, fmt.Errorf("no %s service found within %v", ServiceType, s.Timeout)
	}
}

// run browses until the timeout or until visit returns false.
func (s *Scanner) run(ctx context.Context, visit func(*DataServer) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				d := parseServiceEntry(entry)
				if d != nil && !visit(d) {
					cancel()
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := s.browse(ctx, entries); err != nil {
		return err
	}
	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf entry. It returns nil when the entry
// has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *DataServer {
	if entry == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	d := &DataServer{
		Instance:     entry.Instance,
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         "/",
		DiscoveredAt: time.Now(),
	}
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		switch key {
		case TXTPath:
			if value != "" {
				d.Path = value
			}
		case TXTVersion:
			d.Version = value
		}
	}
	if d.Instance == "" {
		d.Instance = d.Host
	}
	return d
}
