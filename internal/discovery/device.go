package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// DataServer is a trafficled-server instance found on the local network.
type DataServer struct {
	// Instance is the advertised instance name, e.g. "trafficled on bench".
	Instance string

	// Host is the mDNS hostname, e.g. "bench.local."
	Host string

	// IP prefers IPv4 when both families are advertised.
	IP   string
	Port int

	// Path and Version come from TXT records.
	Path    string
	Version string

	DiscoveredAt time.Time
}

func (d *DataServer) String() string {
	s := fmt.Sprintf("%s at %s", d.Instance, net.JoinHostPort(d.IP, strconv.Itoa(d.Port)))
	if d.Version != "" {
		s += " (data " + d.Version + ")"
	}
	return s
}

// BaseURL returns the URL the fetch client should use as its server.
func (d *DataServer) BaseURL() string {
	u := "http://" + net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
	return u + strings.TrimSuffix(d.Path, "/")
}
