package server

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/bearanvil/trafficled/internal/discovery"
	"github.com/bearanvil/trafficled/internal/logging"
)

type advertiser interface {
	Shutdown()
}

// TXTRecords returns the TXT entries published with the service.
func TXTRecords(version string) []string {
	txt := []string{discovery.TXTPath + "=/"}
	if version != "" {
		txt = append(txt, discovery.TXTVersion+"="+version)
	}
	return txt
}

var register = func(instance, service, domain string, port int, txt []string) (advertiser, error) {
	srv, err := zeroconf.Register(instance, service, domain, port, txt, nil)
	if err != nil {
		return nil, err
	}
	return srv, nil
}

func advertise(instance string, port int, version string) (advertiser, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "trafficled"
		}
		instance = "trafficled on " + host
	}
	adv, err := register(instance, discovery.ServiceType, discovery.ServiceDomain, port, TXTRecords(version))
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", discovery.ServiceType, err)
	}
	logging.Info("Advertising data server over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return adv, nil
}
