package sandbox

import (
	"fmt"
	"os"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/agenticauto/autobuilder/internal/discovery"
	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/version"
)

// DefaultInstance returns the mDNS instance name used when none is configured
func DefaultInstance() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "local"
	}
	return "autobuilder-sandbox-" + host
}

// AdvertiseTXT returns the TXT records describing how to reach the API
func AdvertiseTXT(scheme string) []string {
	return []string{
		"path=/",
		"scheme=" + scheme,
		"version=" + version.Version,
	}
}

// Advertise registers the sandbox as a backend on the local network. The
// caller shuts the returned server down when it stops serving.
func Advertise(instance string, port int, scheme string) (*zeroconf.Server, error) {
	if instance == "" {
		instance = DefaultInstance()
	}
	txt := AdvertiseTXT(scheme)

	server, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising sandbox over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
		zap.Strings("txt", txt),
	)
	return server, nil
}
