package discovery

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Backend represents a discovered automation builder backend
type Backend struct {
	// Instance is the advertised service instance name (e.g., "autobuilder-sandbox")
	Instance string

	// Hostname is the mDNS hostname (e.g., "devbox.local.")
	Hostname string

	// IP is the resolved address, IPv4 preferred
	IP string

	// Port is the HTTP port
	Port int

	// Metadata contains the TXT record data (path, scheme, version)
	Metadata map[string]string

	// DiscoveredAt is when the backend was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Instance, b.Hostname, b.BaseURL())
}

// BaseURL returns the API base URL built from address, port and TXT data
func (b *Backend) BaseURL() string {
	scheme := b.GetMetadata("scheme")
	if scheme != "https" {
		scheme = "http"
	}
	path := strings.TrimRight(b.GetMetadata("path"), "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)), path)
}

// Version returns the advertised backend version, or "unknown"
func (b *Backend) Version() string {
	if v := b.GetMetadata("version"); v != "" {
		return v
	}
	return "unknown"
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}
