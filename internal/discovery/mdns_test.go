package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	entry := func(instance, host string, port int, v4, v6 []net.IP, txt ...string) *zeroconf.ServiceEntry {
		e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
		e.HostName = host
		e.Port = port
		e.AddrIPv4 = v4
		e.AddrIPv6 = v6
		e.Text = txt
		return e
	}

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantURL      string
	}{
		{
			name:         "sandbox with IPv4",
			entry:        entry("autobuilder-sandbox", "devbox.local.", 8000, []net.IP{net.ParseIP("192.168.1.20")}, nil, "path=/", "version=1.0.0"),
			wantInstance: "autobuilder-sandbox",
			wantURL:      "http://192.168.1.20:8000",
		},
		{
			name:         "https with API prefix",
			entry:        entry("office", "api.local.", 443, []net.IP{net.ParseIP("10.0.0.5")}, nil, "scheme=https", "path=v1/"),
			wantInstance: "office",
			wantURL:      "https://10.0.0.5:443/v1",
		},
		{
			name:         "IPv6 only",
			entry:        entry("six", "six.local.", 8080, nil, []net.IP{net.ParseIP("fe80::1")}),
			wantInstance: "six",
			wantURL:      "http://[fe80::1]:8080",
		},
		{
			name:         "missing port uses default",
			entry:        entry("", "noport.local.", 0, []net.IP{net.ParseIP("10.0.0.9")}, nil),
			wantInstance: "noport.local",
			wantURL:      "http://10.0.0.9:8000",
		},
		{
			name:    "no address",
			entry:   entry("ghost", "ghost.local.", 8000, nil, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if backend != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", backend)
				}
				return
			}
			if backend == nil {
				t.Fatal("parseServiceEntry() = nil, want backend")
			}
			if backend.Instance != tt.wantInstance {
				t.Errorf("Instance = %q, want %q", backend.Instance, tt.wantInstance)
			}
			if backend.BaseURL() != tt.wantURL {
				t.Errorf("BaseURL() = %q, want %q", backend.BaseURL(), tt.wantURL)
			}
			if time.Since(backend.DiscoveredAt) > time.Second {
				t.Errorf("DiscoveredAt is not recent: %v", backend.DiscoveredAt)
			}
		})
	}
}

func TestScanner_parseServiceEntry_Metadata(t *testing.T) {
	scanner := NewScanner()

	entry := zeroconf.NewServiceEntry("sandbox", ServiceType, ServiceDomain)
	entry.HostName = "devbox.local."
	entry.Port = 8000
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.Text = []string{"path=/", "version=1.0.0", "flag"}

	backend := scanner.parseServiceEntry(entry)
	if backend == nil {
		t.Fatal("parseServiceEntry() = nil, want backend")
	}

	expected := map[string]string{"path": "/", "version": "1.0.0", "flag": ""}
	if len(backend.Metadata) != len(expected) {
		t.Errorf("Metadata has %d entries, want %d", len(backend.Metadata), len(expected))
	}
	for k, v := range expected {
		if got, ok := backend.Metadata[k]; !ok || got != v {
			t.Errorf("Metadata[%q] = %q, %v; want %q", k, got, ok, v)
		}
	}
	if backend.Version() != "1.0.0" {
		t.Errorf("Version() = %q", backend.Version())
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()
	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

func TestBackend_GetMetadata_NilMap(t *testing.T) {
	b := &Backend{IP: "127.0.0.1", Port: 8000}
	if b.GetMetadata("path") != "" {
		t.Error("nil metadata should yield empty values")
	}
	if b.Version() != "unknown" {
		t.Errorf("Version() = %q", b.Version())
	}
	if b.BaseURL() != "http://127.0.0.1:8000" {
		t.Errorf("BaseURL() = %q", b.BaseURL())
	}
}
