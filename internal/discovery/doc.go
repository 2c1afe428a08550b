// Package discovery finds automation builder backends on the local network.
//
// Self-hosted and sandbox backends advertise themselves over mDNS as
// "_autobuilder._tcp" services in the "local." domain. Each advertisement
// carries TXT records describing how to reach the API:
//
//	path=/          API root below host:port
//	scheme=http     http or https
//	version=1.2.0   backend version, informational
//
// Scanner browses for these services and converts each entry into a
// Backend whose BaseURL can be passed straight to api.NewClient.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	backends, err := scanner.ScanForBackendsWithContext(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, b := range backends {
//	    fmt.Println(b.Instance, b.BaseURL())
//	}
package discovery
