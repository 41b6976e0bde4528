package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"
)

const authorizerPingTimeout = 1500 * time.Millisecond

// PingService verifies TCP reachability of the service behind the URL.
func PingService(serviceURL string, timeout time.Duration) error {
	parsed, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	port := parsed.Port()
	if port == "" {
		if parsed.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	address := net.JoinHostPort(parsed.Hostname(), port)
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return conn.Close()
}

// PingAuthorizer checks that the Authorizer service is reachable.
func PingAuthorizer(authzURL string) error {
	return PingService(authzURL, authorizerPingTimeout)
}
