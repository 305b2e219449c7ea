package util

import (
	"net"
	"strings"
)

// ExtractIPAddress returns the client address: the first X-Forwarded-For hop
// when the request came through a proxy, RemoteAddr otherwise. Ports are dropped.
func ExtractIPAddress(remoteAddr string, xForwardedFor string) string {
	addr := remoteAddr
	if xForwardedFor != "" {
		first, _, _ := strings.Cut(xForwardedFor, ",")
		addr = strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
