package util

import "testing"

func TestExtractIPAddress(t *testing.T) {
	tests := []struct {
		name          string
		remoteAddr    string
		xForwardedFor string
		want          string
	}{
		{"remote with port", "10.0.0.5:53122", "", "10.0.0.5"},
		{"remote without port", "10.0.0.5", "", "10.0.0.5"},
		{"forwarded single", "10.0.0.5:53122", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain", "10.0.0.5:53122", "203.0.113.9, 10.0.0.1", "203.0.113.9"},
		{"forwarded with port", "", "203.0.113.9:8080", "203.0.113.9"},
		{"ipv6 remote", "[::1]:8080", "", "::1"},
		{"nothing known", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractIPAddress(tt.remoteAddr, tt.xForwardedFor); got != tt.want {
				t.Errorf("ExtractIPAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}
