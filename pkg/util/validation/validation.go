package validation

import "net"

// ValidHostPort checks that hostAndPort is a "host:port" address.
func ValidHostPort(hostAndPort string) error {
	_, _, err := net.SplitHostPort(hostAndPort)
	return err
}

// IsLoopback reports whether the host of a "host:port" address
// is localhost or a loopback IP.
func IsLoopback(hostAndPort string) bool {
	host, _, err := net.SplitHostPort(hostAndPort)
	if err != nil {
		return false
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
