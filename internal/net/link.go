package net

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// URLScheme prefixes the links a host hands out to its peers.
const URLScheme = "localsketch://"

// ShareLink returns the link peers use to join a host at ip:port.
func ShareLink(ip string, port int) string {
	return URLScheme + net.JoinHostPort(ip, strconv.Itoa(port))
}

// ParseShareLink returns the host:port address inside a share link. A bare
// host:port is accepted as well.
func ParseShareLink(link string) (string, error) {
	addr := strings.TrimSuffix(strings.TrimPrefix(link, URLScheme), "/")
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("bad share link %q: %w", link, err)
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return "", fmt.Errorf("bad port in share link %q: %w", link, err)
	}
	return net.JoinHostPort(host, port), nil
}
