package net

import (
	"log/slog"
	"net"

	"LocalSketch/internal/logging"
)

// routeTarget is any public IPv4 address. Dialing UDP to it sends nothing; it
// only makes the kernel pick the interface a LAN peer would reach us on.
const routeTarget = "8.8.8.8:80"

// OutgoingIP returns the address the host should put in its share link. It
// prefers the interface of the default route, then the first up, non-loopback
// IPv4 interface, and reports 127.0.0.1 as a last resort.
func OutgoingIP(log *slog.Logger) string {
	log = logging.OrDiscard(log).With("component", "net")
	conn, err := net.Dial("udp", routeTarget)
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && addr.IP.To4() != nil {
			return addr.IP.String()
		}
	}
	log.Debug("no default route, scanning interfaces", "err", err)

	if ip, ok := firstLANAddr(log); ok {
		return ip
	}
	log.Warn("no LAN address found, share link only works on this machine")
	return "127.0.0.1"
}

func firstLANAddr(log *slog.Logger) (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn("could not list interfaces", "err", err)
		return "", false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				log.Debug("using interface address", "iface", iface.Name, "ip", ipnet.IP)
				return ipnet.IP.String(), true
			}
		}
	}
	return "", false
}
