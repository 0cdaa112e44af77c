package net

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/hashicorp/mdns"

	"LocalSketch/internal/logging"
)

// mdnsLogger adapts l for the mdns package, which logs through the standard
// library logger. Its chatter is debug output for us.
func mdnsLogger(l *slog.Logger) *log.Logger {
	return slog.NewLogLogger(logging.OrDiscard(l).With("component", "mdns").Handler(), slog.LevelDebug)
}

// Advertise announces a host on the local network under service, for
// example "_localsketch._tcp". An empty instance uses the hostname. The
// caller stops advertising with Shutdown on the returned server.
func Advertise(instance, service string, port int, l *slog.Logger) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	svc, err := mdns.NewMDNSService(
		instance,
		service,
		"", // .local
		"", // OS hostname
		port,
		nil, // every interface address
		[]string{"app=LocalSketch", "path=" + Path},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: svc, Logger: mdnsLogger(l)})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	logging.OrDiscard(l).Debug("mDNS service registered", "instance", instance, "service", service, "port", port)
	return server, nil
}

// DefaultBrowseTimeout bounds Browse when ctx has no deadline.
const DefaultBrowseTimeout = 2 * time.Second

// Browse looks for hosts advertising service and returns their host:port
// addresses in the order they answered, without duplicates.
func Browse(ctx context.Context, service string, l *slog.Logger) ([]string, error) {
	timeout := DefaultBrowseTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return nil, ctx.Err()
	}

	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan []string)
	go func() {
		seen := make(map[string]bool)
		var addrs []string
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			addr := net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port))
			if !seen[addr] {
				seen[addr] = true
				addrs = append(addrs, addr)
				logging.OrDiscard(l).Debug("host answered", "name", e.Name, "addr", addr)
			}
		}
		found <- addrs
	}()

	err := mdns.Query(&mdns.QueryParam{
		Service:     service,
		Domain:      "local",
		Timeout:     timeout,
		Entries:     entries,
		DisableIPv6: true,
		Logger:      mdnsLogger(l),
	})
	close(entries)
	addrs := <-found
	if err != nil {
		return addrs, fmt.Errorf("mDNS query for %s failed: %w", service, err)
	}
	return addrs, nil
}
