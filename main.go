package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"LocalSketch/internal/board"
	"LocalSketch/internal/config"
	"LocalSketch/internal/export"
	"LocalSketch/internal/logging"
	"LocalSketch/internal/net"
	"LocalSketch/internal/script"
	"LocalSketch/internal/session"
	"LocalSketch/internal/state"
)

const usage = `usage:
  localsketch host   [-config file] [-out board.svg]
  localsketch join   [-config file] <localsketch://ip:port | auto>  < script
  localsketch render [-config file] [-o board.svg] script
  localsketch <localsketch://ip:port>                                < script
`

func main() {
	args := os.Args[1:]
	if len(args) > 0 && strings.HasPrefix(args[0], net.URLScheme) {
		// Share links are opened directly.
		args = append([]string{"join"}, args...)
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "host":
		err = runHost(args[1:])
	case "join":
		err = runJoin(args[1:])
	case "render":
		err = runRender(args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "localsketch:", err)
		os.Exit(1)
	}
}

// setup loads the config file and builds the logger it asks for.
func setup(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	log, err := logging.New(os.Stderr, cfg.Log.Level)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, log, nil
}

func runHost(args []string) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	out := fs.String("out", "", "write the board as SVG here on shutdown")
	fs.Parse(args)

	cfg, log, err := setup(*configPath)
	if err != nil {
		return err
	}
	log.Info("starting as host")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := session.NewHost(log)
	mux := http.NewServeMux()
	mux.Handle(net.Path, host.Handler())
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Session.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()
	log.Info("host server listening", "port", cfg.Session.Port)

	mdnsServer, err := net.Advertise(cfg.Session.Instance, cfg.Session.Service, cfg.Session.Port, log)
	if err != nil {
		// Peers can still join with the share link.
		log.Warn("mDNS advertising disabled", "err", err)
	} else {
		defer mdnsServer.Shutdown()
		log.Info("advertising", "service", cfg.Session.Service)
	}

	link := net.ShareLink(net.OutgoingIP(log), cfg.Session.Port)
	log.Info("share this link to join", "link", link)

	runErr := make(chan error, 1)
	go func() {
		runErr <- host.Run(ctx)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		stop()
		<-runErr
		return fmt.Errorf("host server: %w", err)
	}
	<-runErr

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", "err", err)
	}
	log.Info("host stopped", "strokes", len(host.Strokes()), "revision", host.Revision())

	if *out != "" {
		return writeSVG(*out, cfg, host.Strokes(), log)
	}
	return nil
}

func runJoin(args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("join needs a share link or auto")
	}

	cfg, log, err := setup(*configPath)
	if err != nil {
		return err
	}
	log.Info("starting as client")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr, err := resolve(ctx, fs.Arg(0), cfg.Session.Service, log)
	if err != nil {
		return err
	}

	b := board.New(cfg.Tools, board.WithLogger(log))
	peer, err := session.Join(ctx, addr, b, log)
	if err != nil {
		return err
	}
	defer peer.Close()

	n, err := script.Play(b, os.Stdin)
	log.Info("script played", "commands", n)
	if err != nil {
		return err
	}
	return peer.Err()
}

// resolve turns a share link, or "auto", into the address of a host.
func resolve(ctx context.Context, target, service string, log *slog.Logger) (string, error) {
	if target != "auto" {
		return net.ParseShareLink(target)
	}
	browseCtx, cancel := context.WithTimeout(ctx, net.DefaultBrowseTimeout)
	defer cancel()
	addrs, err := net.Browse(browseCtx, service, log)
	if err != nil {
		return "", err
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("no host found for %s", service)
	}
	log.Info("found host", "addr", addrs[0], "candidates", len(addrs))
	return addrs[0], nil
}

func runRender(args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	out := fs.String("o", "board.svg", "output SVG file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("render needs a script file")
	}

	cfg, log, err := setup(*configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	b := board.New(cfg.Tools, board.WithLogger(log))
	n, err := script.Play(b, f)
	if err != nil {
		return fmt.Errorf("%s: %w", fs.Arg(0), err)
	}
	log.Info("script played", "commands", n, "strokes", len(b.Strokes()))
	return writeSVG(*out, cfg, b.Strokes(), log)
}

func writeSVG(path string, cfg config.Config, strokes []state.Stroke, log *slog.Logger) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteSVG(f, strokes, cfg.Canvas.Width, cfg.Canvas.Height); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info("board exported", "path", path, "strokes", len(strokes))
	return nil
}
