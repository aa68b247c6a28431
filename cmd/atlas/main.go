package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gadomski/atlas/internal/cam"
	"github.com/gadomski/atlas/internal/config"
	"github.com/gadomski/atlas/internal/fetch"
	"github.com/gadomski/atlas/internal/heartbeat"
	"github.com/gadomski/atlas/internal/mqtt"
	"github.com/gadomski/atlas/internal/web"
	"github.com/gadomski/atlas/internal/ws"
)

// broadcastInterval is how often the WebSocket hub pushes the latest
// heartbeat to connected clients.
const broadcastInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("atlas starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"addr", cfg.Server.Addr,
		"iridium_dir", cfg.Iridium.Dir,
		"cameras", len(cfg.Cameras),
		"mqtt", cfg.MQTT.Enabled(),
		"fetch", cfg.Fetch.Enabled(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Heartbeat watcher over the local message store.
	watcher, err := heartbeat.NewWatcher(cfg.Iridium.Dir, cfg.Iridium.IMEIs)
	if err != nil {
		slog.Error("failed to start heartbeat watcher", "err", err)
		os.Exit(1)
	}
	go func() {
		if err := watcher.Watch(ctx); err != nil {
			slog.Error("heartbeat watcher stopped", "err", err)
		}
	}()

	// Optional SSH mirror pulling message files off the receiving server.
	if cfg.Fetch.Enabled() {
		mirror := fetch.NewMirror(cfg.Fetch, cfg.Iridium.Dir)
		go mirror.Run(ctx)
	}

	// Optional MQTT publisher for downstream consumers.
	if cfg.MQTT.Enabled() {
		publisher, err := mqtt.NewRealPublisher(cfg.MQTT)
		if err != nil {
			slog.Error("failed to connect to MQTT broker", "err", err)
			os.Exit(1)
		}
		go publishLoop(ctx, watcher, publisher)
	}

	cameras := make([]*cam.Camera, 0, len(cfg.Cameras))
	for _, c := range cfg.Cameras {
		if c.Name != "" {
			cameras = append(cameras, cam.NewNamed(c.Name, c.Dir))
			continue
		}
		camera, err := cam.New(c.Dir)
		if err != nil {
			slog.Error("failed to open camera directory", "dir", c.Dir, "err", err)
			os.Exit(1)
		}
		cameras = append(cameras, camera)
	}

	var imgURL *url.URL
	if cfg.Server.ImgURL != "" {
		imgURL, err = url.Parse(cfg.Server.ImgURL)
		if err != nil {
			slog.Error("invalid img_url", "url", cfg.Server.ImgURL, "err", err)
			os.Exit(1)
		}
	}

	// WebSocket hub — broadcasts the latest heartbeat to UI clients.
	hub := ws.New(watcher, broadcastInterval)
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws/heartbeats", hub)
	mux.Handle("/static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(cfg.Server.ResourceDir))))
	mux.Handle("/", web.New(watcher, cameras, cfg.Server.ActiveCamera, imgURL))

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("atlas shutting down")
	srv.Shutdown(context.Background()) //nolint:errcheck
}

// publishLoop publishes each new heartbeat to the MQTT broker. It polls the
// watcher's latest heartbeat and publishes whenever the start time advances,
// so restarts re-publish the most recent heartbeat as a retained message.
func publishLoop(ctx context.Context, watcher *heartbeat.Watcher, publisher mqtt.Publisher) {
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("failed to close MQTT publisher", "err", err)
		}
	}()

	var last time.Time
	t := time.NewTicker(broadcastInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			latest, ok := watcher.Latest()
			if !ok || !latest.StartTime.After(last) {
				continue
			}
			if err := publisher.Publish(latest); err != nil {
				slog.Error("failed to publish heartbeat", "err", err)
				continue
			}
			last = latest.StartTime
			slog.Info("published heartbeat", "start_time", latest.StartTime)
		}
	}
}
