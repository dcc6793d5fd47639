// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/vorte-dev/vorte/internal/channel/wsgateway"
	"github.com/vorte-dev/vorte/internal/config"
	"github.com/vorte-dev/vorte/internal/lane"
	"github.com/vorte-dev/vorte/internal/media/qr"
	"github.com/vorte-dev/vorte/internal/media/youtube"
	"github.com/vorte-dev/vorte/internal/metrics"
	"github.com/vorte-dev/vorte/internal/reaper"
	"github.com/vorte-dev/vorte/internal/router"
	"github.com/vorte-dev/vorte/internal/server"
	"github.com/vorte-dev/vorte/internal/session"
	"github.com/vorte-dev/vorte/internal/store"
	_ "github.com/vorte-dev/vorte/internal/store/sqlite" // register sqlite backend
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// searchTimeout bounds one YouTube search request.
const searchTimeout = 15 * time.Second

// Bot holds all wired subsystems and manages their lifecycle.
type Bot struct {
	Stats    store.StatsStore
	Sessions *session.MemoryStore
	Lanes    *lane.Pool
	Metrics  *metrics.Metrics
	Gateway  *wsgateway.Gateway
	Router   *router.Router
	Reaper   *reaper.Reaper
	Server   *server.Server
}

// Compile-time interface check.
var _ server.StatusSource = (*Bot)(nil)

// WireBot creates all subsystems and wires them together.
// The dataDir is the root directory for all persistent state.
func WireBot(cfg *config.Config, dataDir string) (*Bot, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "creating data directory: %w", err)
	}

	// 1. Message counters.
	stats, err := store.NewStatsStore(&store.StorageConfig{Backend: cfg.Storage.Backend}, dataDir)
	if err != nil {
		return nil, vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "creating stats store: %w", err)
	}

	// 2. Game sessions and the per-conversation lanes that serialise them.
	sessions := session.NewMemoryStore()
	lanes := lane.NewPool(lane.WithIdleTimeout(cfg.Sessions.TTL))

	// 3. Metrics.
	m := metrics.New()
	m.ObserveActiveSessions(func() float64 {
		n, err := sessions.Count(context.Background())
		if err != nil {
			return 0
		}
		return float64(n)
	})

	// 4. Bridge transport.
	gw := wsgateway.New(wsgateway.Config{
		BotID:          cfg.Bot.ID,
		Token:          cfg.Networking.BridgeToken,
		OriginPatterns: cfg.Networking.CORSOrigins,
		Workers:        cfg.Commands.Workers,
	})

	// 5. Command router.
	var search router.Searcher
	if cfg.Media.YouTubeAPIKey != "" {
		search = youtube.NewClient(&http.Client{Timeout: searchTimeout}, cfg.Media.YouTubeEndpoint, cfg.Media.YouTubeAPIKey)
	}

	owners := make([]router.Owner, len(cfg.Bot.Owners))
	for i, o := range cfg.Bot.Owners {
		owners[i] = router.Owner{Number: o.Number, Label: o.Label}
	}

	r, err := router.New(router.Config{
		BotName:         cfg.Bot.Name,
		Prefix:          cfg.Bot.Prefix,
		Owners:          owners,
		Cooldown:        cfg.Commands.Cooldown,
		BroadcastPacing: cfg.Commands.BroadcastPacing,
	}, router.Deps{
		Transport: gw,
		Sessions:  sessions,
		Lanes:     lanes,
		Stats:     stats,
		QR:        qr.New(cfg.Media.QRSize, cfg.Media.QRMaxChars),
		Search:    search,
		Metrics:   m,
	})
	if err != nil {
		lanes.Close()
		_ = stats.Close()
		return nil, vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "creating router: %w", err)
	}
	gw.SetHandler(r)

	// 6. Session reaper. Evictions run inside the conversation's lane.
	rp := reaper.New(sessions, cfg.Sessions.ReaperInterval, cfg.Sessions.TTL,
		reaper.WithLanes(lanes),
		reaper.WithPruners(lanes, r.Cooldown()),
		reaper.WithEvictHook(func(s *session.Session) {
			m.RecordEviction(string(s.Kind()))
		}),
	)

	// 7. HTTP server.
	srv, err := server.New(server.Config{
		ListenAddr:  cfg.Networking.Listen,
		CORSOrigins: cfg.Networking.CORSOrigins,
		Version:     version,
	})
	if err != nil {
		lanes.Close()
		_ = stats.Close()
		return nil, vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "creating server: %w", err)
	}

	bot := &Bot{
		Stats:    stats,
		Sessions: sessions,
		Lanes:    lanes,
		Metrics:  m,
		Gateway:  gw,
		Router:   r,
		Reaper:   rp,
		Server:   srv,
	}

	svc, err := server.NewServices(bot, m.Handler(), gw)
	if err != nil {
		_ = bot.Close()
		return nil, vorteerr.Errorf(vorteerr.CodeCLISetupFailure, "creating services: %w", err)
	}
	srv.RegisterServices(svc)

	return bot, nil
}

// Run starts the reaper and serves HTTP until ctx is cancelled, then waits
// for in-flight messages to finish.
func (b *Bot) Run(ctx context.Context) error {
	b.Reaper.Start(ctx)
	defer b.Reaper.Stop()

	err := b.Server.Start(ctx)
	b.Gateway.Wait()
	return err
}

// Status implements server.StatusSource.
func (b *Bot) Status(ctx context.Context) (server.Status, error) {
	snap, err := b.Router.Snapshot(ctx)
	if err != nil {
		return server.Status{}, err
	}
	return server.Status{
		BotName:         snap.BotName,
		Uptime:          snap.Uptime,
		ActiveSessions:  snap.ActiveSessions,
		Conversations:   snap.Conversations,
		Messages:        snap.Messages,
		BridgeConnected: b.Gateway.Connected(),
	}, nil
}

// Close releases the lanes and the stats store.
func (b *Bot) Close() error {
	b.Lanes.Close()
	if err := b.Stats.Close(); err != nil {
		slog.Warn("closing stats store failed", "error", err)
		return err
	}
	return nil
}
