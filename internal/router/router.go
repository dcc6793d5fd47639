// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package router turns inbound chat messages into command invocations. It
// applies the per-sender cooldown, authorizes the sender, runs the command
// (inside the conversation's lane for game commands) and maps failures onto
// user-facing replies.
package router

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/game/content"
	"github.com/vorte-dev/vorte/internal/game/hangman"
	"github.com/vorte-dev/vorte/internal/game/quiz"
	"github.com/vorte-dev/vorte/internal/game/tictactoe"
	"github.com/vorte-dev/vorte/internal/lane"
	"github.com/vorte-dev/vorte/internal/media/qr"
	"github.com/vorte-dev/vorte/internal/media/youtube"
	"github.com/vorte-dev/vorte/internal/metrics"
	"github.com/vorte-dev/vorte/internal/session"
	"github.com/vorte-dev/vorte/internal/store"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const (
	DefaultPrefix  = "."
	DefaultBotName = "VORTE PRO"

	// DefaultBroadcastLimit caps how many conversations one broadcast reaches.
	DefaultBroadcastLimit = 50
	// DefaultBroadcastPacing is the pause between broadcast sends.
	DefaultBroadcastPacing = 100 * time.Millisecond

	searchResults  = 3
	genericFailure = "⚠️ An error occurred while processing your command."
)

// Config holds the router settings.
type Config struct {
	BotName         string
	Prefix          string
	Owners          []Owner
	Cooldown        time.Duration
	BroadcastLimit  int
	BroadcastPacing time.Duration
}

func (c *Config) applyDefaults() {
	if c.BotName == "" {
		c.BotName = DefaultBotName
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.BroadcastLimit <= 0 {
		c.BroadcastLimit = DefaultBroadcastLimit
	}
	if c.BroadcastPacing < 0 {
		c.BroadcastPacing = 0
	}
}

// Searcher finds videos for the song and yt commands.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]youtube.Video, error)
}

// Deps are the router's collaborators. Only Transport is required.
type Deps struct {
	Transport channel.Transport
	// Actions defaults to Transport when it implements channel.Actions.
	Actions  channel.Actions
	Sessions session.Store
	Lanes    *lane.Pool
	Stats    store.StatsStore
	Bank     *content.Bank
	Picker   content.Picker
	QR       *qr.Generator
	Search   Searcher
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Router dispatches inbound messages to registered commands.
type Router struct {
	cfg       Config
	transport channel.Transport
	actions   channel.Actions
	sessions  session.Store
	lanes     *lane.Pool
	stats     store.StatsStore
	bank      *content.Bank
	picker    content.Picker
	qr        *qr.Generator
	search    Searcher
	metrics   *metrics.Metrics
	now       func() time.Time
	started   time.Time

	registry *Registry
	cooldown *Cooldown
	owners   *Owners

	tictactoe *tictactoe.Engine
	hangman   *hangman.Engine
	quiz      *quiz.Engine

	nameMu  sync.RWMutex
	botName string
}

// Compile-time interface check.
var _ channel.Handler = (*Router)(nil)

// New builds a Router and registers the built-in commands.
func New(cfg Config, deps Deps) (*Router, error) {
	if deps.Transport == nil {
		return nil, vorteerr.New(vorteerr.CodeServerConfigInvalid, "router requires a transport")
	}
	cfg.applyDefaults()

	r := &Router{
		cfg:       cfg,
		transport: deps.Transport,
		actions:   deps.Actions,
		sessions:  deps.Sessions,
		lanes:     deps.Lanes,
		stats:     deps.Stats,
		bank:      deps.Bank,
		picker:    deps.Picker,
		qr:        deps.QR,
		search:    deps.Search,
		metrics:   deps.Metrics,
		now:       deps.Now,
		registry:  NewRegistry(),
		cooldown:  NewCooldown(cfg.Cooldown),
		owners:    NewOwners(cfg.Owners),
		botName:   cfg.BotName,
	}
	if r.actions == nil {
		if a, ok := deps.Transport.(channel.Actions); ok {
			r.actions = a
		}
	}
	if r.sessions == nil {
		r.sessions = session.NewMemoryStore()
	}
	if r.lanes == nil {
		r.lanes = lane.NewPool()
	}
	if r.stats == nil {
		r.stats = store.NewMemoryStatsStore()
	}
	if r.bank == nil {
		r.bank = content.Default()
	}
	if r.picker == nil {
		r.picker = content.NewPicker()
	}
	if r.qr == nil {
		r.qr = qr.New(qr.DefaultSize, qr.DefaultMaxChars)
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.started = r.now()

	r.tictactoe = tictactoe.New(r.sessions)
	r.hangman = hangman.New(r.sessions, r.bank.Words, r.picker)
	r.quiz = quiz.New(r.sessions, r.bank.Questions, r.picker)

	if err := r.registerBuiltins(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Router) registerBuiltins() error {
	for _, group := range [][]*Command{
		r.groupCommands(),
		r.infoCommands(),
		r.gameCommands(),
		r.mediaCommands(),
		r.funCommands(),
		r.toolCommands(),
		r.ownerCommands(),
	} {
		if err := r.registry.Register(group...); err != nil {
			return err
		}
	}
	return nil
}

// Registry exposes the command table.
func (r *Router) Registry() *Registry { return r.registry }

// Cooldown exposes the cooldown tracker so it can be pruned.
func (r *Router) Cooldown() *Cooldown { return r.cooldown }

// Lanes returns the conversation lanes used for game commands.
func (r *Router) Lanes() *lane.Pool { return r.lanes }

// BotName returns the current display name.
func (r *Router) BotName() string {
	r.nameMu.RLock()
	defer r.nameMu.RUnlock()
	return r.botName
}

func (r *Router) setBotName(name string) {
	r.nameMu.Lock()
	r.botName = name
	r.nameMu.Unlock()
}

// Handle processes one inbound message. It never panics and never returns
// an error; failures become replies and log records.
func (r *Router) Handle(ctx context.Context, msg channel.Inbound) {
	if msg.ConversationID == "" {
		return
	}

	r.metrics.RecordMessage()
	if err := r.stats.RecordMessage(ctx, msg.ConversationID, r.now()); err != nil {
		slog.Warn("recording message failed",
			"conversation_id", msg.ConversationID,
			"error", err)
	}

	inv, ok := Parse(r.cfg.Prefix, msg.Text)
	if !ok {
		return
	}

	log := slog.With(
		"conversation_id", msg.ConversationID,
		"sender_hash", hashID(msg.SenderID),
		"command", inv.Name)

	if !r.cooldown.Allow(msg.ConversationID, msg.SenderID, r.now()) {
		r.metrics.RecordCooldownDrop()
		log.Debug("command dropped by cooldown")
		return
	}

	start := r.now()
	cmd, ok := r.registry.Lookup(inv.Name)
	if !ok {
		r.metrics.RecordCommand("unknown", metrics.OutcomeUnknown, 0)
		log.Debug("unknown command")
		text := fmt.Sprintf("❓ Unknown command: *%s*\n\nType %smenu for list of commands.",
			inv.Name, r.cfg.Prefix)
		r.send(ctx, log, channel.Outbound{ConversationID: msg.ConversationID, Text: text})
		return
	}

	req := &Request{Message: msg, Invocation: inv, Command: cmd}
	err := r.run(ctx, req)
	outcome := classify(err)
	r.metrics.RecordCommand(cmd.Name, outcome, r.now().Sub(start))

	if err == nil {
		log.Debug("command handled")
		return
	}
	r.fail(ctx, log, req, outcome, err)
}

// run executes the command, inside the conversation lane when serialized,
// and converts panics into errors.
func (r *Router) run(ctx context.Context, req *Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("command panic recovered",
				"conversation_id", req.Message.ConversationID,
				"command", req.Command.Name,
				"panic", p,
				"stack", string(debug.Stack()))
			err = vorteerr.Errorf(vorteerr.CodeRouterHandlerFailure, "command panic: %v", p)
		}
	}()

	if req.Command.Serialized {
		return r.lanes.Submit(ctx, req.Message.ConversationID, func(ctx context.Context) error {
			return r.execute(ctx, req)
		})
	}
	return r.execute(ctx, req)
}

// execute applies the descriptor checks in order (scope, arguments, access,
// bot admin) and then calls the handler.
func (r *Router) execute(ctx context.Context, req *Request) error {
	cmd := req.Command
	msg := req.Message

	if cmd.GroupOnly && !msg.IsGroup {
		return vorteerr.New(vorteerr.CodeRouterGroupOnlyInvalid, "group only command",
			vorteerr.FieldCommand(cmd.Name))
	}

	switch cmd.Args {
	case RequiredText:
		if req.ArgString == "" {
			return usageError(cmd.Name)
		}
	case RequiredMention:
		if len(msg.MentionedIDs) == 0 {
			return usageError(cmd.Name)
		}
	}

	if err := r.authorize(ctx, req); err != nil {
		return err
	}

	if cmd.BotAdmin {
		md, err := r.groupMetadata(ctx, req)
		if err != nil {
			return err
		}
		if !md.IsAdmin(r.transport.BotID()) {
			return vorteerr.New(vorteerr.CodeRouterBotAdminDenied, "bot is not a group admin",
				vorteerr.FieldConversationID(msg.ConversationID))
		}
	}

	return cmd.Handler(ctx, req)
}

func (r *Router) authorize(ctx context.Context, req *Request) error {
	sender := req.Message.SenderID
	allowed := true

	switch req.Command.Access {
	case OwnerOnly:
		allowed = r.owners.IsOwner(sender)
	case PrimaryOwnerOnly:
		allowed = r.owners.IsPrimary(sender)
	case GroupAdmin:
		if r.owners.IsOwner(sender) {
			break
		}
		md, err := r.groupMetadata(ctx, req)
		if err != nil {
			return err
		}
		allowed = md.IsAdmin(sender)
	}

	if !allowed {
		return vorteerr.New(vorteerr.CodeRouterAuthForbidden, "sender not authorized",
			vorteerr.FieldCommand(req.Command.Name),
			vorteerr.FieldValue("access", req.Command.Access.String()))
	}
	return nil
}

// groupMetadata fetches and caches the conversation's group metadata.
func (r *Router) groupMetadata(ctx context.Context, req *Request) (*channel.GroupMetadata, error) {
	if req.group != nil {
		return req.group, nil
	}
	md, err := r.transport.GroupMetadata(ctx, req.Message.ConversationID)
	if err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeChannelBackendFailure, "fetching group metadata",
			vorteerr.FieldConversationID(req.Message.ConversationID))
	}
	req.group = md
	return md, nil
}

// requireActions returns the transport's optional capabilities.
func (r *Router) requireActions(cmd string) (channel.Actions, error) {
	if r.actions == nil {
		return nil, vorteerr.New(vorteerr.CodeChannelActionUnsupported,
			"transport does not support this action", vorteerr.FieldCommand(cmd))
	}
	return r.actions, nil
}

// reply sends text to the request's conversation.
func (r *Router) reply(ctx context.Context, req *Request, text string, mentions ...string) error {
	return r.sendOutbound(ctx, channel.Outbound{
		ConversationID: req.Message.ConversationID,
		Text:           text,
		MentionedIDs:   mentions,
	})
}

func (r *Router) sendOutbound(ctx context.Context, out channel.Outbound) error {
	if err := r.transport.Send(ctx, out); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "sending reply",
			vorteerr.FieldConversationID(out.ConversationID))
	}
	return nil
}

// send delivers a reply produced outside any handler and logs failures.
func (r *Router) send(ctx context.Context, log *slog.Logger, out channel.Outbound) {
	if err := r.sendOutbound(ctx, out); err != nil {
		log.Warn("sending reply failed", "error", err)
	}
}

// hashID shortens participant ids for logging.
func hashID(id string) string {
	h := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%x", h[:4]) // 4 bytes = 8 hex chars
}
