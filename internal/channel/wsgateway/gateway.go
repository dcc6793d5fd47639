// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

// Package wsgateway is a channel transport that talks to a messaging bridge
// over a websocket. The bridge pushes inbound messages and group rosters;
// the gateway pushes replies and action requests back and waits for their
// results.
package wsgateway

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/vorte-dev/vorte/internal/channel"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// DefaultActionTimeout bounds how long an action waits for its result.
const DefaultActionTimeout = 30 * time.Second

// Config configures a Gateway.
type Config struct {
	// BotID is the bot's participant id until the bridge announces one.
	BotID string
	// Token, when set, must be presented as a bearer token on connect.
	Token          string
	OriginPatterns []string
	ActionTimeout  time.Duration
	Workers        int
}

// Gateway serves one bridge connection at a time. A new connection replaces
// the previous one.
type Gateway struct {
	cfg Config

	mu         sync.Mutex
	conn       *websocket.Conn
	botID      string
	groups     map[string]*channel.GroupMetadata
	pending    map[string]chan *Frame
	dispatcher *channel.Dispatcher
}

// Compile-time interface checks.
var (
	_ channel.Transport = (*Gateway)(nil)
	_ channel.Actions   = (*Gateway)(nil)
	_ http.Handler      = (*Gateway)(nil)
)

// New returns a Gateway. Call SetHandler before serving connections.
func New(cfg Config) *Gateway {
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}
	return &Gateway{
		cfg:     cfg,
		botID:   cfg.BotID,
		groups:  make(map[string]*channel.GroupMetadata),
		pending: make(map[string]chan *Frame),
	}
}

// SetHandler sets the consumer of inbound messages.
func (g *Gateway) SetHandler(h channel.Handler) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.dispatcher = channel.NewDispatcher(h, g.cfg.Workers)
}

// Connected reports whether a bridge is attached.
func (g *Gateway) Connected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn != nil
}

// Wait blocks until every dispatched message has been handled.
func (g *Gateway) Wait() {
	g.mu.Lock()
	d := g.dispatcher
	g.mu.Unlock()
	if d != nil {
		d.Wait()
	}
}

// ServeHTTP upgrades the request and serves the bridge until it disconnects.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !g.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: g.cfg.OriginPatterns,
	})
	if err != nil {
		slog.Error("accepting bridge websocket failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(16 << 20)

	g.attach(conn)
	slog.Info("bridge connected", "remote", r.RemoteAddr)
	defer func() {
		g.detach(conn)
		if closeErr := conn.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			slog.Debug("closing bridge websocket failed", "error", closeErr)
		}
		slog.Info("bridge disconnected", "remote", r.RemoteAddr)
	}()

	// Handlers outlive the connection so that a started command finishes.
	handlerCtx := context.WithoutCancel(r.Context())
	g.readLoop(r.Context(), handlerCtx, conn)
}

func (g *Gateway) authorized(r *http.Request) bool {
	if g.cfg.Token == "" {
		return true
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(g.cfg.Token)) == 1
}

func (g *Gateway) attach(conn *websocket.Conn) {
	g.mu.Lock()
	prev := g.conn
	g.conn = conn
	g.mu.Unlock()

	if prev != nil {
		_ = prev.Close(websocket.StatusPolicyViolation, "replaced by a new bridge connection")
	}
}

// detach forgets conn if it is still current and fails its pending actions.
func (g *Gateway) detach(conn *websocket.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn != conn {
		return
	}
	g.conn = nil
	for id, ch := range g.pending {
		ch <- &Frame{Type: FrameResult, ID: id, Error: "bridge disconnected"}
		delete(g.pending, id)
	}
}

func (g *Gateway) readLoop(ctx, handlerCtx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("bridge closed websocket", "status", websocket.CloseStatus(err))
			} else {
				slog.Warn("reading bridge websocket failed", "error", err)
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			g.writeError(ctx, conn, "", "malformed frame: "+err.Error())
			continue
		}
		g.handleFrame(ctx, handlerCtx, conn, &f)
	}
}

func (g *Gateway) handleFrame(ctx, handlerCtx context.Context, conn *websocket.Conn, f *Frame) {
	switch f.Type {
	case FrameHello:
		if f.BotID != "" {
			g.mu.Lock()
			g.botID = f.BotID
			g.mu.Unlock()
		}
	case FrameMessage:
		if f.Inbound == nil || f.Inbound.ConversationID == "" {
			g.writeError(ctx, conn, f.ID, "message frame needs an inbound message with a conversation id")
			return
		}
		g.dispatch(handlerCtx, *f.Inbound)
	case FrameJoin:
		if f.Group == nil || f.Group.ConversationID == "" {
			g.writeError(ctx, conn, f.ID, "join frame needs a group with a conversation id")
			return
		}
		g.mu.Lock()
		g.groups[f.Group.ConversationID] = f.Group
		g.mu.Unlock()
	case FrameResult:
		g.mu.Lock()
		ch, ok := g.pending[f.ID]
		delete(g.pending, f.ID)
		g.mu.Unlock()
		if !ok {
			slog.Debug("result for unknown action", "id", f.ID)
			return
		}
		ch <- f
	case FramePing:
		if err := wsjson.Write(ctx, conn, &Frame{Type: FramePong, ID: f.ID}); err != nil {
			slog.Debug("sending pong failed", "error", err)
		}
	default:
		g.writeError(ctx, conn, f.ID, "unknown frame type "+f.Type)
	}
}

func (g *Gateway) dispatch(ctx context.Context, msg channel.Inbound) {
	g.mu.Lock()
	d := g.dispatcher
	g.mu.Unlock()
	if d == nil {
		slog.Warn("dropping inbound message: no handler", "conversation_id", msg.ConversationID)
		return
	}
	if err := d.Dispatch(ctx, msg); err != nil {
		slog.Warn("dispatching inbound message failed", "conversation_id", msg.ConversationID, "error", err)
	}
}

func (g *Gateway) writeError(ctx context.Context, conn *websocket.Conn, id, msg string) {
	slog.Debug("rejecting bridge frame", "id", id, "reason", msg)
	if err := wsjson.Write(ctx, conn, &Frame{Type: FrameError, ID: id, Error: msg}); err != nil {
		slog.Debug("sending error frame failed", "error", err)
	}
}

func (g *Gateway) current() (*websocket.Conn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.conn == nil {
		return nil, vorteerr.New(vorteerr.CodeChannelBackendFailure, "no bridge connected")
	}
	return g.conn, nil
}

// Send pushes msg to the bridge.
func (g *Gateway) Send(ctx context.Context, msg channel.Outbound) error {
	conn, err := g.current()
	if err != nil {
		return err
	}
	if err := wsjson.Write(ctx, conn, &Frame{Type: FrameSend, Outbound: &msg}); err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "writing send frame",
			vorteerr.FieldConversationID(msg.ConversationID))
	}
	return nil
}

// BotID returns the bot's participant id.
func (g *Gateway) BotID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.botID
}

// GroupMetadata returns the roster announced by the last join frame for the
// conversation, asking the bridge when none was announced.
func (g *Gateway) GroupMetadata(ctx context.Context, conversationID string) (*channel.GroupMetadata, error) {
	g.mu.Lock()
	md, ok := g.groups[conversationID]
	g.mu.Unlock()
	if ok {
		return md, nil
	}

	res, err := g.call(ctx, &Frame{Action: ActionGroupMetadata, ConversationID: conversationID})
	if err != nil {
		return nil, err
	}
	if res.Group == nil {
		return nil, vorteerr.New(vorteerr.CodeChannelUpstreamFailure, "bridge returned no group metadata",
			vorteerr.FieldConversationID(conversationID))
	}

	g.mu.Lock()
	g.groups[conversationID] = res.Group
	g.mu.Unlock()
	return res.Group, nil
}

func (g *Gateway) UpdateParticipants(ctx context.Context, conversationID string, ids []string, action channel.ParticipantAction) error {
	_, err := g.call(ctx, &Frame{
		Action:         ActionUpdateParticipants,
		ConversationID: conversationID,
		Participants:   ids,
		Change:         action,
	})
	if err == nil {
		// Admin flags changed; drop the roster so the next lookup refreshes.
		g.mu.Lock()
		delete(g.groups, conversationID)
		g.mu.Unlock()
	}
	return err
}

func (g *Gateway) LeaveGroup(ctx context.Context, conversationID string) error {
	_, err := g.call(ctx, &Frame{Action: ActionLeaveGroup, ConversationID: conversationID})
	if err == nil {
		g.mu.Lock()
		delete(g.groups, conversationID)
		g.mu.Unlock()
	}
	return err
}

func (g *Gateway) SetDisplayName(ctx context.Context, name string) error {
	_, err := g.call(ctx, &Frame{Action: ActionSetDisplayName, Text: name})
	return err
}

func (g *Gateway) SetStatus(ctx context.Context, status string) error {
	_, err := g.call(ctx, &Frame{Action: ActionSetStatus, Text: status})
	return err
}

func (g *Gateway) DownloadMedia(ctx context.Context, ref channel.MediaRef) ([]byte, error) {
	res, err := g.call(ctx, &Frame{Action: ActionDownloadMedia, Media: &ref})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// call sends an action frame and waits for the matching result.
func (g *Gateway) call(ctx context.Context, f *Frame) (*Frame, error) {
	conn, err := g.current()
	if err != nil {
		return nil, err
	}

	f.Type = FrameAction
	f.ID = uuid.NewString()
	ch := make(chan *Frame, 1)

	g.mu.Lock()
	g.pending[f.ID] = ch
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		delete(g.pending, f.ID)
		g.mu.Unlock()
	}()

	if err := wsjson.Write(ctx, conn, f); err != nil {
		return nil, vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "writing action frame",
			vorteerr.FieldValue("action", f.Action))
	}

	timer := time.NewTimer(g.cfg.ActionTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, vorteerr.Errorf(vorteerr.CodeChannelUpstreamFailure,
			"bridge did not answer %s within %s", f.Action, g.cfg.ActionTimeout)
	case res := <-ch:
		if res.Error != "" {
			return nil, vorteerr.Errorf(vorteerr.CodeChannelUpstreamFailure, "bridge %s failed: %s", f.Action, res.Error)
		}
		return res, nil
	}
}
