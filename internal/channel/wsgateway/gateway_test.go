// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package wsgateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/channel/wsgateway"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

const group = "120363000000000001@g.us"

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type recorder struct {
	mu   sync.Mutex
	msgs []channel.Inbound
	got  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{got: make(chan struct{}, 16)}
}

func (r *recorder) Handle(_ context.Context, msg channel.Inbound) {
	r.mu.Lock()
	r.msgs = append(r.msgs, msg)
	r.mu.Unlock()
	r.got <- struct{}{}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
}

// bridge dials the gateway and returns the client side of the socket.
func bridge(t *testing.T, gw *wsgateway.Gateway, header http.Header) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	require.Eventually(t, gw.Connected, 5*time.Second, 10*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wsgateway.Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var f wsgateway.Frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func writeFrame(t *testing.T, conn *websocket.Conn, f wsgateway.Frame) {
	t.Helper()
	require.NoError(t, wsjson.Write(context.Background(), conn, &f))
}

// answer serves one action request from the gateway with reply.
func answer(t *testing.T, conn *websocket.Conn, reply func(req wsgateway.Frame) wsgateway.Frame) <-chan wsgateway.Frame {
	t.Helper()
	seen := make(chan wsgateway.Frame, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var req wsgateway.Frame
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			close(seen)
			return
		}
		seen <- req
		res := reply(req)
		res.Type = wsgateway.FrameResult
		res.ID = req.ID
		_ = wsjson.Write(ctx, conn, &res)
	}()
	return seen
}

// ---------------------------------------------------------------------------
// Inbound
// ---------------------------------------------------------------------------

func TestGatewayDispatchesMessages(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{BotID: "bot@s.whatsapp.net"})
	rec := newRecorder()
	gw.SetHandler(rec)
	conn := bridge(t, gw, nil)

	writeFrame(t, conn, wsgateway.Frame{Type: wsgateway.FrameMessage, Inbound: &channel.Inbound{
		ConversationID: group,
		SenderID:       "alice",
		Text:           ".ping",
		IsGroup:        true,
	}})
	waitFor(t, rec.got)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, ".ping", rec.msgs[0].Text)
	assert.True(t, rec.msgs[0].IsGroup)
}

func TestGatewayHelloSetsBotID(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{BotID: "configured"})
	conn := bridge(t, gw, nil)
	assert.Equal(t, "configured", gw.BotID())

	writeFrame(t, conn, wsgateway.Frame{Type: wsgateway.FrameHello, BotID: "announced"})
	assert.Eventually(t, func() bool { return gw.BotID() == "announced" }, 5*time.Second, 10*time.Millisecond)
}

func TestGatewayPing(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	writeFrame(t, conn, wsgateway.Frame{Type: wsgateway.FramePing, ID: "p1"})
	f := readFrame(t, conn)
	assert.Equal(t, wsgateway.FramePong, f.Type)
	assert.Equal(t, "p1", f.ID)
}

func TestGatewayRejectsBadFrames(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, []byte("{not json")))
	f := readFrame(t, conn)
	assert.Equal(t, wsgateway.FrameError, f.Type)
	assert.Contains(t, f.Error, "malformed frame")

	writeFrame(t, conn, wsgateway.Frame{Type: "bogus", ID: "b1"})
	f = readFrame(t, conn)
	assert.Equal(t, wsgateway.FrameError, f.Type)
	assert.Equal(t, "b1", f.ID)

	writeFrame(t, conn, wsgateway.Frame{Type: wsgateway.FrameMessage, ID: "m1"})
	f = readFrame(t, conn)
	assert.Equal(t, wsgateway.FrameError, f.Type)
	assert.Equal(t, "m1", f.ID)

	// The connection survives rejected frames.
	assert.True(t, gw.Connected())
}

func TestGatewayRequiresToken(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{Token: "s3cret"})
	srv := httptest.NewServer(gw)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	tests := []struct {
		name   string
		header http.Header
	}{
		{name: "missing", header: nil},
		{name: "wrong", header: http.Header{"Authorization": {"Bearer nope"}}},
		{name: "not bearer", header: http.Header{"Authorization": {"s3cret"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.Dial(context.Background(), url, &websocket.DialOptions{HTTPHeader: tt.header})
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}

	bridge(t, gw, http.Header{"Authorization": {"Bearer s3cret"}})
}

// ---------------------------------------------------------------------------
// Outbound
// ---------------------------------------------------------------------------

func TestGatewaySend(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	require.NoError(t, gw.Send(context.Background(), channel.Outbound{ConversationID: group, Text: "hi"}))
	f := readFrame(t, conn)
	assert.Equal(t, wsgateway.FrameSend, f.Type)
	require.NotNil(t, f.Outbound)
	assert.Equal(t, "hi", f.Outbound.Text)
	assert.Equal(t, group, f.Outbound.ConversationID)
}

func TestGatewayWithoutBridge(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	ctx := context.Background()

	err := gw.Send(ctx, channel.Outbound{ConversationID: group, Text: "hi"})
	assert.Equal(t, vorteerr.CodeChannelBackendFailure, vorteerr.CodeOf(err))

	_, err = gw.GroupMetadata(ctx, group)
	assert.Equal(t, vorteerr.CodeChannelBackendFailure, vorteerr.CodeOf(err))

	err = gw.LeaveGroup(ctx, group)
	assert.True(t, vorteerr.IsCollaboratorFailure(err))
}

// ---------------------------------------------------------------------------
// Actions
// ---------------------------------------------------------------------------

func TestGatewayJoinCachesRoster(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	writeFrame(t, conn, wsgateway.Frame{Type: wsgateway.FrameJoin, Group: &channel.GroupMetadata{
		ConversationID: group,
		Participants:   []channel.Participant{{ID: "alice", IsAdmin: true}, {ID: "bob"}},
	}})

	assert.Eventually(t, func() bool {
		md, err := gw.GroupMetadata(context.Background(), group)
		return err == nil && md.IsAdmin("alice") && !md.IsAdmin("bob")
	}, 5*time.Second, 10*time.Millisecond)
}

func TestGatewayGroupMetadataAsksBridge(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	seen := answer(t, conn, func(req wsgateway.Frame) wsgateway.Frame {
		return wsgateway.Frame{Group: &channel.GroupMetadata{
			ConversationID: req.ConversationID,
			Participants:   []channel.Participant{{ID: "carol", IsAdmin: true}},
		}}
	})

	md, err := gw.GroupMetadata(context.Background(), group)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, md.IDs())

	req := <-seen
	assert.Equal(t, wsgateway.FrameAction, req.Type)
	assert.Equal(t, wsgateway.ActionGroupMetadata, req.Action)
	assert.NotEmpty(t, req.ID)
}

func TestGatewayUpdateParticipants(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	seen := answer(t, conn, func(wsgateway.Frame) wsgateway.Frame { return wsgateway.Frame{} })
	require.NoError(t, gw.UpdateParticipants(context.Background(), group, []string{"bob"}, channel.ActionPromote))

	req := <-seen
	assert.Equal(t, wsgateway.ActionUpdateParticipants, req.Action)
	assert.Equal(t, group, req.ConversationID)
	assert.Equal(t, []string{"bob"}, req.Participants)
	assert.Equal(t, channel.ActionPromote, req.Change)
}

func TestGatewayActionError(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	answer(t, conn, func(wsgateway.Frame) wsgateway.Frame { return wsgateway.Frame{Error: "not permitted"} })
	err := gw.SetStatus(context.Background(), "busy")
	require.Error(t, err)
	assert.Equal(t, vorteerr.CodeChannelUpstreamFailure, vorteerr.CodeOf(err))
	assert.Contains(t, err.Error(), "not permitted")
}

func TestGatewayDownloadMedia(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	seen := answer(t, conn, func(wsgateway.Frame) wsgateway.Frame { return wsgateway.Frame{Data: []byte{1, 2, 3}} })
	data, err := gw.DownloadMedia(context.Background(), channel.MediaRef{ID: "m-1", Kind: channel.MediaImage})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	req := <-seen
	require.NotNil(t, req.Media)
	assert.Equal(t, "m-1", req.Media.ID)
}

func TestGatewayActionTimeout(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{ActionTimeout: 50 * time.Millisecond})
	conn := bridge(t, gw, nil)

	err := gw.SetDisplayName(context.Background(), "VORTE")
	require.Error(t, err)
	assert.Equal(t, vorteerr.CodeChannelUpstreamFailure, vorteerr.CodeOf(err))

	// The request still reached the bridge.
	f := readFrame(t, conn)
	assert.Equal(t, wsgateway.ActionSetDisplayName, f.Action)
	assert.Equal(t, "VORTE", f.Text)
}

func TestGatewayDisconnectFailsPendingActions(t *testing.T) {
	gw := wsgateway.New(wsgateway.Config{})
	conn := bridge(t, gw, nil)

	done := make(chan error, 1)
	go func() { done <- gw.LeaveGroup(context.Background(), group) }()

	readFrame(t, conn)
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, vorteerr.IsCollaboratorFailure(err))
	case <-time.After(5 * time.Second):
		t.Fatal("pending action was not released")
	}
	assert.Eventually(t, func() bool { return !gw.Connected() }, 5*time.Second, 10*time.Millisecond)
}
