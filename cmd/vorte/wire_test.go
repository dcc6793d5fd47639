// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/channel/wsgateway"
	"github.com/vorte-dev/vorte/internal/config"
	"github.com/vorte-dev/vorte/internal/server"
)

const (
	testGroup = "120363000000000001@g.us"
	testAlice = "255700000001@s.whatsapp.net"
	testBob   = "255700000002@s.whatsapp.net"
)

func wireTestBot(t *testing.T, backend string) (*Bot, *httptest.Server, string) {
	t.Helper()
	dataDir := t.TempDir()

	v := viper.New()
	config.SetDefaults(v)
	v.Set("storage.backend", backend)
	v.Set("bot.owners", []map[string]string{{"number": "+255778271055", "label": "Primary"}})
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	bot, err := WireBot(cfg, dataDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = bot.Close() })

	ts := httptest.NewServer(bot.Server.Handler())
	t.Cleanup(ts.Close)
	return bot, ts, dataDir
}

func getStatus(t *testing.T, ts *httptest.Server) server.StatusBody {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body server.StatusBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// readUntil reads send frames until one contains want.
func readUntil(t *testing.T, conn *websocket.Conn, want string) channel.Outbound {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		var f wsgateway.Frame
		require.NoError(t, wsjson.Read(ctx, conn, &f))
		if f.Type == wsgateway.FrameSend && f.Outbound != nil && strings.Contains(f.Outbound.Text, want) {
			return *f.Outbound
		}
	}
}

func TestWireBot_EndToEnd(t *testing.T) {
	bot, ts, _ := wireTestBot(t, "memory")

	status := getStatus(t, ts)
	assert.Equal(t, "VORTE PRO", status.BotName)
	assert.False(t, status.BridgeConnected)

	ctx := context.Background()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	require.Eventually(t, bot.Gateway.Connected, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, wsjson.Write(ctx, conn, &wsgateway.Frame{Type: wsgateway.FrameMessage, Inbound: &channel.Inbound{
		ConversationID: testAlice,
		SenderID:       testAlice,
		Text:           ".ping",
	}}))
	pong := readUntil(t, conn, "Pong!")
	assert.Equal(t, testAlice, pong.ConversationID)

	require.NoError(t, wsjson.Write(ctx, conn, &wsgateway.Frame{Type: wsgateway.FrameMessage, Inbound: &channel.Inbound{
		ConversationID: testGroup,
		SenderID:       testAlice,
		Text:           ".ttt @bob",
		MentionedIDs:   []string{testBob},
		IsGroup:        true,
	}}))
	board := readUntil(t, conn, "Tic Tac Toe")
	assert.Equal(t, testGroup, board.ConversationID)

	status = getStatus(t, ts)
	assert.True(t, status.BridgeConnected)
	assert.Equal(t, 1, status.ActiveSessions)
	assert.Equal(t, 2, status.Conversations)
	assert.EqualValues(t, 2, status.Messages)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "vorte_messages_total 2")
	assert.Contains(t, string(body), "vorte_active_sessions 1")

	evicted, err := bot.Reaper.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, evicted)
}

func TestWireBot_SQLiteBackend(t *testing.T) {
	bot, ts, dataDir := wireTestBot(t, "sqlite")

	_, err := os.Stat(filepath.Join(dataDir, "stats.db"))
	require.NoError(t, err)

	bot.Router.Handle(context.Background(), channel.Inbound{
		ConversationID: testGroup,
		SenderID:       testAlice,
		Text:           "just chatting",
	})

	status := getStatus(t, ts)
	assert.Equal(t, 1, status.Conversations)
	assert.EqualValues(t, 1, status.Messages)
}

func TestWireBot_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "redis"}}
	_, err := WireBot(cfg, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stats store")
}

func TestNewLogger(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, config.LogConfig{Level: "warn", Format: "json"}, false)
	logger.Info("hidden")
	logger.Warn("shown", "conversation_id", testGroup)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"conversation_id":"`+testGroup+`"`)

	buf.Reset()
	logger = newLogger(&buf, config.LogConfig{Level: "error", Format: "text"}, true)
	logger.Debug("verbose wins")
	assert.Contains(t, buf.String(), "level=DEBUG")
}
