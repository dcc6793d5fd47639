// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router_test

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/media/youtube"
	"github.com/vorte-dev/vorte/internal/metrics"
	"github.com/vorte-dev/vorte/internal/router"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

// ---------------------------------------------------------------------------
// Info
// ---------------------------------------------------------------------------

func TestPing(t *testing.T) {
	h := newHarness(t)
	h.say(dm, alice, ".ping")
	assert.Equal(t, []string{"Pinging...", "🏓 Pong! Latency: 0ms"}, h.transport.texts())
}

func TestOwnerList(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "👑 *Bot Owners*\n\n1. +255778271055 - Primary Owner\n2. +6285863023532 - Secondary Owner",
		h.ask(t, dm, alice, ".owner"))
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.say(dm, alice, "hi")
	h.say(group, bob, "hello")
	h.say(group, alice, ".hangmanstart")
	h.transport.outbox()

	got := h.ask(t, dm, alice, ".stats")
	assert.True(t, strings.HasPrefix(got,
		"📊 *Bot Statistics*\n• Active chats: 2\n• Total messages: 4\n• Active games: 1\n• Uptime: 0h 0m 4s"), got)
}

// ---------------------------------------------------------------------------
// Fun and tools
// ---------------------------------------------------------------------------

func TestFunCommands(t *testing.T) {
	h := newHarness(t)
	tests := map[string]string{
		".joke":  "😂 A joke.",
		".quote": "💬 \"Stay hungry.\"",
		".truth": "🤔 Truth: A truth?",
		".dare":  "😈 Dare: A dare!",
		".dice":  "🎲 You rolled: 1",
		".coin":  "🪙 Heads!",
		".guess": "🎲 I'm thinking of a number between 1-10...\nIt's *1*!",
	}
	for cmd, want := range tests {
		assert.Equal(t, want, h.ask(t, dm, alice, cmd), cmd)
	}
}

func TestTextTools(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "hello world", h.ask(t, dm, alice, ".echo hello   world"))
	assert.Equal(t, "hello world", h.ask(t, dm, alice, ".say hello world"))
	assert.Equal(t, "Usage: .say <text>", h.ask(t, dm, alice, ".say"))
	assert.Equal(t, "Usage: .echo <text>", h.ask(t, dm, alice, ".echo"))
	assert.Equal(t, "olleh ißüg", h.ask(t, dm, alice, ".reverse güßi hello"))
	assert.Equal(t, "Usage: .reverse <text>", h.ask(t, dm, alice, ".reverse"))
	assert.Equal(t, "📊 Text Analysis:\n• Characters: 11\n• Words: 2", h.ask(t, dm, alice, ".countchars héllo world"))
}

func TestMath(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "🧮 5+5*2 = *15*", h.ask(t, dm, alice, ".math 5+5*2"))
	assert.Equal(t, "🧮 (1 + 2) / 4 = *0.75*", h.ask(t, dm, alice, ".math (1 + 2) / 4"))
	assert.Equal(t, "❌ Invalid equation.", h.ask(t, dm, alice, ".math 2/0"))
	assert.Equal(t, "❌ Invalid equation.", h.ask(t, dm, alice, ".math require('fs')"))
	assert.Equal(t, "Example: .math 5+5*2", h.ask(t, dm, alice, ".math"))

	assert.Equal(t, 3.0, commandCount(t, h, "math", metrics.OutcomeUsage))
	assert.Equal(t, 0.0, commandCount(t, h, "math", metrics.OutcomeFailed))
}

// ---------------------------------------------------------------------------
// Media
// ---------------------------------------------------------------------------

func TestQR(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Example: .qr hello world", h.ask(t, dm, alice, ".qr"))

	h.say(dm, alice, ".qr hello world")
	out := h.transport.outbox()
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Media)
	assert.Equal(t, channel.MediaImage, out[0].Media.Kind)
	assert.Equal(t, "QR Code for: hello world", out[0].Media.Caption)

	_, err := png.Decode(bytes.NewReader(out[0].Media.Data))
	assert.NoError(t, err)
}

func TestSticker(t *testing.T) {
	h := newHarness(t)
	h.transport.media["img-1"] = []byte("jpeg bytes")

	assert.Equal(t, "📸 Reply to an image/video or send one with caption .sticker", h.ask(t, dm, alice, ".sticker"))

	send := func(media, quoted *channel.MediaRef) []channel.Outbound {
		h.clock.Advance(time.Second)
		h.router.Handle(context.Background(), channel.Inbound{
			ConversationID: dm,
			SenderID:       alice,
			Text:           ".s",
			Media:          media,
			Quoted:         quoted,
		})
		return h.transport.outbox()
	}

	out := send(&channel.MediaRef{ID: "img-1", Kind: channel.MediaImage, MimeType: "image/jpeg"}, nil)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].Media)
	assert.Equal(t, channel.MediaSticker, out[0].Media.Kind)
	assert.Equal(t, []byte("jpeg bytes"), out[0].Media.Data)

	out = send(nil, &channel.MediaRef{ID: "img-1", Kind: channel.MediaImage})
	require.Len(t, out, 1)
	assert.Equal(t, channel.MediaSticker, out[0].Media.Kind)

	out = send(&channel.MediaRef{ID: "gone", Kind: channel.MediaVideo}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "❌ Could not create sticker.", out[0].Text)

	out = send(&channel.MediaRef{ID: "img-1", Kind: channel.MediaSticker}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "📸 Reply to an image/video or send one with caption .sticker", out[0].Text)
}

func TestSongSearch(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "Usage: .song <song name>", h.ask(t, dm, alice, ".song"))
	assert.Equal(t, "Usage: .yt <query>", h.ask(t, dm, alice, ".yt"))

	assert.Equal(t, "❌ No results found.", h.ask(t, dm, alice, ".song nothing here"))

	h.search.videos = []youtube.Video{
		{ID: "a1", Title: "First", Duration: 3*time.Minute + 5*time.Second, Views: 1200},
		{ID: "b2", Title: "Second", Duration: time.Hour + 2*time.Second, Views: 7},
		{ID: "c3", Title: "Third", Duration: 59 * time.Second, Views: 0},
		{ID: "d4", Title: "Fourth", Duration: time.Second, Views: 1},
	}
	got := h.ask(t, dm, alice, ".yt lofi beats")
	assert.Equal(t, "lofi beats", h.search.query)
	assert.Equal(t, "🎵 *Search Results:*\n\n"+
		"1. *First*\n   ⏱️ 3:05\n   👁️ 1200 views\n   🔗 https://youtube.com/watch?v=a1\n\n"+
		"2. *Second*\n   ⏱️ 1:00:02\n   👁️ 7 views\n   🔗 https://youtube.com/watch?v=b2\n\n"+
		"3. *Third*\n   ⏱️ 0:59\n   👁️ 0 views\n   🔗 https://youtube.com/watch?v=c3\n\n", got)

	h.search.err = vorteerr.New(vorteerr.CodeMediaUpstreamFailure, "quota exceeded")
	assert.Equal(t, "❌ Error searching for song.", h.ask(t, dm, alice, ".song anything"))
}

func TestSongWithoutProvider(t *testing.T) {
	tr := newFakeTransport()
	r, err := router.New(router.Config{Cooldown: -1}, router.Deps{Transport: tr})
	require.NoError(t, err)
	t.Cleanup(r.Lanes().Close)

	r.Handle(context.Background(), channel.Inbound{ConversationID: dm, SenderID: alice, Text: ".song hello"})
	assert.Equal(t, []string{"❌ Error searching for song."}, tr.texts())
}

// ---------------------------------------------------------------------------
// Group commands
// ---------------------------------------------------------------------------

func TestTagAll(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "❌ Group only command.", h.ask(t, dm, owner, ".tagall"))
	assert.Equal(t, "❌ Admin only command.", h.ask(t, group, alice, ".everyone"))

	h.say(group, owner, ".tagall")
	out := h.transport.outbox()
	require.Len(t, out, 1)
	assert.Equal(t, "📣 *Tagging Everyone*\n\n@255700000001\n@255700000002\n@255700000003\n@255799999999\n", out[0].Text)
	assert.Equal(t, []string{alice, bob, gadmin, botID}, out[0].MentionedIDs)

	h.transport.groupErr = errBoom
	assert.Equal(t, "❌ Failed to tag everyone.", h.ask(t, group, owner, ".tagall"))

	h.transport.groupErr = nil
	h.transport.groups[group].Participants[3].IsAdmin = false
	assert.Equal(t, "❌ Bot needs to be admin.", h.ask(t, group, owner, ".tagall"))
}

func TestParticipantCommands(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "❌ Group only command.", h.ask(t, dm, owner, ".promote @bob", bob))
	assert.Equal(t, "Usage: .promote @user", h.ask(t, group, gadmin, ".promote"))
	assert.Equal(t, "❌ Admin only command.", h.ask(t, group, alice, ".kick @bob", bob))

	h.say(group, gadmin, ".promote @bob", bob)
	out := h.transport.outbox()
	require.Len(t, out, 1)
	assert.Equal(t, "✅ Promoted 1 user(s)", out[0].Text)
	assert.Equal(t, []string{bob}, out[0].MentionedIDs)

	assert.Equal(t, "⚠️ Demoted 2 user(s)", h.ask(t, group, owner, ".demote @alice @bob", alice, bob))
	assert.Equal(t, "👢 Removed 1 user(s)", h.ask(t, group, owner, ".kick @bob", bob))
	assert.Equal(t, []string{"promote:" + bob, "demote:" + alice, "demote:" + bob, "remove:" + bob}, h.transport.updates)

	h.transport.actErr = errBoom
	assert.Equal(t, "❌ Failed to remove user(s).", h.ask(t, group, owner, ".kick @bob", bob))
	h.transport.actErr = nil

	h.transport.groups[group].Participants[3].IsAdmin = false
	assert.Equal(t, "❌ Bot needs to be admin.", h.ask(t, group, owner, ".promote @bob", bob))
}

func TestLeave(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "❌ Group only command.", h.ask(t, dm, owner, ".leave"))
	assert.Equal(t, "❌ Owner only command.", h.ask(t, group, gadmin, ".leave"))

	assert.Equal(t, "👋 Leaving group...", h.ask(t, group, owner, ".leave"))
	assert.Equal(t, []string{group}, h.transport.left)

	h.transport.actErr = errBoom
	h.say(group, owner, ".leave")
	assert.Equal(t, []string{"👋 Leaving group...", "❌ Failed to leave group."}, h.transport.texts())
}

// ---------------------------------------------------------------------------
// Owner commands
// ---------------------------------------------------------------------------

func TestSetNameAndBio(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Usage: .setnamebot <name>", h.ask(t, dm, alice, ".setnamebot"))
	assert.Equal(t, "❌ Owner only command.", h.ask(t, dm, alice, ".setnamebot Evil Bot"))
	assert.Empty(t, h.transport.name)

	assert.Equal(t, "✅ Bot name changed to: Nova Bot", h.ask(t, owner, owner, ".setnamebot Nova Bot"))
	assert.Equal(t, "Nova Bot", h.transport.name)
	assert.Equal(t, "Nova Bot", h.router.BotName())
	assert.Contains(t, h.ask(t, dm, alice, ".menu"), "🔥 *Nova Bot MENU* 🔥")

	assert.Equal(t, "✅ Bio updated to: Always online", h.ask(t, second, second, ".setbio Always online"))
	assert.Equal(t, "Always online", h.transport.status)

	h.transport.actErr = errBoom
	assert.Equal(t, "❌ Failed to change name.", h.ask(t, owner, owner, ".setnamebot Other"))
	assert.Equal(t, "❌ Failed to update bio.", h.ask(t, owner, owner, ".setbio Other"))
	assert.Equal(t, "Nova Bot", h.router.BotName())
}

func TestBroadcast(t *testing.T) {
	h := newHarness(t)
	h.say(dm, alice, "hi")
	h.say(group, bob, "hello")

	assert.Equal(t, "❌ Owner only command.", h.ask(t, second, second, ".broadcast hi all"))
	assert.Equal(t, "Usage: .broadcast <msg>", h.ask(t, owner, owner, ".broadcast"))

	h.transport.sendErr[dm] = errBoom
	h.say(owner, owner, ".broadcast hello all")
	texts := h.transport.texts()

	require.NotEmpty(t, texts)
	assert.Equal(t, "📢 Starting broadcast to all chats...", texts[0])
	broadcasts := 0
	for _, text := range texts {
		if text == "📢 *Broadcast from VORTE PRO*\n\nhello all" {
			broadcasts++
		}
	}
	// Known conversations: owner, second, group, dm (failing).
	assert.Equal(t, 3, broadcasts)
	assert.Equal(t, "✅ Broadcast completed!\n• Sent: 3\n• Failed: 1", texts[len(texts)-1])
}
