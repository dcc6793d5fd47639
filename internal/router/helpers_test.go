// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vorte-dev/vorte/internal/channel"
	"github.com/vorte-dev/vorte/internal/game/content"
	"github.com/vorte-dev/vorte/internal/media/youtube"
	"github.com/vorte-dev/vorte/internal/metrics"
	"github.com/vorte-dev/vorte/internal/router"
	"github.com/vorte-dev/vorte/internal/session"
	"github.com/vorte-dev/vorte/internal/store"
)

const (
	group  = "120363000000000001@g.us"
	dm     = "255700000001@s.whatsapp.net"
	owner  = "255778271055@s.whatsapp.net"
	second = "6285863023532@s.whatsapp.net"
	alice  = "255700000001@s.whatsapp.net"
	bob    = "255700000002@s.whatsapp.net"
	botID  = "255799999999@s.whatsapp.net"
	gadmin = "255700000003@s.whatsapp.net"
)

var errBoom = errors.New("boom")

// fakeTransport records outbound messages and serves canned group metadata.
type fakeTransport struct {
	mu       sync.Mutex
	sent     []channel.Outbound
	groups   map[string]*channel.GroupMetadata
	updates  []string
	left     []string
	name     string
	status   string
	media    map[string][]byte
	sendErr  map[string]error
	groupErr error
	actErr   error
}

var (
	_ channel.Transport = (*fakeTransport)(nil)
	_ channel.Actions   = (*fakeTransport)(nil)
)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		groups: map[string]*channel.GroupMetadata{
			group: {
				ConversationID: group,
				Participants: []channel.Participant{
					{ID: alice},
					{ID: bob},
					{ID: gadmin, IsAdmin: true},
					{ID: botID, IsAdmin: true},
				},
			},
		},
		media:   map[string][]byte{},
		sendErr: map[string]error{},
	}
}

func (f *fakeTransport) Send(_ context.Context, msg channel.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErr[msg.ConversationID]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeTransport) GroupMetadata(_ context.Context, conversationID string) (*channel.GroupMetadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groupErr != nil {
		return nil, f.groupErr
	}
	md, ok := f.groups[conversationID]
	if !ok {
		return nil, errors.New("not a group")
	}
	return md, nil
}

func (f *fakeTransport) BotID() string { return botID }

func (f *fakeTransport) UpdateParticipants(_ context.Context, conversationID string, ids []string, action channel.ParticipantAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actErr != nil {
		return f.actErr
	}
	for _, id := range ids {
		f.updates = append(f.updates, string(action)+":"+id)
	}
	return nil
}

func (f *fakeTransport) LeaveGroup(_ context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actErr != nil {
		return f.actErr
	}
	f.left = append(f.left, conversationID)
	return nil
}

func (f *fakeTransport) SetDisplayName(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actErr != nil {
		return f.actErr
	}
	f.name = name
	return nil
}

func (f *fakeTransport) SetStatus(_ context.Context, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.actErr != nil {
		return f.actErr
	}
	f.status = status
	return nil
}

func (f *fakeTransport) DownloadMedia(_ context.Context, ref channel.MediaRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.media[ref.ID]
	if !ok {
		return nil, errors.New("media expired")
	}
	return data, nil
}

// outbox returns and clears everything sent so far.
func (f *fakeTransport) outbox() []channel.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sent
	f.sent = nil
	return out
}

// texts returns and clears the text of everything sent so far.
func (f *fakeTransport) texts() []string {
	var texts []string
	for _, m := range f.outbox() {
		texts = append(texts, m.Text)
	}
	return texts
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeSearch struct {
	videos []youtube.Video
	err    error
	query  string
}

func (f *fakeSearch) Search(_ context.Context, query string, limit int) ([]youtube.Video, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return f.videos[:min(limit, len(f.videos))], nil
}

var testBank = &content.Bank{
	Words: []string{"go"},
	Questions: []content.Question{
		{Question: "What is the capital of France?", Choices: []string{"London", "Paris"}, Answer: "Paris"},
	},
	Quotes: []string{"Stay hungry."},
	Jokes:  []string{"A joke."},
	Truths: []string{"A truth?"},
	Dares:  []string{"A dare!"},
}

type harness struct {
	router    *router.Router
	transport *fakeTransport
	clock     *fakeClock
	sessions  *session.MemoryStore
	stats     *store.MemoryStatsStore
	search    *fakeSearch
	metrics   *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	clock := &fakeClock{now: time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)}
	h := &harness{
		transport: newFakeTransport(),
		clock:     clock,
		sessions:  session.NewMemoryStore(session.WithClock(clock.Now)),
		stats:     store.NewMemoryStatsStore(),
		search:    &fakeSearch{},
		metrics:   metrics.New(),
	}

	r, err := router.New(router.Config{
		BotName: "VORTE PRO",
		Owners: []router.Owner{
			{Number: "+255778271055", Label: "Primary Owner"},
			{Number: "+6285863023532", Label: "Secondary Owner"},
		},
		Cooldown: router.DefaultCooldown,
	}, router.Deps{
		Transport: h.transport,
		Sessions:  h.sessions,
		Stats:     h.stats,
		Bank:      testBank,
		Picker:    content.FixedPicker(0),
		Search:    h.search,
		Metrics:   h.metrics,
		Now:       clock.Now,
	})
	require.NoError(t, err)
	h.router = r
	t.Cleanup(r.Lanes().Close)
	return h
}

// say delivers text from sender after moving the clock past the cooldown.
func (h *harness) say(conversation, sender, text string, mentions ...string) {
	h.clock.Advance(router.DefaultCooldown)
	h.router.Handle(context.Background(), channel.Inbound{
		ConversationID: conversation,
		SenderID:       sender,
		Text:           text,
		MentionedIDs:   mentions,
		IsGroup:        conversation == group,
	})
}

// commandCount reads vorte_commands_total for one command and outcome.
func commandCount(t *testing.T, h *harness, command, outcome string) float64 {
	t.Helper()
	families, err := h.metrics.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "vorte_commands_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["command"] == command && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

// ask delivers a message and returns the single reply text.
func (h *harness) ask(t *testing.T, conversation, sender, text string, mentions ...string) string {
	t.Helper()
	h.say(conversation, sender, text, mentions...)
	texts := h.transport.texts()
	require.Len(t, texts, 1, "expected exactly one reply to %q", text)
	return texts[0]
}
