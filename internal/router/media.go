// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vorte Contributors

package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/vorte-dev/vorte/internal/channel"
	vorteerr "github.com/vorte-dev/vorte/pkg/errors"
)

func (r *Router) mediaCommands() []*Command {
	return []*Command{
		{
			Name:     "sticker",
			Aliases:  []string{"s"},
			Category: CategoryMedia,
			Summary:  "Make sticker from image",
			Hint:     "📸 Reply to an image/video or send one with caption {prefix}sticker",
			Failure:  "❌ Could not create sticker.",
			Handler:  r.handleSticker,
		},
		{
			Name:     "qr",
			Category: CategoryMedia,
			Usage:    "<text>",
			Summary:  "Generate QR code",
			Hint:     "Example: {prefix}qr hello world",
			Args:     RequiredText,
			Failure:  "❌ Failed to generate QR code.",
			Handler:  r.handleQR,
		},
		{
			Name:     "song",
			Category: CategoryMedia,
			Usage:    "<name>",
			Summary:  "Search YouTube song",
			Hint:     "Usage: {prefix}song <song name>",
			Args:     RequiredText,
			Failure:  "❌ Error searching for song.",
			Handler:  r.handleSearch,
		},
		{
			Name:     "yt",
			Category: CategoryMedia,
			Usage:    "<query>",
			Summary:  "Search YouTube",
			Args:     RequiredText,
			Failure:  "❌ Error searching for song.",
			Handler:  r.handleSearch,
		},
	}
}

// stickerSource picks the attached media, falling back to the quoted
// message's media.
func stickerSource(msg channel.Inbound) *channel.MediaRef {
	for _, ref := range []*channel.MediaRef{msg.Media, msg.Quoted} {
		if ref != nil && (ref.Kind == channel.MediaImage || ref.Kind == channel.MediaVideo) {
			return ref
		}
	}
	return nil
}

func (r *Router) handleSticker(ctx context.Context, req *Request) error {
	ref := stickerSource(req.Message)
	if ref == nil {
		return usageError(req.Command.Name)
	}

	actions, err := r.requireActions(req.Command.Name)
	if err != nil {
		return err
	}
	data, err := actions.DownloadMedia(ctx, *ref)
	if err != nil {
		return vorteerr.Wrap(err, vorteerr.CodeChannelUpstreamFailure, "downloading media",
			vorteerr.FieldConversationID(req.Message.ConversationID))
	}

	return r.sendOutbound(ctx, channel.Outbound{
		ConversationID: req.Message.ConversationID,
		Media: &channel.OutboundMedia{
			Kind:     channel.MediaSticker,
			Data:     data,
			MimeType: ref.MimeType,
		},
	})
}

func (r *Router) handleQR(ctx context.Context, req *Request) error {
	code, err := r.qr.Generate(req.ArgString)
	if err != nil {
		return err
	}

	return r.sendOutbound(ctx, channel.Outbound{
		ConversationID: req.Message.ConversationID,
		Media: &channel.OutboundMedia{
			Kind:     channel.MediaImage,
			Data:     code.PNG,
			MimeType: "image/png",
			Caption:  code.Caption(),
		},
	})
}

func (r *Router) handleSearch(ctx context.Context, req *Request) error {
	if r.search == nil {
		return vorteerr.New(vorteerr.CodeMediaProviderDisabled, "no search provider configured")
	}

	videos, err := r.search.Search(ctx, req.ArgString, searchResults)
	if err != nil {
		return err
	}
	if len(videos) == 0 {
		return r.reply(ctx, req, "❌ No results found.")
	}

	var b strings.Builder
	b.WriteString("🎵 *Search Results:*\n\n")
	for i, v := range videos {
		fmt.Fprintf(&b, "%d. *%s*\n   ⏱️ %s\n   👁️ %d views\n   🔗 %s\n\n",
			i+1, v.Title, v.Timestamp(), v.Views, v.URL())
	}
	return r.reply(ctx, req, b.String())
}
