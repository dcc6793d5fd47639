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

// Access is the authorization a command requires of its sender.
type Access int

const (
	Public Access = iota
	// GroupAdmin admits owners and admins of the group.
	GroupAdmin
	OwnerOnly
	PrimaryOwnerOnly
)

func (a Access) String() string {
	switch a {
	case GroupAdmin:
		return "group_admin"
	case OwnerOnly:
		return "owner"
	case PrimaryOwnerOnly:
		return "primary_owner"
	default:
		return "public"
	}
}

// ArgSpec is the argument shape a command requires before its handler runs.
type ArgSpec int

const (
	// AnyArgs leaves argument checks to the handler.
	AnyArgs ArgSpec = iota
	RequiredText
	RequiredMention
)

// Category groups commands in the menu.
type Category int

const (
	CategoryGroup Category = iota
	CategoryControl
	CategoryGames
	CategoryMedia
	CategoryFun
	CategoryTools
	CategoryOwner
)

var categoryTitles = [...]string{
	CategoryGroup:   "👥 *GROUP COMMANDS*",
	CategoryControl: "📊 *BOT CONTROLS*",
	CategoryGames:   "🎮 *GAMES*",
	CategoryMedia:   "🎵 *MEDIA & UTILS*",
	CategoryFun:     "🎲 *FUN COMMANDS*",
	CategoryTools:   "🔧 *TOOLS*",
	CategoryOwner:   "👑 *OWNER ONLY*",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryTitles) {
		return "unknown"
	}
	return categoryTitles[c]
}

// Request is one command invocation being handled.
type Request struct {
	Message channel.Inbound
	Invocation
	Command *Command

	group *channel.GroupMetadata
}

// Mention returns the first mentioned participant, or "".
func (r *Request) Mention() string {
	if len(r.Message.MentionedIDs) == 0 {
		return ""
	}
	return r.Message.MentionedIDs[0]
}

// HandlerFunc runs a command after the router's checks pass.
type HandlerFunc func(ctx context.Context, req *Request) error

// Command describes one registered command.
type Command struct {
	Name     string
	Aliases  []string
	Category Category
	// Usage is the argument synopsis shown in the menu, e.g. "<name>".
	Usage   string
	Summary string
	// Hint replaces the default "Usage: ..." reply. "{prefix}" expands to
	// the command prefix.
	Hint      string
	Args      ArgSpec
	Access    Access
	GroupOnly bool
	// BotAdmin requires the bot account to be a group admin.
	BotAdmin bool
	// Serialized commands run inside the conversation's lane.
	Serialized bool
	// Denied replaces the default refusal for senders lacking Access.
	Denied string
	// Failure is the reply for errors the router has no specific text for.
	Failure string
	Handler HandlerFunc
}

// Registry maps command names and aliases to commands.
type Registry struct {
	commands []*Command
	index    map[string]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]*Command)}
}

// Register adds commands. Names and aliases are case-insensitive and must be
// unique across the registry.
func (r *Registry) Register(cmds ...*Command) error {
	for _, cmd := range cmds {
		if cmd.Name == "" || cmd.Handler == nil {
			return vorteerr.New(vorteerr.CodeRouterRegistryConflict,
				"command needs a name and a handler", vorteerr.FieldCommand(cmd.Name))
		}
		names := append([]string{cmd.Name}, cmd.Aliases...)
		for _, name := range names {
			key := strings.ToLower(name)
			if _, dup := r.index[key]; dup {
				return vorteerr.Errorf(vorteerr.CodeRouterRegistryConflict,
					"command name %q registered twice", key)
			}
		}
		for _, name := range names {
			r.index[strings.ToLower(name)] = cmd
		}
		r.commands = append(r.commands, cmd)
	}
	return nil
}

// Lookup finds a command by name or alias.
func (r *Registry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.index[strings.ToLower(name)]
	return cmd, ok
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.commands...)
}

// Menu renders the command list grouped by category.
func (r *Registry) Menu(botName, prefix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *%s MENU* 🔥\n", botName)

	for cat := range Category(len(categoryTitles)) {
		first := true
		for _, cmd := range r.commands {
			if cmd.Category != cat {
				continue
			}
			if first {
				b.WriteString("\n" + cat.String() + "\n")
				first = false
			}
			line := prefix + cmd.Name
			if cmd.Usage != "" {
				line += " " + cmd.Usage
			}
			if cmd.Summary != "" {
				line += " - " + cmd.Summary
			}
			b.WriteString("• " + line + "\n")
		}
	}

	fmt.Fprintf(&b, "\nType %s before each command!", prefix)
	return b.String()
}

// usageHint is the reply for a malformed invocation of cmd.
func usageHint(cmd *Command, prefix string) string {
	if cmd.Hint != "" {
		return strings.ReplaceAll(cmd.Hint, "{prefix}", prefix)
	}
	return strings.TrimSpace("Usage: " + prefix + cmd.Name + " " + cmd.Usage)
}

func usageError(cmd string) error {
	return vorteerr.New(vorteerr.CodeRouterUsageInvalid, "invalid arguments",
		vorteerr.FieldCommand(cmd))
}
