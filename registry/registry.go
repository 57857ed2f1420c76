package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
)

var namePattern = regexp.MustCompile(`^[-_\p{Ll}\p{Lo}\p{N}]{1,32}$`)

func validName(name string) bool {
	return namePattern.MatchString(name)
}

// node is the registry's own view of a registered command. It is built once
// by Register and never changed afterwards.
type node struct {
	cmd      *Command
	path     []string
	children map[string]*node
	order    []*node
	opts     []Option
	options  map[string]*Option
}

func (n *node) isLeaf() bool {
	return len(n.order) == 0
}

func (n *node) childNames() []string {
	names := make([]string, len(n.order))
	for i, child := range n.order {
		names[i] = child.cmd.Name
	}
	return names
}

// Registry holds the tree of registered commands. Register it fully during
// startup; once frozen it is read-only and safe for concurrent lookups.
type Registry struct {
	roots  map[rootKey]*node
	order  []*node
	frozen atomic.Bool
}

// rootKey separates slash and context menu commands, which Discord lets share
// a name.
type rootKey struct {
	typ  discord.ApplicationCommandType
	name string
}

func New() *Registry {
	return &Registry{roots: make(map[rootKey]*node)}
}

// Register validates cmd and its whole subtree and adds it as a top-level
// command. The registry keeps its own copy, so changing cmd afterwards has no
// effect. Nothing is added when validation fails.
func (r *Registry) Register(cmd *Command) error {
	if r.frozen.Load() {
		return ErrRegistryFrozen
	}
	if cmd == nil {
		return &InvalidDefinitionError{Reason: "nil command"}
	}
	key := rootKey{typ: cmd.commandType(), name: cmd.Name}
	if _, exists := r.roots[key]; exists {
		return &DuplicateNameError{Kind: "command", Name: cmd.Name}
	}

	snapshot := cmd.clone()
	var (
		n   *node
		err error
	)
	switch key.typ {
	case discord.ApplicationCommandTypeSlash:
		n, err = build(snapshot, nil, 1)
	case discord.ApplicationCommandTypeUser, discord.ApplicationCommandTypeMessage:
		n, err = buildContextMenu(snapshot)
	default:
		err = &InvalidDefinitionError{Path: []string{cmd.Name}, Reason: fmt.Sprintf("unsupported command type %d", cmd.Type)}
	}
	if err != nil {
		return err
	}

	r.roots[key] = n
	r.order = append(r.order, n)
	return nil
}

// MustRegister is Register for static command tables; it panics on error.
func (r *Registry) MustRegister(cmds ...*Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(fmt.Sprintf("register command: %v", err))
		}
	}
}

func buildContextMenu(cmd *Command) (*node, error) {
	path := []string{cmd.Name}
	fail := func(reason string) (*node, error) {
		return nil, &InvalidDefinitionError{Path: path, Reason: reason}
	}

	if length := utf8.RuneCountInString(cmd.Name); length == 0 || length > maxNameLength || strings.TrimSpace(cmd.Name) != cmd.Name {
		return fail(fmt.Sprintf("context menu name %q must be 1-%d characters without surrounding spaces", cmd.Name, maxNameLength))
	}
	if cmd.Description != "" {
		return fail("context menu commands have no description")
	}
	if len(cmd.Options) > 0 || len(cmd.Subcommands) > 0 {
		return fail("context menu commands cannot have options or subcommands")
	}
	if cmd.Execute == nil {
		return fail("command has no Execute function")
	}
	return &node{cmd: cmd, path: path, options: map[string]*Option{}}, nil
}

func build(cmd *Command, parent []string, depth int) (*node, error) {
	path := append(slices.Clone(parent), cmd.Name)
	if !validName(cmd.Name) {
		return nil, &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("invalid command name %q", cmd.Name)}
	}
	if utf8.RuneCountInString(cmd.Description) > maxDescriptionLength {
		return nil, &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("description longer than %d characters", maxDescriptionLength)}
	}
	if depth > 1 && (len(cmd.GuildIDs) > 0 || cmd.DefaultMemberPermissions != 0 || cmd.GuildOnly) {
		return nil, &InvalidDefinitionError{Path: path, Reason: "guild IDs, default permissions and GuildOnly can only be set on top-level commands"}
	}
	if depth > 1 && cmd.Type != 0 && cmd.Type != discord.ApplicationCommandTypeSlash {
		return nil, &InvalidDefinitionError{Path: path, Reason: "subcommands must be slash commands"}
	}

	n := &node{
		cmd:  cmd,
		path: path,
	}

	if len(cmd.Subcommands) > 0 {
		if len(cmd.Options) > 0 {
			return nil, &InvalidDefinitionError{Path: path, Reason: "a command with subcommands cannot declare options"}
		}
		if cmd.BeforeInvoke != nil || cmd.AfterInvoke != nil || cmd.OnError != nil {
			return nil, &InvalidDefinitionError{Path: path, Reason: "hooks and OnError belong on the subcommands that run"}
		}
		if depth >= maxDepth {
			return nil, &InvalidDefinitionError{Path: path, Reason: "subcommand groups cannot be nested inside subcommand groups"}
		}
		if len(cmd.Subcommands) > maxChildren {
			return nil, &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("more than %d subcommands", maxChildren)}
		}

		n.children = make(map[string]*node, len(cmd.Subcommands))
		for _, sub := range cmd.Subcommands {
			if sub == nil {
				return nil, &InvalidDefinitionError{Path: path, Reason: "nil subcommand"}
			}
			if _, exists := n.children[sub.Name]; exists {
				return nil, &DuplicateNameError{Parent: path, Kind: "subcommand", Name: sub.Name}
			}
			child, err := build(sub, path, depth+1)
			if err != nil {
				return nil, err
			}
			n.children[sub.Name] = child
			n.order = append(n.order, child)
		}
		return n, nil
	}

	if cmd.Execute == nil {
		return nil, &InvalidDefinitionError{Path: path, Reason: "command has neither subcommands nor an Execute function"}
	}
	if len(cmd.Options) > maxChildren {
		return nil, &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("more than %d options", maxChildren)}
	}

	n.opts = cmd.Options
	n.options = make(map[string]*Option, len(n.opts))
	seenOptional := false
	for i := range n.opts {
		opt := &n.opts[i]
		if err := validateOption(path, opt); err != nil {
			return nil, err
		}
		if _, exists := n.options[opt.Name]; exists {
			return nil, &DuplicateNameError{Parent: path, Kind: "option", Name: opt.Name}
		}
		if opt.Required && seenOptional {
			return nil, &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("required option %q follows an optional one", opt.Name)}
		}
		seenOptional = seenOptional || !opt.Required
		n.options[opt.Name] = opt
	}
	return n, nil
}

// Lookup walks path from the root of the slash command tree and returns a
// copy of the command it names.
func (r *Registry) Lookup(path ...string) (*Command, error) {
	return r.LookupType(discord.ApplicationCommandTypeSlash, path...)
}

// LookupType is Lookup for commands of type typ. Context menu commands are
// found by their name alone.
func (r *Registry) LookupType(typ discord.ApplicationCommandType, path ...string) (*Command, error) {
	n, err := r.lookup(typ, path)
	if err != nil {
		return nil, err
	}
	return n.cmd.clone(), nil
}

func (r *Registry) lookup(typ discord.ApplicationCommandType, path []string) (*node, error) {
	if len(path) == 0 {
		return nil, &UnknownCommandError{}
	}
	if typ == 0 {
		typ = discord.ApplicationCommandTypeSlash
	}

	n, ok := r.roots[rootKey{typ: typ, name: path[0]}]
	if !ok {
		return nil, &UnknownCommandError{Path: path[:1], Segment: path[0]}
	}
	for i, name := range path[1:] {
		child, ok := n.children[name]
		if !ok {
			return nil, &UnknownCommandError{Path: path[:i+2], Segment: name}
		}
		n = child
	}
	return n, nil
}

// Commands returns copies of the top-level commands in registration order.
func (r *Registry) Commands() []*Command {
	cmds := make([]*Command, len(r.order))
	for i, n := range r.order {
		cmds[i] = n.cmd.clone()
	}
	return cmds
}

// Freeze stops further registration.
func (r *Registry) Freeze() {
	r.frozen.Store(true)
}

func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}
