package registry

import (
	"context"
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

const (
	DefaultDescription = "No description provided"

	maxNameLength        = 32
	maxDescriptionLength = 100
	maxChildren          = 25
	maxChoices           = 25
	maxDepth             = 3
)

type (
	ExecuteFunc func(ctx *Context) error

	// Check runs after options are resolved and before the command executes.
	// A non-nil error stops the invocation.
	Check func(ctx *Context) error

	// AutocompleteFunc returns suggestions for the focused option given what
	// the user has typed so far.
	AutocompleteFunc func(ctx context.Context, partial string) ([]Choice, error)
)

// Command is a slash command, a subcommand group or a subcommand depending on
// where it sits in the tree. A command with Subcommands only namespaces its
// children and is never executed itself.
//
// Setting Type to discord.ApplicationCommandTypeUser or
// discord.ApplicationCommandTypeMessage declares a context menu command
// instead. Those are top-level only, take no options and receive the clicked
// user or message through Context.TargetID.
type Command struct {
	Type        discord.ApplicationCommandType
	Name        string
	Description string
	Options     []Option
	Subcommands []*Command
	Checks      []Check
	Execute     ExecuteFunc

	// The fields below apply to top-level commands only.

	// GuildIDs limits the command to the given guilds. Empty means global.
	GuildIDs []snowflake.ID
	// DefaultMemberPermissions hides the command from members lacking these
	// permissions until a server admin says otherwise. Zero shows it to
	// everyone.
	DefaultMemberPermissions discord.Permissions
	// GuildOnly keeps the command out of DMs.
	GuildOnly bool

	// BeforeInvoke and AfterInvoke wrap Execute, inside the dispatcher-wide
	// hooks. OnError replaces the dispatcher's error handler for failures
	// after the command was resolved.
	BeforeInvoke BeforeInvokeFunc
	AfterInvoke  AfterInvokeFunc
	OnError      ErrorFunc
}

func (c *Command) commandType() discord.ApplicationCommandType {
	if c.Type == 0 {
		return discord.ApplicationCommandTypeSlash
	}
	return c.Type
}

// clone copies c deeply enough that nothing reachable from the copy is shared
// with c.
func (c *Command) clone() *Command {
	out := *c
	out.Checks = slices.Clone(c.Checks)
	out.GuildIDs = slices.Clone(c.GuildIDs)
	if c.Options != nil {
		out.Options = make([]Option, len(c.Options))
		for i, o := range c.Options {
			out.Options[i] = o.clone()
		}
	}
	if c.Subcommands != nil {
		out.Subcommands = make([]*Command, len(c.Subcommands))
		for i, sub := range c.Subcommands {
			if sub != nil {
				out.Subcommands[i] = sub.clone()
			}
		}
	}
	return &out
}

type Choice struct {
	Name  string
	Value any
}

// Option declares a typed parameter. Values resolved for an option have the Go
// type given by ValueKind: string, int, bool, float64 or snowflake.ID.
type Option struct {
	Name        string
	Description string
	Type        discord.ApplicationCommandOptionType
	Required    bool
	// Default is used when an optional option is not supplied. Leaving it nil
	// declares a default of none.
	Default any

	Choices      []Choice
	MinValue     *float64
	MaxValue     *float64
	MinLength    *int
	MaxLength    *int
	ChannelTypes []discord.ChannelType
	Autocomplete AutocompleteFunc
}

func (o Option) clone() Option {
	o.Choices = slices.Clone(o.Choices)
	o.ChannelTypes = slices.Clone(o.ChannelTypes)
	o.MinValue = clonePtr(o.MinValue)
	o.MaxValue = clonePtr(o.MaxValue)
	o.MinLength = clonePtr(o.MinLength)
	o.MaxLength = clonePtr(o.MaxLength)
	return o
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func describe(description string) string {
	if description == "" {
		return DefaultDescription
	}
	return description
}
