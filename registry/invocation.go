package registry

import (
	"maps"
	"slices"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
)

// Invocation is one request to run a command: the path down the command tree,
// the raw option values as Discord sent them, and who asked.
type Invocation struct {
	// Type selects the command tree; zero means slash commands.
	Type    discord.ApplicationCommandType
	Path    []string
	Options map[string]json.RawMessage
	// TargetID is the user or message a context menu command was used on.
	TargetID snowflake.ID

	UserID      snowflake.ID
	GuildID     *snowflake.ID
	ChannelID   snowflake.ID
	Permissions discord.Permissions
	RoleIDs     []snowflake.ID

	// Responder answers the interaction. It is nil for invocations that did not
	// come from Discord.
	Responder Responder
	Event     *events.ApplicationCommandInteractionCreate
}

// Invoke starts an invocation of the command at path.
func Invoke(path ...string) *Invocation {
	return &Invocation{
		Path:    path,
		Options: make(map[string]json.RawMessage),
	}
}

// With sets option name to the JSON encoding of value. It panics if value
// cannot be encoded.
func (inv *Invocation) With(name string, value any) *Invocation {
	raw, err := json.Marshal(value)
	if err != nil {
		panic("encode option " + name + ": " + err.Error())
	}
	return inv.WithRaw(name, raw)
}

func (inv *Invocation) WithRaw(name string, raw json.RawMessage) *Invocation {
	if inv.Options == nil {
		inv.Options = make(map[string]json.RawMessage)
	}
	inv.Options[name] = raw
	return inv
}

// optionNames returns the supplied option names in a stable order.
func (inv *Invocation) optionNames() []string {
	return slices.Sorted(maps.Keys(inv.Options))
}

// NewInvocation builds an invocation from slash command data. disgo already
// flattens subcommand option lists into data.Options.
func NewInvocation(data discord.SlashCommandInteractionData) *Invocation {
	inv := Invoke(commandPath(data.CommandName(), data.SubCommandGroupName, data.SubCommandName)...)
	for name, opt := range data.Options {
		inv.Options[name] = opt.Value
	}
	return inv
}

// InvokeTarget starts an invocation of the user or message command name on
// target.
func InvokeTarget(typ discord.ApplicationCommandType, name string, target snowflake.ID) *Invocation {
	inv := Invoke(name)
	inv.Type = typ
	inv.TargetID = target
	return inv
}

// FromEvent builds an invocation from an application command interaction,
// including the caller's identity and a Responder bound to the interaction.
func FromEvent(event *events.ApplicationCommandInteractionCreate) *Invocation {
	var inv *Invocation
	switch data := event.Data.(type) {
	case discord.UserCommandInteractionData:
		inv = InvokeTarget(discord.ApplicationCommandTypeUser, data.CommandName(), data.TargetID())
	case discord.MessageCommandInteractionData:
		inv = InvokeTarget(discord.ApplicationCommandTypeMessage, data.CommandName(), data.TargetID())
	default:
		inv = NewInvocation(event.SlashCommandInteractionData())
	}
	inv.UserID = event.User().ID
	inv.GuildID = event.GuildID()
	inv.ChannelID = event.Channel().ID()
	if member := event.Member(); member != nil {
		inv.Permissions = member.Permissions
		inv.RoleIDs = member.RoleIDs
	}
	inv.Event = event
	inv.Responder = &eventResponder{event: event}
	return inv
}

// NewAutocompleteInvocation builds an invocation from autocomplete data and
// returns it together with the name of the focused option.
func NewAutocompleteInvocation(data discord.AutocompleteInteractionData) (*Invocation, string) {
	inv := Invoke(commandPath(data.CommandName, data.SubCommandGroupName, data.SubCommandName)...)
	var focused string
	for name, opt := range data.Options {
		inv.Options[name] = opt.Value
		if opt.Focused {
			focused = name
		}
	}
	return inv, focused
}

func commandPath(name string, group, sub *string) []string {
	path := []string{name}
	if group != nil {
		path = append(path, *group)
	}
	if sub != nil {
		path = append(path, *sub)
	}
	return path
}
