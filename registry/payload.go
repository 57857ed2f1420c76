package registry

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/slashroute/utils"
)

// Payloads builds the command definitions Discord expects. Commands without
// GuildIDs are global unless devGuilds is non-empty, in which case they are
// registered to every dev guild instead.
func (r *Registry) Payloads(devGuilds ...snowflake.ID) ([]discord.ApplicationCommandCreate, map[snowflake.ID][]discord.ApplicationCommandCreate) {
	var global []discord.ApplicationCommandCreate
	guilds := make(map[snowflake.ID][]discord.ApplicationCommandCreate)

	for _, n := range r.order {
		payload := commandPayload(n)

		targets := n.cmd.GuildIDs
		if len(targets) == 0 {
			targets = devGuilds
		}
		if len(targets) == 0 {
			global = append(global, payload)
			continue
		}
		for _, guildID := range targets {
			guilds[guildID] = append(guilds[guildID], payload)
		}
	}
	return global, guilds
}

// commandSetter is the part of the REST API Sync needs.
type commandSetter interface {
	SetGlobalCommands(applicationID snowflake.ID, commands []discord.ApplicationCommandCreate, opts ...rest.RequestOpt) ([]discord.ApplicationCommand, error)
	SetGuildCommands(applicationID snowflake.ID, guildID snowflake.ID, commands []discord.ApplicationCommandCreate, opts ...rest.RequestOpt) ([]discord.ApplicationCommand, error)
}

// Sync overwrites the bot's registered commands with the registry's. The
// global set is always overwritten, so with devGuilds set it is cleared and
// stale global commands do not show up next to the dev guild copies.
func (r *Registry) Sync(client bot.Client, devGuilds ...snowflake.ID) error {
	return r.sync(client.Rest(), client.ApplicationID(), devGuilds...)
}

func (r *Registry) sync(api commandSetter, appID snowflake.ID, devGuilds ...snowflake.ID) error {
	global, guilds := r.Payloads(devGuilds...)
	if global == nil {
		global = []discord.ApplicationCommandCreate{}
	}

	if _, err := api.SetGlobalCommands(appID, global); err != nil {
		return fmt.Errorf("set global commands: %w", err)
	}
	for guildID, cmds := range guilds {
		if _, err := api.SetGuildCommands(appID, guildID, cmds); err != nil {
			return fmt.Errorf("set commands for guild %s: %w", guildID, err)
		}
	}

	slog.Info("Slash commands registered",
		slog.Int("global", len(global)),
		slog.Int("guilds", len(guilds)),
	)
	return nil
}

func commandPayload(n *node) discord.ApplicationCommandCreate {
	var permissions *json.Nullable[discord.Permissions]
	if n.cmd.DefaultMemberPermissions != 0 {
		permissions = json.NewNullablePtr(n.cmd.DefaultMemberPermissions)
	}
	var contexts []discord.InteractionContextType
	if n.cmd.GuildOnly {
		contexts = []discord.InteractionContextType{discord.InteractionContextTypeGuild}
	}

	switch n.cmd.commandType() {
	case discord.ApplicationCommandTypeUser:
		return discord.UserCommandCreate{Name: n.cmd.Name, DefaultMemberPermissions: permissions, Contexts: contexts}
	case discord.ApplicationCommandTypeMessage:
		return discord.MessageCommandCreate{Name: n.cmd.Name, DefaultMemberPermissions: permissions, Contexts: contexts}
	}

	payload := discord.SlashCommandCreate{
		Name:                     n.cmd.Name,
		Description:              describe(n.cmd.Description),
		DefaultMemberPermissions: permissions,
		Contexts:                 contexts,
	}
	if n.isLeaf() {
		payload.Options = optionPayloads(n.opts)
		return payload
	}

	for _, child := range n.order {
		if child.isLeaf() {
			payload.Options = append(payload.Options, subcommandPayload(child))
			continue
		}
		group := discord.ApplicationCommandOptionSubCommandGroup{
			Name:        child.cmd.Name,
			Description: describe(child.cmd.Description),
		}
		for _, leaf := range child.order {
			group.Options = append(group.Options, subcommandPayload(leaf))
		}
		payload.Options = append(payload.Options, group)
	}
	return payload
}

func subcommandPayload(n *node) discord.ApplicationCommandOptionSubCommand {
	return discord.ApplicationCommandOptionSubCommand{
		Name:        n.cmd.Name,
		Description: describe(n.cmd.Description),
		Options:     optionPayloads(n.opts),
	}
}

func optionPayloads(opts []Option) []discord.ApplicationCommandOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]discord.ApplicationCommandOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, optionPayload(o))
	}
	return out
}

func optionPayload(o Option) discord.ApplicationCommandOption {
	description := describe(o.Description)
	autocomplete := o.Autocomplete != nil

	switch o.Type {
	case discord.ApplicationCommandOptionTypeString:
		opt := discord.ApplicationCommandOptionString{
			Name:         o.Name,
			Description:  description,
			Required:     o.Required,
			Autocomplete: autocomplete,
			MinLength:    o.MinLength,
			MaxLength:    o.MaxLength,
		}
		for _, c := range o.Choices {
			opt.Choices = append(opt.Choices, discord.ApplicationCommandOptionChoiceString{Name: c.Name, Value: c.Value.(string)})
		}
		return opt

	case discord.ApplicationCommandOptionTypeInt:
		opt := discord.ApplicationCommandOptionInt{
			Name:         o.Name,
			Description:  description,
			Required:     o.Required,
			Autocomplete: autocomplete,
		}
		if o.MinValue != nil {
			opt.MinValue = utils.Ptr(int(*o.MinValue))
		}
		if o.MaxValue != nil {
			opt.MaxValue = utils.Ptr(int(*o.MaxValue))
		}
		for _, c := range o.Choices {
			opt.Choices = append(opt.Choices, discord.ApplicationCommandOptionChoiceInt{Name: c.Name, Value: c.Value.(int)})
		}
		return opt

	case discord.ApplicationCommandOptionTypeFloat:
		opt := discord.ApplicationCommandOptionFloat{
			Name:         o.Name,
			Description:  description,
			Required:     o.Required,
			Autocomplete: autocomplete,
			MinValue:     o.MinValue,
			MaxValue:     o.MaxValue,
		}
		for _, c := range o.Choices {
			opt.Choices = append(opt.Choices, discord.ApplicationCommandOptionChoiceFloat{Name: c.Name, Value: c.Value.(float64)})
		}
		return opt

	case discord.ApplicationCommandOptionTypeBool:
		return discord.ApplicationCommandOptionBool{Name: o.Name, Description: description, Required: o.Required}
	case discord.ApplicationCommandOptionTypeUser:
		return discord.ApplicationCommandOptionUser{Name: o.Name, Description: description, Required: o.Required}
	case discord.ApplicationCommandOptionTypeChannel:
		return discord.ApplicationCommandOptionChannel{Name: o.Name, Description: description, Required: o.Required, ChannelTypes: o.ChannelTypes}
	case discord.ApplicationCommandOptionTypeRole:
		return discord.ApplicationCommandOptionRole{Name: o.Name, Description: description, Required: o.Required}
	case discord.ApplicationCommandOptionTypeMentionable:
		return discord.ApplicationCommandOptionMentionable{Name: o.Name, Description: description, Required: o.Required}
	case discord.ApplicationCommandOptionTypeAttachment:
		return discord.ApplicationCommandOptionAttachment{Name: o.Name, Description: description, Required: o.Required}
	}
	panic(fmt.Sprintf("unsupported option type %d", o.Type))
}
