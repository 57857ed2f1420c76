package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

type Data any

// Responder sends replies for one invocation. The first reply answers the
// interaction; anything after that is sent as a follow-up.
type Responder interface {
	Respond(msg discord.MessageCreate) error
	Defer(ephemeral bool) error
}

type eventResponder struct {
	event        *events.ApplicationCommandInteractionCreate
	mu           sync.Mutex
	acknowledged bool
}

func (r *eventResponder) Respond(msg discord.MessageCreate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acknowledged {
		_, err := r.event.Client().Rest().CreateFollowupMessage(r.event.ApplicationID(), r.event.Token(), msg)
		return err
	}
	if err := r.event.CreateMessage(msg); err != nil {
		return err
	}
	r.acknowledged = true
	return nil
}

func (r *eventResponder) Defer(ephemeral bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acknowledged {
		return nil
	}
	if err := r.event.DeferCreateMessage(ephemeral); err != nil {
		return err
	}
	r.acknowledged = true
	return nil
}

// Context is handed to checks, hooks and the command itself. It carries the
// resolved option values; every value for a declared option is present, nil
// when an optional option was omitted without a default.
type Context struct {
	ctx        context.Context
	invocation *Invocation
	command    *Command
	path       []string
	options    map[string]any
	data       Data
}

func newContext(ctx context.Context, inv *Invocation, data Data) *Context {
	return &Context{
		ctx:        ctx,
		invocation: inv,
		path:       inv.Path,
		data:       data,
	}
}

func (c *Context) Context() context.Context {
	return c.ctx
}

func (c *Context) Invocation() *Invocation {
	return c.invocation
}

// Command returns a copy of the resolved leaf command, nil if resolution
// failed.
func (c *Context) Command() *Command {
	if c.command == nil {
		return nil
	}
	return c.command.clone()
}

// TargetID is the user or message a context menu command was used on, zero
// for slash commands.
func (c *Context) TargetID() snowflake.ID {
	return c.invocation.TargetID
}

// TargetUser resolves the target of a user command.
func (c *Context) TargetUser() (discord.User, bool) {
	if c.invocation.Event == nil {
		return discord.User{}, false
	}
	data, ok := c.invocation.Event.Data.(discord.UserCommandInteractionData)
	if !ok {
		return discord.User{}, false
	}
	return data.TargetUser(), true
}

// TargetMessage resolves the target of a message command.
func (c *Context) TargetMessage() (discord.Message, bool) {
	if c.invocation.Event == nil {
		return discord.Message{}, false
	}
	data, ok := c.invocation.Event.Data.(discord.MessageCommandInteractionData)
	if !ok {
		return discord.Message{}, false
	}
	return data.TargetMessage(), true
}

func (c *Context) Path() []string {
	return slices.Clone(c.path)
}

func (c *Context) Data() Data {
	return c.data
}

// Client returns the bot client the interaction arrived on, or nil.
func (c *Context) Client() bot.Client {
	if c.invocation.Event == nil {
		return nil
	}
	return c.invocation.Event.Client()
}

func (c *Context) UserID() snowflake.ID {
	return c.invocation.UserID
}

func (c *Context) GuildID() *snowflake.ID {
	return c.invocation.GuildID
}

func (c *Context) ChannelID() snowflake.ID {
	return c.invocation.ChannelID
}

func (c *Context) Permissions() discord.Permissions {
	return c.invocation.Permissions
}

func (c *Context) RoleIDs() []snowflake.ID {
	return c.invocation.RoleIDs
}

func (c *Context) Author() discord.User {
	if c.invocation.Event != nil {
		return c.invocation.Event.User()
	}
	return discord.User{ID: c.invocation.UserID}
}

// Options returns a copy of the resolved option values.
func (c *Context) Options() map[string]any {
	out := make(map[string]any, len(c.options))
	for k, v := range c.options {
		out[k] = v
	}
	return out
}

func (c *Context) Option(name string) (any, bool) {
	v, ok := c.options[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (c *Context) GetStringOption(name string) (string, bool) {
	return optionAs[string](c, name)
}

func (c *Context) GetIntOption(name string) (int, bool) {
	return optionAs[int](c, name)
}

func (c *Context) GetBoolOption(name string) (bool, bool) {
	return optionAs[bool](c, name)
}

func (c *Context) GetFloatOption(name string) (float64, bool) {
	return optionAs[float64](c, name)
}

// GetSnowflakeOption returns the ID held by a user, channel, role,
// mentionable or attachment option.
func (c *Context) GetSnowflakeOption(name string) (snowflake.ID, bool) {
	return optionAs[snowflake.ID](c, name)
}

// GetUserOption resolves a user option against the interaction's resolved
// data.
func (c *Context) GetUserOption(name string) (discord.User, bool) {
	id, ok := c.GetSnowflakeOption(name)
	if !ok || c.invocation.Event == nil {
		return discord.User{}, false
	}
	user, ok := c.invocation.Event.SlashCommandInteractionData().Resolved.Users[id]
	return user, ok
}

func optionAs[T any](c *Context, name string) (T, bool) {
	v, ok := c.options[name].(T)
	return v, ok
}

func (c *Context) respond(builder *discord.MessageCreateBuilder) error {
	if c.invocation.Responder == nil {
		return ErrNoInteraction
	}
	return c.invocation.Responder.Respond(builder.Build())
}

func (c *Context) Say(content string) error {
	return c.respond(discord.NewMessageCreateBuilder().SetContent(content))
}

// Reply answers with a message only the caller can see.
func (c *Context) Reply(content string) error {
	return c.respond(discord.NewMessageCreateBuilder().SetContent(content).SetEphemeral(true))
}

func (c *Context) SendEmbed(embed discord.Embed) error {
	return c.respond(discord.NewMessageCreateBuilder().SetEmbeds(embed))
}

// Defer acknowledges the interaction so the handler can take longer than
// Discord's initial response window. Later replies become follow-ups.
func (c *Context) Defer(ephemeral bool) error {
	if c.invocation.Responder == nil {
		return ErrNoInteraction
	}
	return c.invocation.Responder.Defer(ephemeral)
}
