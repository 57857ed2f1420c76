package registry

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"

	"github.com/goland-express/slashroute/utils"
)

// Discord drops autocomplete answers that take longer than three seconds.
const autocompleteTimeout = 2500 * time.Millisecond

func (d *Dispatcher) defaultErrorFunc(err error, ctx *Context) {
	var userErr *utils.UserError
	if IsInvocationError(err) || errors.As(err, &userErr) {
		if replyErr := ctx.Reply(err.Error()); replyErr != nil && !errors.Is(replyErr, ErrNoInteraction) {
			d.logger.Warn("Failed to report invocation error", slog.Any("error", replyErr))
		}
		return
	}

	var panicErr *CommandPanicError
	if errors.As(err, &panicErr) {
		d.logger.Error("Command panicked",
			slog.Any("error", err),
			slog.String("stack", string(panicErr.Stack)),
		)
		_ = ctx.Reply("An error occurred while executing the command.")
		return
	}

	d.logger.Error("Error executing command",
		slog.Any("error", err),
		slog.String("command", strings.Join(ctx.Path(), " ")),
		slog.String("user_id", ctx.UserID().String()),
	)
	_ = ctx.Reply("An error occurred while executing the command.")
}

// OnApplicationCommand dispatches slash, user and message command
// interactions. Failures go to the command's OnError, or the dispatcher's.
func (d *Dispatcher) OnApplicationCommand(event *events.ApplicationCommandInteractionCreate) {
	switch event.Data.Type() {
	case discord.ApplicationCommandTypeSlash, discord.ApplicationCommandTypeUser, discord.ApplicationCommandTypeMessage:
	default:
		return
	}

	c, err := d.dispatch(context.Background(), FromEvent(event))
	if err != nil {
		d.handleError(c, err)
	}
}

func (d *Dispatcher) OnAutocomplete(event *events.AutocompleteInteractionCreate) {
	inv, focused := NewAutocompleteInvocation(event.Data)
	inv.UserID = event.User().ID
	inv.GuildID = event.GuildID()

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	choices, err := d.Complete(ctx, inv, focused)
	if err != nil {
		d.logger.Warn("Autocomplete failed",
			slog.Any("error", err),
			slog.String("command", strings.Join(inv.Path, " ")),
			slog.String("option", focused),
		)
	}

	if err := event.AutocompleteResult(autocompleteChoices(choices)); err != nil {
		d.logger.Error("Failed to send autocomplete result", slog.Any("error", err))
	}
}

func autocompleteChoices(choices []Choice) []discord.AutocompleteChoice {
	out := make([]discord.AutocompleteChoice, 0, len(choices))
	for _, choice := range choices {
		switch v := choice.Value.(type) {
		case string:
			out = append(out, discord.AutocompleteChoiceString{Name: choice.Name, Value: v})
		case int:
			out = append(out, discord.AutocompleteChoiceInt{Name: choice.Name, Value: v})
		case float64:
			out = append(out, discord.AutocompleteChoiceFloat{Name: choice.Name, Value: v})
		}
	}
	return out
}

func (d *Dispatcher) OnReady(event *events.Ready) {
	if err := d.registry.Sync(event.Client(), d.syncGuilds...); err != nil {
		d.logger.Error("Failed to register slash commands", slog.Any("error", err))
	}

	if d.onReady != nil {
		d.onReady(event)
	}
}
