package registry

import (
	"context"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

const maxAutocompleteChoices = 25

type (
	BeforeInvokeFunc func(ctx *Context)
	AfterInvokeFunc  func(ctx *Context, err error)
	// ErrorFunc handles an invocation that failed. ctx is never nil but its
	// Command is nil when resolution failed.
	ErrorFunc func(err error, ctx *Context)
)

type Options struct {
	Data Data
	// Checks run for every command, before the command's own checks.
	Checks       []Check
	BeforeInvoke []BeforeInvokeFunc
	AfterInvoke  []AfterInvokeFunc
	OnError      ErrorFunc
	OnReady      func(event *events.Ready)
	// SyncGuilds, when set, registers global commands to these guilds instead
	// of globally. Guild commands update instantly, which suits development.
	SyncGuilds []snowflake.ID
	Logger     *slog.Logger
}

// Dispatcher resolves invocations against a frozen Registry and runs the
// matching command. It holds no per-invocation state and is safe for
// concurrent use.
type Dispatcher struct {
	registry   *Registry
	data       Data
	checks     []Check
	before     []BeforeInvokeFunc
	after      []AfterInvokeFunc
	onError    ErrorFunc
	onReady    func(event *events.Ready)
	syncGuilds []snowflake.ID
	logger     *slog.Logger
}

// NewDispatcher freezes r and returns a dispatcher over it.
func NewDispatcher(r *Registry, opts Options) *Dispatcher {
	r.Freeze()

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	d := &Dispatcher{
		registry:   r,
		data:       opts.Data,
		checks:     opts.Checks,
		before:     opts.BeforeInvoke,
		after:      opts.AfterInvoke,
		onError:    opts.OnError,
		onReady:    opts.OnReady,
		syncGuilds: opts.SyncGuilds,
		logger:     opts.Logger,
	}
	if d.onError == nil {
		d.onError = d.defaultErrorFunc
	}
	return d
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch resolves inv to a leaf command, resolves and validates every
// option, runs checks and hooks, and executes the command exactly once.
// Nothing observable happens before resolution has fully succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation) error {
	_, err := d.dispatch(ctx, inv)
	return err
}

func (d *Dispatcher) dispatch(ctx context.Context, inv *Invocation) (*Context, error) {
	c := newContext(ctx, inv, d.data)

	n, err := d.resolve(inv)
	if err != nil {
		return c, err
	}
	c.command = n.cmd
	c.path = n.path

	c.options, err = resolveOptions(n, inv)
	if err != nil {
		return c, err
	}

	for _, check := range d.checks {
		if err := check(c); err != nil {
			return c, &CheckFailureError{Path: n.path, Err: err}
		}
	}
	for _, check := range n.cmd.Checks {
		if err := check(c); err != nil {
			return c, &CheckFailureError{Path: n.path, Err: err}
		}
	}

	// Global hooks wrap the command's own: global before first, global after last.
	for _, hook := range d.before {
		hook(c)
	}
	if n.cmd.BeforeInvoke != nil {
		n.cmd.BeforeInvoke(c)
	}

	start := time.Now()
	err = execute(n, c)
	d.logger.Debug("Command executed",
		slog.String("command", strings.Join(n.path, " ")),
		slog.String("user_id", inv.UserID.String()),
		slog.Duration("took", time.Since(start)),
		slog.Bool("ok", err == nil),
	)

	if n.cmd.AfterInvoke != nil {
		n.cmd.AfterInvoke(c, err)
	}
	for _, hook := range d.after {
		hook(c, err)
	}
	return c, err
}

// execute runs the command, turning a panic into a CommandPanicError so one
// faulty command cannot take the bot down.
func execute(n *node, c *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &CommandPanicError{Path: n.path, Value: r, Stack: debug.Stack()}
		}
	}()
	return n.cmd.Execute(c)
}

// handleError routes err to the command's OnError when it has one, otherwise
// to the dispatcher's.
func (d *Dispatcher) handleError(c *Context, err error) {
	if c.command != nil && c.command.OnError != nil {
		c.command.OnError(err, c)
		return
	}
	d.onError(err, c)
}

func (d *Dispatcher) resolve(inv *Invocation) (*node, error) {
	n, err := d.registry.lookup(inv.Type, inv.Path)
	if err != nil {
		return nil, err
	}
	if !n.isLeaf() {
		return nil, &AmbiguousCommandError{Path: n.path, Subcommands: n.childNames()}
	}
	return n, nil
}

func resolveOptions(n *node, inv *Invocation) (map[string]any, error) {
	for _, name := range inv.optionNames() {
		if _, ok := n.options[name]; !ok {
			return nil, &UnknownOptionError{Path: n.path, Option: name}
		}
	}

	values := make(map[string]any, len(n.opts))
	for i := range n.opts {
		opt := &n.opts[i]

		raw, supplied := inv.Options[opt.Name]
		if !supplied || isNull(raw) {
			if opt.Required {
				return nil, &MissingRequiredOptionError{Path: n.path, Option: opt.Name}
			}
			values[opt.Name] = opt.Default
			continue
		}

		v, got, err := coerce(opt, raw)
		if err != nil || v == nil {
			return nil, &OptionTypeError{Path: n.path, Option: opt.Name, Want: opt.Type, Got: got, Err: err}
		}
		if reason := checkValue(opt, v); reason != "" {
			return nil, &OptionValueError{Path: n.path, Option: opt.Name, Reason: reason}
		}
		values[opt.Name] = v
	}
	return values, nil
}

// Complete returns autocomplete suggestions for the focused option of inv.
func (d *Dispatcher) Complete(ctx context.Context, inv *Invocation, focused string) ([]Choice, error) {
	n, err := d.resolve(inv)
	if err != nil {
		return nil, err
	}

	opt, ok := n.options[focused]
	if !ok || opt.Autocomplete == nil {
		return nil, &UnknownOptionError{Path: n.path, Option: focused}
	}

	partial := ""
	if raw, ok := inv.Options[focused]; ok && !isNull(raw) {
		if v, _, err := coerce(&Option{Type: opt.Type}, raw); err == nil {
			if s, ok := v.(string); ok {
				partial = s
			} else {
				partial = strings.TrimSpace(string(raw))
			}
		} else {
			partial = strings.Trim(strings.TrimSpace(string(raw)), `"`)
		}
	}

	choices, err := opt.Autocomplete(ctx, partial)
	if err != nil {
		return nil, err
	}

	valid := choices[:0:0]
	for _, choice := range choices {
		if !matchesType(opt.Type, choice.Value) {
			d.logger.Warn("Dropping autocomplete choice of the wrong type",
				slog.String("command", strings.Join(n.path, " ")),
				slog.String("option", opt.Name),
				slog.Any("value", choice.Value),
			)
			continue
		}
		valid = append(valid, choice)
		if len(valid) == maxAutocompleteChoices {
			break
		}
	}
	return valid, nil
}
