package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
)

var (
	ErrRegistryFrozen = errors.New("registry is frozen")
	ErrNoInteraction  = errors.New("invocation has no interaction to respond to")
)

// invocationError marks errors caused by what the caller sent rather than by
// the bot. Their messages are safe to show to the user.
type invocationError interface {
	error
	invocationError()
}

// IsInvocationError reports whether err (or anything it wraps) describes a
// bad invocation: unknown or incomplete command paths, unknown, missing or
// malformed options, and failed checks.
func IsInvocationError(err error) bool {
	var ie invocationError
	return errors.As(err, &ie)
}

type DuplicateNameError struct {
	Parent []string
	Kind   string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("duplicate %s %q under %s", e.Kind, e.Name, formatParent(e.Parent))
}

type InvalidDefinitionError struct {
	Path   []string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid definition %s: %s", formatPath(e.Path), e.Reason)
}

type UnknownCommandError struct {
	Path    []string
	Segment string
}

func (e *UnknownCommandError) Error() string {
	if e.Segment == "" {
		return "no command given"
	}
	return fmt.Sprintf("unknown command %s", formatPath(e.Path))
}

func (*UnknownCommandError) invocationError() {}

// AmbiguousCommandError is returned when the path stops at a command that
// only groups subcommands.
type AmbiguousCommandError struct {
	Path        []string
	Subcommands []string
}

func (e *AmbiguousCommandError) Error() string {
	return fmt.Sprintf("%s needs a subcommand: %s", formatPath(e.Path), strings.Join(e.Subcommands, ", "))
}

func (*AmbiguousCommandError) invocationError() {}

type UnknownOptionError struct {
	Path   []string
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("%s has no option %q", formatPath(e.Path), e.Option)
}

func (*UnknownOptionError) invocationError() {}

type MissingRequiredOptionError struct {
	Path   []string
	Option string
}

func (e *MissingRequiredOptionError) Error() string {
	return fmt.Sprintf("%s requires option %q", formatPath(e.Path), e.Option)
}

func (*MissingRequiredOptionError) invocationError() {}

type OptionTypeError struct {
	Path   []string
	Option string
	Want   discord.ApplicationCommandOptionType
	Got    string
	Err    error
}

func (e *OptionTypeError) Error() string {
	msg := fmt.Sprintf("option %q of %s expects %s, got %s", e.Option, formatPath(e.Path), TypeName(e.Want), e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OptionTypeError) Unwrap() error {
	return e.Err
}

func (*OptionTypeError) invocationError() {}

// OptionValueError is returned for well-typed values outside the declared
// choices, range or length.
type OptionValueError struct {
	Path   []string
	Option string
	Reason string
}

func (e *OptionValueError) Error() string {
	return fmt.Sprintf("option %q of %s %s", e.Option, formatPath(e.Path), e.Reason)
}

func (*OptionValueError) invocationError() {}

type CheckFailureError struct {
	Path []string
	Err  error
}

func (e *CheckFailureError) Error() string {
	return e.Err.Error()
}

func (e *CheckFailureError) Unwrap() error {
	return e.Err
}

func (*CheckFailureError) invocationError() {}

// CommandPanicError is returned when a command's Execute panics.
type CommandPanicError struct {
	Path  []string
	Value any
	Stack []byte
}

func (e *CommandPanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", formatPath(e.Path), e.Value)
}

func formatPath(path []string) string {
	return "/" + strings.Join(path, " ")
}

func formatParent(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return formatPath(path)
}
