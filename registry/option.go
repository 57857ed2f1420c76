package registry

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/json"
	"github.com/disgoorg/snowflake/v2"
)

const maxStringLength = 6000

// TypeName returns the user-facing name of an option type.
func TypeName(t discord.ApplicationCommandOptionType) string {
	switch t {
	case discord.ApplicationCommandOptionTypeString:
		return "string"
	case discord.ApplicationCommandOptionTypeInt:
		return "integer"
	case discord.ApplicationCommandOptionTypeBool:
		return "boolean"
	case discord.ApplicationCommandOptionTypeUser:
		return "user"
	case discord.ApplicationCommandOptionTypeChannel:
		return "channel"
	case discord.ApplicationCommandOptionTypeRole:
		return "role"
	case discord.ApplicationCommandOptionTypeMentionable:
		return "mentionable"
	case discord.ApplicationCommandOptionTypeFloat:
		return "number"
	case discord.ApplicationCommandOptionTypeAttachment:
		return "attachment"
	case discord.ApplicationCommandOptionTypeSubCommand:
		return "subcommand"
	case discord.ApplicationCommandOptionTypeSubCommandGroup:
		return "subcommand group"
	}
	return fmt.Sprintf("type %d", t)
}

func isSnowflakeType(t discord.ApplicationCommandOptionType) bool {
	switch t {
	case discord.ApplicationCommandOptionTypeUser,
		discord.ApplicationCommandOptionTypeChannel,
		discord.ApplicationCommandOptionTypeRole,
		discord.ApplicationCommandOptionTypeMentionable,
		discord.ApplicationCommandOptionTypeAttachment:
		return true
	}
	return false
}

func isNumericType(t discord.ApplicationCommandOptionType) bool {
	return t == discord.ApplicationCommandOptionTypeInt || t == discord.ApplicationCommandOptionTypeFloat
}

func supportsChoices(t discord.ApplicationCommandOptionType) bool {
	return t == discord.ApplicationCommandOptionTypeString || isNumericType(t)
}

// matchesType reports whether v is a resolved value of option type t.
func matchesType(t discord.ApplicationCommandOptionType, v any) bool {
	switch v.(type) {
	case string:
		return t == discord.ApplicationCommandOptionTypeString
	case int:
		return t == discord.ApplicationCommandOptionTypeInt
	case bool:
		return t == discord.ApplicationCommandOptionTypeBool
	case float64:
		return t == discord.ApplicationCommandOptionTypeFloat
	case snowflake.ID:
		return isSnowflakeType(t)
	}
	return false
}

func validateOption(path []string, o *Option) error {
	fail := func(format string, args ...any) error {
		return &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("option %q: ", o.Name) + fmt.Sprintf(format, args...)}
	}

	if !validName(o.Name) {
		return &InvalidDefinitionError{Path: path, Reason: fmt.Sprintf("invalid option name %q", o.Name)}
	}
	if utf8.RuneCountInString(o.Description) > maxDescriptionLength {
		return fail("description longer than %d characters", maxDescriptionLength)
	}
	if o.Type == discord.ApplicationCommandOptionTypeSubCommand || o.Type == discord.ApplicationCommandOptionTypeSubCommandGroup {
		return fail("declare subcommands through Subcommands")
	}
	if o.Type != discord.ApplicationCommandOptionTypeString &&
		o.Type != discord.ApplicationCommandOptionTypeInt &&
		o.Type != discord.ApplicationCommandOptionTypeBool &&
		o.Type != discord.ApplicationCommandOptionTypeFloat &&
		!isSnowflakeType(o.Type) {
		return fail("unsupported type %d", o.Type)
	}
	if o.Required && o.Default != nil {
		return fail("required options cannot have a default")
	}
	if o.Default != nil && !matchesType(o.Type, o.Default) {
		return fail("default %v (%T) is not a %s", o.Default, o.Default, TypeName(o.Type))
	}

	if len(o.Choices) > 0 {
		if !supportsChoices(o.Type) {
			return fail("choices are only allowed on string, integer and number options")
		}
		if len(o.Choices) > maxChoices {
			return fail("more than %d choices", maxChoices)
		}
		if o.Autocomplete != nil {
			return fail("choices and autocomplete are mutually exclusive")
		}
		for _, c := range o.Choices {
			if c.Name == "" || utf8.RuneCountInString(c.Name) > maxDescriptionLength {
				return fail("choice name %q must be 1-100 characters", c.Name)
			}
			if !matchesType(o.Type, c.Value) {
				return fail("choice %q value %v (%T) is not a %s", c.Name, c.Value, c.Value, TypeName(o.Type))
			}
		}
	}

	if o.MinValue != nil || o.MaxValue != nil {
		if !isNumericType(o.Type) {
			return fail("min and max value are only allowed on integer and number options")
		}
		if o.Type == discord.ApplicationCommandOptionTypeInt {
			for _, bound := range []*float64{o.MinValue, o.MaxValue} {
				if bound != nil && *bound != math.Trunc(*bound) {
					return fail("integer bounds must be whole numbers, got %v", *bound)
				}
			}
		}
		if o.MinValue != nil && o.MaxValue != nil && *o.MinValue > *o.MaxValue {
			return fail("min value %v is greater than max value %v", *o.MinValue, *o.MaxValue)
		}
	}

	if o.MinLength != nil || o.MaxLength != nil {
		if o.Type != discord.ApplicationCommandOptionTypeString {
			return fail("min and max length are only allowed on string options")
		}
		if o.MinLength != nil && (*o.MinLength < 0 || *o.MinLength > maxStringLength) {
			return fail("min length must be between 0 and %d", maxStringLength)
		}
		if o.MaxLength != nil && (*o.MaxLength < 1 || *o.MaxLength > maxStringLength) {
			return fail("max length must be between 1 and %d", maxStringLength)
		}
		if o.MinLength != nil && o.MaxLength != nil && *o.MinLength > *o.MaxLength {
			return fail("min length %d is greater than max length %d", *o.MinLength, *o.MaxLength)
		}
	}

	if len(o.ChannelTypes) > 0 && o.Type != discord.ApplicationCommandOptionTypeChannel {
		return fail("channel types are only allowed on channel options")
	}
	if o.Autocomplete != nil && !supportsChoices(o.Type) {
		return fail("autocomplete is only allowed on string, integer and number options")
	}
	return nil
}

func jsonKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "nothing"
	}
	switch c := raw[0]; {
	case c == '"':
		return "string"
	case bytes.Equal(raw, []byte("true")) || bytes.Equal(raw, []byte("false")):
		return "boolean"
	case bytes.Equal(raw, []byte("null")):
		return "null"
	case c == '{':
		return "object"
	case c == '[':
		return "array"
	case c == '-' || (c >= '0' && c <= '9'):
		return "number"
	}
	return "invalid JSON"
}

func isNull(raw json.RawMessage) bool {
	return jsonKind(raw) == "null"
}

// coerce converts a raw option value to the Go type of o. It never converts
// between JSON kinds: "5" is not an integer and 1 is not a boolean.
func coerce(o *Option, raw json.RawMessage) (any, string, error) {
	kind := jsonKind(raw)
	mismatch := func(err error) (any, string, error) {
		return nil, kind, err
	}

	switch {
	case o.Type == discord.ApplicationCommandOptionTypeString:
		if kind != "string" {
			return mismatch(nil)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return mismatch(err)
		}
		return s, kind, nil

	case o.Type == discord.ApplicationCommandOptionTypeInt:
		if kind != "number" {
			return mismatch(nil)
		}
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return mismatch(err)
		}
		if n < math.MinInt || n > math.MaxInt {
			return mismatch(fmt.Errorf("%d overflows int", n))
		}
		return int(n), kind, nil

	case o.Type == discord.ApplicationCommandOptionTypeBool:
		if kind != "boolean" {
			return mismatch(nil)
		}
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return mismatch(err)
		}
		return b, kind, nil

	case o.Type == discord.ApplicationCommandOptionTypeFloat:
		if kind != "number" {
			return mismatch(nil)
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			return mismatch(err)
		}
		return f, kind, nil

	case isSnowflakeType(o.Type):
		if kind != "string" {
			return mismatch(nil)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return mismatch(err)
		}
		id, err := snowflake.Parse(s)
		if err != nil {
			return nil, "malformed snowflake", err
		}
		return id, kind, nil
	}
	return mismatch(fmt.Errorf("unsupported option type %d", o.Type))
}

// checkValue enforces choices, ranges and lengths on an already typed value.
func checkValue(o *Option, v any) string {
	if len(o.Choices) > 0 && !slices.ContainsFunc(o.Choices, func(c Choice) bool { return c.Value == v }) {
		return fmt.Sprintf("must be one of the listed choices, got %v", v)
	}

	var n float64
	switch val := v.(type) {
	case int:
		n = float64(val)
	case float64:
		n = val
	case string:
		length := utf8.RuneCountInString(val)
		if o.MinLength != nil && length < *o.MinLength {
			return fmt.Sprintf("must be at least %d characters long", *o.MinLength)
		}
		if o.MaxLength != nil && length > *o.MaxLength {
			return fmt.Sprintf("must be at most %d characters long", *o.MaxLength)
		}
		return ""
	default:
		return ""
	}

	if o.MinValue != nil && n < *o.MinValue {
		return fmt.Sprintf("must be at least %v", *o.MinValue)
	}
	if o.MaxValue != nil && n > *o.MaxValue {
		return fmt.Sprintf("must be at most %v", *o.MaxValue)
	}
	return ""
}
