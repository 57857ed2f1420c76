// Package checks provides reusable preconditions for commands. Each
// constructor returns a registry.Check that the dispatcher runs after the
// command's options are resolved and before it executes.
package checks

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/slashroute/registry"
)

var (
	ErrGuildOnly = errors.New("this command can only be used in a server")
	ErrDMOnly    = errors.New("this command can only be used in direct messages")
	ErrNotOwner  = errors.New("only the bot owner can use this command")
)

type MissingPermissionsError struct {
	Missing discord.Permissions
}

func (e *MissingPermissionsError) Error() string {
	return fmt.Sprintf("you are missing permissions: %s", e.Missing)
}

type MissingRoleError struct {
	Roles []snowflake.ID
}

func (e *MissingRoleError) Error() string {
	mentions := make([]string, len(e.Roles))
	for i, id := range e.Roles {
		mentions[i] = discord.RoleMention(id)
	}
	if len(mentions) == 1 {
		return "you need the " + mentions[0] + " role"
	}
	return "you need one of these roles: " + strings.Join(mentions, ", ")
}

func GuildOnly() registry.Check {
	return func(ctx *registry.Context) error {
		if ctx.GuildID() == nil {
			return ErrGuildOnly
		}
		return nil
	}
}

func DMOnly() registry.Check {
	return func(ctx *registry.Context) error {
		if ctx.GuildID() != nil {
			return ErrDMOnly
		}
		return nil
	}
}

func IsOwner(owners ...snowflake.ID) registry.Check {
	return func(ctx *registry.Context) error {
		if !slices.Contains(owners, ctx.UserID()) {
			return ErrNotOwner
		}
		return nil
	}
}

// HasPermissions requires the calling member to hold every bit in perms.
// Administrators pass regardless. Outside a guild it fails like GuildOnly.
func HasPermissions(perms discord.Permissions) registry.Check {
	return func(ctx *registry.Context) error {
		if ctx.GuildID() == nil {
			return ErrGuildOnly
		}
		have := ctx.Permissions()
		if have&discord.PermissionAdministrator != 0 {
			return nil
		}
		if missing := perms &^ have; missing != 0 {
			return &MissingPermissionsError{Missing: missing}
		}
		return nil
	}
}

func HasRole(role snowflake.ID) registry.Check {
	return HasAnyRole(role)
}

func HasAnyRole(roles ...snowflake.ID) registry.Check {
	return func(ctx *registry.Context) error {
		if ctx.GuildID() == nil {
			return ErrGuildOnly
		}
		for _, id := range ctx.RoleIDs() {
			if slices.Contains(roles, id) {
				return nil
			}
		}
		return &MissingRoleError{Roles: roles}
	}
}

// Any passes when at least one of checks passes. If all fail the errors are
// joined.
func Any(checks ...registry.Check) registry.Check {
	return func(ctx *registry.Context) error {
		errs := make([]error, 0, len(checks))
		for _, check := range checks {
			err := check(ctx)
			if err == nil {
				return nil
			}
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}
}
