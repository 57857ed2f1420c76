package checks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/goland-express/slashroute/registry"
)

// run registers a single command guarded by check and dispatches inv to it.
func run(t *testing.T, check registry.Check, inv *registry.Invocation) (bool, error) {
	t.Helper()
	ran := false
	r := registry.New()
	r.MustRegister(&registry.Command{
		Name:   "guarded",
		Checks: []registry.Check{check},
		Execute: func(*registry.Context) error {
			ran = true
			return nil
		},
	})
	d := registry.NewDispatcher(r, registry.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	return ran, d.Dispatch(context.Background(), inv)
}

func invocation(user snowflake.ID, guild *snowflake.ID) *registry.Invocation {
	inv := registry.Invoke("guarded")
	inv.UserID = user
	inv.GuildID = guild
	return inv
}

func guildID(id snowflake.ID) *snowflake.ID {
	return &id
}

func TestGuildAndDMOnly(t *testing.T) {
	if ran, err := run(t, GuildOnly(), invocation(1, nil)); ran || !errors.Is(err, ErrGuildOnly) {
		t.Fatalf("GuildOnly in DM: ran=%v err=%v", ran, err)
	}
	if ran, err := run(t, GuildOnly(), invocation(1, guildID(5))); !ran || err != nil {
		t.Fatalf("GuildOnly in guild: ran=%v err=%v", ran, err)
	}
	if ran, err := run(t, DMOnly(), invocation(1, guildID(5))); ran || !errors.Is(err, ErrDMOnly) {
		t.Fatalf("DMOnly in guild: ran=%v err=%v", ran, err)
	}
	if ran, err := run(t, DMOnly(), invocation(1, nil)); !ran || err != nil {
		t.Fatalf("DMOnly in DM: ran=%v err=%v", ran, err)
	}
}

func TestIsOwner(t *testing.T) {
	check := IsOwner(7, 8)
	if ran, err := run(t, check, invocation(8, nil)); !ran || err != nil {
		t.Fatalf("owner rejected: %v", err)
	}
	ran, err := run(t, check, invocation(9, nil))
	var failure *registry.CheckFailureError
	if ran || !errors.As(err, &failure) || !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner: ran=%v err=%v", ran, err)
	}
}

func TestHasPermissions(t *testing.T) {
	check := HasPermissions(discord.PermissionManageMessages | discord.PermissionKickMembers)

	inv := invocation(1, guildID(5))
	inv.Permissions = discord.PermissionManageMessages
	ran, err := run(t, check, inv)
	var missing *MissingPermissionsError
	if ran || !errors.As(err, &missing) || missing.Missing != discord.PermissionKickMembers {
		t.Fatalf("partial permissions: ran=%v err=%v", ran, err)
	}

	inv = invocation(1, guildID(5))
	inv.Permissions = discord.PermissionManageMessages | discord.PermissionKickMembers | discord.PermissionSendMessages
	if ran, err := run(t, check, inv); !ran || err != nil {
		t.Fatalf("full permissions: ran=%v err=%v", ran, err)
	}

	inv = invocation(1, guildID(5))
	inv.Permissions = discord.PermissionAdministrator
	if ran, err := run(t, check, inv); !ran || err != nil {
		t.Fatalf("administrator: ran=%v err=%v", ran, err)
	}

	if _, err := run(t, check, invocation(1, nil)); !errors.Is(err, ErrGuildOnly) {
		t.Fatalf("expected ErrGuildOnly in DMs, got %v", err)
	}
}

func TestHasAnyRole(t *testing.T) {
	inv := invocation(1, guildID(5))
	inv.RoleIDs = []snowflake.ID{100, 200}

	if ran, err := run(t, HasRole(200), inv); !ran || err != nil {
		t.Fatalf("HasRole: ran=%v err=%v", ran, err)
	}
	ran, err := run(t, HasAnyRole(300, 400), inv)
	var missing *MissingRoleError
	if ran || !errors.As(err, &missing) || len(missing.Roles) != 2 {
		t.Fatalf("HasAnyRole: ran=%v err=%v", ran, err)
	}
}

func TestAny(t *testing.T) {
	check := Any(IsOwner(7), HasRole(100))

	inv := invocation(1, guildID(5))
	inv.RoleIDs = []snowflake.ID{100}
	if ran, err := run(t, check, inv); !ran || err != nil {
		t.Fatalf("role holder: ran=%v err=%v", ran, err)
	}

	ran, err := run(t, check, invocation(2, guildID(5)))
	if ran || !errors.Is(err, ErrNotOwner) {
		t.Fatalf("neither: ran=%v err=%v", ran, err)
	}
	var missing *MissingRoleError
	if !errors.As(err, &missing) {
		t.Fatalf("joined error should include the role failure: %v", err)
	}
}

func TestCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cd := newCooldown(10*time.Second, 2, BucketUser)
	cd.now = func() time.Time { return now }

	r := registry.New()
	r.MustRegister(&registry.Command{
		Name:    "guarded",
		Checks:  []registry.Check{cd.check},
		Execute: func(*registry.Context) error { return nil },
	})
	d := registry.NewDispatcher(r, registry.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	for i := 0; i < 2; i++ {
		if err := d.Dispatch(context.Background(), invocation(1, nil)); err != nil {
			t.Fatalf("use %d: %v", i+1, err)
		}
	}

	err := d.Dispatch(context.Background(), invocation(1, nil))
	var onCooldown *CooldownError
	if !errors.As(err, &onCooldown) {
		t.Fatalf("expected CooldownError, got %v", err)
	}
	if onCooldown.RetryAfter <= 0 || onCooldown.RetryAfter > 11*time.Second {
		t.Fatalf("unexpected retry after %v", onCooldown.RetryAfter)
	}

	if err := d.Dispatch(context.Background(), invocation(2, nil)); err != nil {
		t.Fatalf("other users have their own bucket: %v", err)
	}

	now = now.Add(10 * time.Second)
	if err := d.Dispatch(context.Background(), invocation(1, nil)); err != nil {
		t.Fatalf("cooldown should have refilled: %v", err)
	}
}

func TestCooldownBuckets(t *testing.T) {
	cd := newCooldown(time.Hour, 1, BucketGuild)
	guild := guildID(5)

	a := invocation(1, guild)
	b := invocation(2, guild)
	if ran, err := run(t, cd.check, a); !ran || err != nil {
		t.Fatalf("first use: %v", err)
	}
	if ran, err := run(t, cd.check, b); ran || err == nil {
		t.Fatalf("guild bucket should be shared between users")
	}

	global := newCooldown(time.Hour, 1, BucketGlobal)
	if _, err := run(t, global.check, invocation(1, nil)); err != nil {
		t.Fatalf("first global use: %v", err)
	}
	if _, err := run(t, global.check, invocation(2, guildID(9))); err == nil {
		t.Fatalf("global bucket should be shared by everyone")
	}
}

func TestCooldownDropsRefilledLimiters(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cd := newCooldown(10*time.Second, 1, BucketUser)
	cd.sweepAt = 2
	cd.now = func() time.Time { return now }

	for _, user := range []snowflake.ID{1, 2, 3} {
		if _, err := run(t, cd.check, invocation(user, nil)); err != nil {
			t.Fatalf("first use by %d: %v", user, err)
		}
	}
	if len(cd.limiters) != 3 {
		t.Fatalf("limiters still cooling down must be kept, have %d", len(cd.limiters))
	}

	now = now.Add(20 * time.Second)
	if _, err := run(t, cd.check, invocation(4, nil)); err != nil {
		t.Fatalf("first use by 4: %v", err)
	}
	if len(cd.limiters) != 1 {
		t.Fatalf("expected refilled limiters to be dropped, have %d", len(cd.limiters))
	}
	if _, err := run(t, cd.check, invocation(4, nil)); err == nil {
		t.Fatalf("user 4 should still be on cooldown")
	}
}
