package checks

import (
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/time/rate"

	"github.com/goland-express/slashroute/registry"
)

// Bucket selects who shares a cooldown.
type Bucket int

const (
	BucketUser Bucket = iota
	BucketGuild
	BucketChannel
	BucketGlobal
)

type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("you are on cooldown, try again in %.1fs", e.RetryAfter.Seconds())
}

type cooldown struct {
	every  time.Duration
	burst  int
	bucket Bucket

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
	// sweepAt is the map size at which fully refilled limiters are dropped.
	sweepAt int
	now     func() time.Time
}

const defaultSweepAt = 1024

// Cooldown allows burst uses per bucket, refilling one use every interval.
func Cooldown(every time.Duration, burst int, bucket Bucket) registry.Check {
	return newCooldown(every, burst, bucket).check
}

func newCooldown(every time.Duration, burst int, bucket Bucket) *cooldown {
	if burst < 1 {
		burst = 1
	}
	return &cooldown{
		every:    every,
		burst:    burst,
		bucket:   bucket,
		limiters: make(map[snowflake.ID]*rate.Limiter),
		sweepAt:  defaultSweepAt,
		now:      time.Now,
	}
}

func (c *cooldown) key(ctx *registry.Context) snowflake.ID {
	switch c.bucket {
	case BucketGuild:
		if id := ctx.GuildID(); id != nil {
			return *id
		}
		// DMs fall back to a per-user bucket
		return ctx.UserID()
	case BucketChannel:
		return ctx.ChannelID()
	case BucketGlobal:
		return 0
	}
	return ctx.UserID()
}

func (c *cooldown) limiter(key snowflake.ID, now time.Time) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	lim, ok := c.limiters[key]
	if !ok {
		if len(c.limiters) >= c.sweepAt {
			c.sweep(now)
		}
		lim = rate.NewLimiter(rate.Every(c.every), c.burst)
		c.limiters[key] = lim
	}
	return lim
}

// sweep drops limiters that have refilled completely. A fresh limiter behaves
// the same, so nothing is lost. Callers hold c.mu.
func (c *cooldown) sweep(now time.Time) {
	for key, lim := range c.limiters {
		if lim.TokensAt(now) >= float64(c.burst) {
			delete(c.limiters, key)
		}
	}
}

func (c *cooldown) check(ctx *registry.Context) error {
	now := c.now()
	lim := c.limiter(c.key(ctx), now)
	if lim.AllowN(now, 1) {
		return nil
	}

	r := lim.ReserveN(now, 1)
	retry := r.DelayFrom(now)
	r.CancelAt(now)
	return &CooldownError{RetryAfter: retry}
}
