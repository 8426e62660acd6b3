package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		perMin   int
		burst    int
		calls    int
		wantPass int
	}{
		{name: "burst allows initial requests", perMin: 60, burst: 3, calls: 3, wantPass: 3},
		{name: "exceeding burst blocks", perMin: 60, burst: 2, calls: 5, wantPass: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := PerMinute(tt.perMin, tt.burst)
			defer rl.Stop()

			passed := 0
			for i := 0; i < tt.calls; i++ {
				if rl.Allow("client") {
					passed++
				}
			}
			assert.Equal(t, tt.wantPass, passed)
		})
	}
}

func TestKeyedRateLimiter_IndependentKeys(t *testing.T) {
	rl := PerMinute(1, 1)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestKeyedRateLimiter_EvictIdle(t *testing.T) {
	rl := PerMinute(60, 1)
	defer rl.Stop()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }
	rl.Allow("old")

	rl.now = func() time.Time { return base.Add(rl.idle - time.Second) }
	rl.Allow("fresh")

	rl.now = func() time.Time { return base.Add(rl.idle + time.Second) }
	rl.evictIdle()

	assert.Len(t, rl.limiters, 1)
	assert.Contains(t, rl.limiters, "fresh")
}

func TestKeyedRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := PerMinute(60, 1)
	rl.Stop()
	rl.Stop()
}
