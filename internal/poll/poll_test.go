package poll_test

import (
	"testing"
	"time"

	"github.com/refmatrix/refcli/internal/poll"
	"github.com/stretchr/testify/assert"
)

// fakeClock records sleeps instead of performing them.
type fakeClock struct {
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) { c.sleeps = append(c.sleeps, d) }

func TestUntilSucceedsImmediately(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	ok := poll.Until(clock, 100*time.Millisecond, 50, func() bool {
		calls++
		return true
	})

	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, clock.sleeps, "no sleep before the first attempt")
}

func TestUntilSucceedsMidway(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	ok := poll.Until(clock, 100*time.Millisecond, 50, func() bool {
		calls++
		return calls == 7
	})

	assert.True(t, ok)
	assert.Equal(t, 7, calls)
	assert.Len(t, clock.sleeps, 6)
}

func TestUntilExhaustsBudget(t *testing.T) {
	clock := &fakeClock{}
	calls := 0

	ok := poll.Until(clock, 100*time.Millisecond, 20, func() bool {
		calls++
		return false
	})

	assert.False(t, ok)
	assert.Equal(t, 20, calls, "exactly the attempt budget, never more")
	assert.Len(t, clock.sleeps, 19, "no sleep after the final attempt")
}

func TestUntilZeroAttempts(t *testing.T) {
	clock := &fakeClock{}
	ok := poll.Until(clock, time.Millisecond, 0, func() bool { return true })
	assert.False(t, ok)
	assert.Empty(t, clock.sleeps)
}

func TestUntilSleepsConfiguredInterval(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	poll.Until(clock, 100*time.Millisecond, 3, func() bool {
		calls++
		return false
	})
	for _, d := range clock.sleeps {
		assert.Equal(t, 100*time.Millisecond, d)
	}
}
