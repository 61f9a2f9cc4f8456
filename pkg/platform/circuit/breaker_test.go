package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("kafka", WithFailureThreshold(2), WithCooldown(time.Minute), WithClock(clock.now))

	assert.True(t, b.Allow())
	assert.False(t, b.RecordFailure().Opened)
	assert.True(t, b.RecordFailure().Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow(), "open breaker blocks until the cooldown passes")

	clock.advance(time.Minute)
	assert.True(t, b.Allow(), "one probe per cooldown")
	assert.False(t, b.Allow())

	assert.True(t, b.RecordSuccess().Closed)
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreakerFailedProbeStaysOpen(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("kafka", WithFailureThreshold(1), WithCooldown(time.Second), WithClock(clock.now))

	b.RecordFailure()
	clock.advance(time.Second)
	assert.True(t, b.Allow())
	assert.Equal(t, StateChange{}, b.RecordFailure())
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New("kafka", WithFailureThreshold(2))
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "closed", b.State().String())
}
