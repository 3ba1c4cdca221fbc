package session

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestCountdownTicksDownToZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cd := newCountdown(clock, nil)

	cd.reset(clock.Now().Add(3 * time.Second))
	assert.Equal(t, 3, cd.timeLeft())

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 2 },
		time.Second, time.Millisecond)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 1 },
		time.Second, time.Millisecond)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 0 },
		time.Second, time.Millisecond)

	// Stopped at zero: it never goes negative and never re-arms.
	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, cd.timeLeft())
}

func TestCountdownIsMonotonicallyNonIncreasing(t *testing.T) {
	clock := clockwork.NewFakeClock()

	var mu sync.Mutex
	var seen []int
	cd := newCountdown(clock, func(remaining int) {
		mu.Lock()
		seen = append(seen, remaining)
		mu.Unlock()
	})

	cd.reset(clock.Now().Add(5 * time.Second))
	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		assert.Eventually(t, func() bool { return cd.timeLeft() == 4-i },
			time.Second, time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		assert.LessOrEqual(t, seen[i], seen[i-1])
	}
	assert.GreaterOrEqual(t, seen[len(seen)-1], 0)
}

func TestCountdownResetDiscardsPriorInterval(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cd := newCountdown(clock, nil)

	cd.reset(clock.Now().Add(30 * time.Second))
	assert.Equal(t, 30, cd.timeLeft())

	// A new turn event rearms unconditionally; the old interval must not
	// keep decrementing the fresh value.
	cd.reset(clock.Now().Add(60 * time.Second))
	assert.Equal(t, 60, cd.timeLeft())

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 59 },
		time.Second, time.Millisecond)

	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 58 },
		time.Second, time.Millisecond)
	assert.Never(t, func() bool { return cd.timeLeft() < 58 },
		100*time.Millisecond, 10*time.Millisecond)
}

func TestCountdownCeilsPartialSeconds(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cd := newCountdown(clock, nil)

	cd.reset(clock.Now().Add(2500 * time.Millisecond))
	assert.Equal(t, 3, cd.timeLeft())
}

func TestCountdownPastDeadlineStaysAtZero(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cd := newCountdown(clock, nil)

	cd.reset(clock.Now().Add(-time.Second))
	assert.Equal(t, 0, cd.timeLeft())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 0, cd.timeLeft())
}

func TestCountdownStopHaltsWithoutRearming(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cd := newCountdown(clock, nil)

	cd.reset(clock.Now().Add(10 * time.Second))
	clock.Advance(time.Second)
	assert.Eventually(t, func() bool { return cd.timeLeft() == 9 },
		time.Second, time.Millisecond)

	cd.stop()
	clock.Advance(5 * time.Second)
	assert.Equal(t, 9, cd.timeLeft(), "stop freezes the last value")

	// stop is idempotent.
	cd.stop()
}
