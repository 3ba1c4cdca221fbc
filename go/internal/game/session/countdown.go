package session

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// countdown is the local turn timer prediction: a single owned ticker that
// approximates the server's deadline. The server enforces the real timeout;
// this only drives the UI.
type countdown struct {
	clock  clockwork.Clock
	onTick func(remaining int)

	mu        sync.Mutex
	ticker    clockwork.Ticker
	stopCh    chan struct{}
	remaining int
}

func newCountdown(clock clockwork.Clock, onTick func(remaining int)) *countdown {
	return &countdown{clock: clock, onTick: onTick}
}

// reset cancels any running countdown before arming a new one for deadline.
// The previous ticker is always stopped first so repeated turn events can
// never accumulate overlapping tickers.
func (c *countdown) reset(deadline time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	secs := int(math.Ceil(deadline.Sub(c.clock.Now()).Seconds()))
	if secs <= 0 {
		c.remaining = 0
		return
	}
	c.remaining = secs

	ticker := c.clock.NewTicker(time.Second)
	stopCh := make(chan struct{})
	c.ticker = ticker
	c.stopCh = stopCh

	go c.run(ticker, stopCh)
}

func (c *countdown) run(ticker clockwork.Ticker, stopCh chan struct{}) {
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			c.mu.Lock()
			if c.stopCh != stopCh {
				// A newer countdown replaced this one between the tick and
				// the lock.
				c.mu.Unlock()
				return
			}
			c.remaining--
			done := c.remaining <= 0
			if done {
				c.remaining = 0
				c.stopLocked()
			}
			remaining := c.remaining
			c.mu.Unlock()

			if c.onTick != nil {
				c.onTick(remaining)
			}
			if done {
				return
			}
		}
	}
}

// stop halts the countdown, leaving the last remaining value in place. It
// never re-arms.
func (c *countdown) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *countdown) stopLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

// timeLeft returns the remaining whole seconds, never negative.
func (c *countdown) timeLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
