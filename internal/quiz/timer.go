package quiz

import "fmt"

// DefaultDurationSeconds is the countdown length of a session
const DefaultDurationSeconds = 1800

// Countdown counts whole seconds down to zero. It does not schedule itself,
// the controller feeds it one Tick per elapsed second while playing.
type Countdown struct {
	total     int
	remaining int
	expired   bool
}

func NewCountdown(seconds int) Countdown {
	c := Countdown{}
	c.Reset(seconds)
	return c
}

func (c *Countdown) Reset(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	c.total = seconds
	c.remaining = seconds
	c.expired = false
}

// Tick removes one second. It reports true exactly once, on the tick that reaches zero.
func (c *Countdown) Tick() bool {
	if c.expired || c.remaining <= 0 {
		return false
	}
	c.remaining--
	if c.remaining == 0 {
		c.expired = true
		return true
	}
	return false
}

func (c *Countdown) Remaining() int { return c.remaining }

func (c *Countdown) Elapsed() int { return c.total - c.remaining }

func (c *Countdown) Expired() bool { return c.expired }

// FormatClock renders seconds as M:SS
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
