package payment

import "time"

const (
	DefaultInterval       = 3 * time.Second
	DefaultMaxAttempts    = 20
	DefaultInitGrace      = 1500 * time.Millisecond
	DefaultRetainTerminal = 15 * time.Minute
)

// Config bounds a polling session. The defaults give the payer a 60-second
// window (20 attempts, 3 seconds apart) preceded by a short connecting grace
// period. RetainTerminal is how long a concluded session stays readable
// before it is evicted. All of these are configurable so tests can shrink
// them to near zero.
type Config struct {
	Interval       time.Duration
	MaxAttempts    int
	InitGrace      time.Duration
	RetainTerminal time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitGrace < 0 {
		c.InitGrace = 0
	}
	if c.RetainTerminal <= 0 {
		c.RetainTerminal = DefaultRetainTerminal
	}
	return c
}

// Budget is the nominal confirmation window shown to the payer.
func (c Config) Budget() time.Duration {
	return time.Duration(c.MaxAttempts) * c.Interval
}
