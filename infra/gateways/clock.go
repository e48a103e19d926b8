package gateways

import (
	"time"

	"github.com/harvicreates/inventory/protocols"
)

type Clock struct{}

func NewClock() *Clock {
	return &Clock{}
}

func (c *Clock) Now() time.Time {
	return time.Now()
}

func (c *Clock) AfterFunc(d time.Duration, f func()) protocols.Timer {
	return time.AfterFunc(d, f)
}

type Sleeper struct{}

func NewSleeper() *Sleeper {
	return &Sleeper{}
}

func (s *Sleeper) Sleep(duration time.Duration) {
	time.Sleep(duration)
}
