package protocols

import "time"

// Timer is a one-shot timer handle. Stop reports whether the call prevented
// the timer from firing.
type Timer interface {
	Stop() bool
}

type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Sleeper interface {
	Sleep(duration time.Duration)
}
