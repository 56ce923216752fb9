package playback

import "time"

// Clock abstracts wall time so the timer can be driven by tests.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f once after d; the returned func cancels it.
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}
