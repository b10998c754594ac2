package util

import "time"

// Clock abstracts the time source so tests can pin CreatedAt timestamps.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
