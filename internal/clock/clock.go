package clock

import "time"

// Clock abstracts time for services and scheduled jobs.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
