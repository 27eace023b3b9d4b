package shared

import "time"

// Clock abstracts time for services that stamp payments and due dates,
// so tests can pin the instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
