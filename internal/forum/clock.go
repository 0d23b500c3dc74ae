package forum

import "time"

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now returns the function's time in UTC
func (f ClockFunc) Now() time.Time {
	return f().UTC()
}

// SystemClock reads the wall clock in UTC, truncated to the precision postgres keeps
var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().Truncate(time.Microsecond)
})
