package booking

import "time"

// Location is the salon's local time. The schedule runs on a fixed +5:30
// offset; no DST rules apply.
var Location = time.FixedZone("IST", 5*3600+30*60)

// Clock supplies the current time so that "today" and "already elapsed"
// decisions can be pinned in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().In(Location)
}

// SystemClock returns a Clock backed by the wall clock in salon local time.
func SystemClock() Clock {
	return systemClock{}
}
