package globaltime

import (
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	nowFunc = time.Now
)

func Now() time.Time {
	mu.RLock()
	defer mu.RUnlock()
	return nowFunc()
}

// UTC returns the current time in UTC, truncated to microseconds so values
// survive a database round trip unchanged.
func UTC() time.Time {
	return Now().UTC().Truncate(time.Microsecond)
}

// Freeze pins the clock to t until the returned restore func is called.
func Freeze(t time.Time) (restore func()) {
	mu.Lock()
	previous := nowFunc
	nowFunc = func() time.Time { return t }
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		nowFunc = previous
	}
}
