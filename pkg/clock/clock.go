package clock

import "time"

// Clock abstracts wall-clock reads so cache-TTL and indexing behavior stays
// deterministic under test.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
