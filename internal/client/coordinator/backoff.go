package coordinator

import (
	"math/rand/v2"
	"time"
)

// Backoff computes retry delays: Base * 2^retry plus a jitter in [0, Base),
// capped at Max.
type Backoff struct {
	Base time.Duration
	Max  time.Duration
	// Jitter returns a value in [0, n). Defaults to math/rand/v2.
	Jitter func(n int64) int64
}

func (b Backoff) Delay(retry int) time.Duration {
	if b.Base <= 0 {
		return 0
	}
	if retry < 0 {
		retry = 0
	}

	d := b.Base
	for i := 0; i < retry; i++ {
		d *= 2
		if d >= b.Max || d <= 0 {
			return b.Max
		}
	}

	jitter := b.Jitter
	if jitter == nil {
		jitter = rand.Int64N
	}
	d += time.Duration(jitter(int64(b.Base)))

	return min(d, b.Max)
}
