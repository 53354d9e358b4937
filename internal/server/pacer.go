package server

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer splits bodies into chunks and spaces them out in time so clients see
// the short reads a slow link produces.
type pacer struct {
	size  int
	delay time.Duration
}

// send calls emit once per chunk of body, waiting delay between chunks.
// It returns the number of bytes emitted.
func (p pacer) send(ctx context.Context, body []byte, emit func([]byte) error) (int64, error) {
	size := p.size
	if size <= 0 {
		size = len(body)
	}

	var lim *rate.Limiter
	if p.delay > 0 {
		// Burst of one: the first chunk goes out immediately.
		lim = rate.NewLimiter(rate.Every(p.delay), 1)
	}

	var sent int64
	for len(body) > 0 {
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return sent, err
			}
		} else if err := ctx.Err(); err != nil {
			return sent, err
		}

		n := min(size, len(body))
		if err := emit(body[:n]); err != nil {
			return sent, err
		}
		sent += int64(n)
		body = body[n:]
	}
	return sent, nil
}
