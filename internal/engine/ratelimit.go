package engine

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// maxLimiterBurst bounds how many bytes a sync may read ahead of its
// bandwidth budget.
const maxLimiterBurst = 1 << 20

// NewBWLimiter returns the token bucket shared by every file of one sync.
// Tokens are bytes; the bucket never holds more than a second's worth or
// maxLimiterBurst, whichever is smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(min(bytesPerSec, maxLimiterBurst)))
}

// throttledReader charges each read of a file's content against the sync's
// limiter. Reads are cut down to the bucket size so a single WaitN can
// always be satisfied.
type throttledReader struct {
	ctx     context.Context
	src     io.Reader
	limiter *rate.Limiter
}

func throttle(ctx context.Context, src io.Reader, limiter *rate.Limiter) io.Reader {
	return &throttledReader{ctx: ctx, src: src, limiter: limiter}
}

func (t *throttledReader) Read(p []byte) (int, error) {
	if b := t.limiter.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	n, err := t.src.Read(p)
	if n == 0 {
		return 0, err
	}
	if werr := t.limiter.WaitN(t.ctx, n); werr != nil {
		return n, werr
	}
	return n, err
}
