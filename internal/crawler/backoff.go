package crawler

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// backoffPolicy computes jittered exponential delays between retry attempts.
type backoffPolicy struct {
	baseDelay time.Duration
	maxDelay  time.Duration
}

func newBackoffPolicy(base, maxDelay time.Duration) *backoffPolicy {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	if maxDelay < base {
		maxDelay = 8 * time.Second
	}
	return &backoffPolicy{baseDelay: base, maxDelay: maxDelay}
}

// Delay returns the wait before attempt+1, doubling per attempt and capped at
// maxDelay, with up to 50% random jitter.
func (p *backoffPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.baseDelay) * math.Pow(2, float64(attempt))
	if delay > float64(p.maxDelay) {
		delay = float64(p.maxDelay)
	}
	half := time.Duration(delay / 2)
	return half + randomJitter(half)
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}
