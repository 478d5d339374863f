// Package throttle holds the pacing policy for directory calls. The backend
// rate limits are respected cooperatively: every page fetch and every batch
// submission goes through one strict limiter, so calls are spaced at least
// one interval apart.
package throttle

import (
	"time"

	"go.uber.org/ratelimit"
)

// Policy bounds how the cleaner talks to the directory: the batch size for
// combined delete requests and the minimum interval between directory calls.
type Policy struct {
	BatchSize int
	limiter   ratelimit.Limiter
}

// DefaultInterval is the pause between paginated fetches and between batch
// submissions.
const DefaultInterval = 3 * time.Second

// New builds a policy spacing calls at least interval apart. A
// non-positive interval disables pacing.
func New(batchSize int, interval time.Duration) Policy {
	if interval <= 0 {
		return Unlimited(batchSize)
	}
	return Policy{
		BatchSize: batchSize,
		limiter:   ratelimit.New(1, ratelimit.Per(interval), ratelimit.WithoutSlack),
	}
}

// Unlimited builds a policy with no pacing, for tests.
func Unlimited(batchSize int) Policy {
	return Policy{BatchSize: batchSize, limiter: ratelimit.NewUnlimited()}
}

// Default is the production policy: batches of 20, one call per 3 seconds.
func Default() Policy {
	return New(20, DefaultInterval)
}

// Pace blocks until the next directory call is allowed.
func (p Policy) Pace() {
	p.limiter.Take()
}
