// Where: cli/internal/provision/policy.go
// What: Retry policy for transient access denials.
// Why: One parameterized policy instead of constants re-derived per call site.
package provision

import "time"

// Policy bounds the retry behavior of EnsureIndex.
//
// Access policies on the collection are eventually consistent with respect to
// index operations: a grant accepted by the control plane may not yet be
// enforced at the data plane, so the first calls after a fresh deployment can
// be denied even though the configuration is correct.
type Policy struct {
	// MaxAttempts caps the total number of network attempts.
	MaxAttempts int
	// BaseDelay is slept after the first transient denial.
	BaseDelay time.Duration
	// DelayIncrement is added per additional denial (linear backoff).
	DelayIncrement time.Duration
	// SafetyMargin is budget reserved after the last sleep so the caller
	// always receives a result before its own deadline.
	SafetyMargin time.Duration
	// MinDelay is the smallest sleep worth taking; when the clamped delay
	// falls below it the run aborts instead of sleeping.
	MinDelay time.Duration
}

// DefaultPolicy matches the deployment environment's 13-minute task budget.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    6,
		BaseDelay:      60 * time.Second,
		DelayIncrement: 30 * time.Second,
		SafetyMargin:   2 * time.Minute,
		MinDelay:       5 * time.Second,
	}
}

// delayFor returns the uncapped backoff delay after the given number of
// transient denials (1-based).
func (p Policy) delayFor(denials int) time.Duration {
	if denials < 1 {
		denials = 1
	}
	return p.BaseDelay + time.Duration(denials-1)*p.DelayIncrement
}
