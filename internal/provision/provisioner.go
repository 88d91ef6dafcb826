// Where: cli/internal/provision/provisioner.go
// What: Idempotent index provisioning against a remote vector collection.
// Why: Fresh deployments hit a policy-propagation race; handle it in one place.
package provision

import (
	"context"
	"fmt"
	"time"
)

// ProbeState classifies the collection's answer to a single request.
type ProbeState int

const (
	// StateExists: the index is present (existence check) or was just created.
	StateExists ProbeState = iota
	// StateMissing: the index does not exist yet.
	StateMissing
	// StateDenied: the request was rejected by access control.
	StateDenied
	// StateError: any other, non-retryable failure.
	StateError
)

// Probe is the classified result of one request against the collection.
type Probe struct {
	State      ProbeState
	HTTPStatus int
	Detail     string
}

// Collection is the signed-request capability the provisioner operates on.
// Implementations sign and send requests; they never retry on their own.
type Collection interface {
	CheckIndex(ctx context.Context, name string) (Probe, error)
	CreateIndex(ctx context.Context, spec IndexSpec) (Probe, error)
}

// Provisioner ensures a named index exists on a remote collection, tolerating
// transient access denials until a deadline. One invocation per deployment.
type Provisioner struct {
	Collection Collection
	Policy     Policy

	// Now and Sleep are injectable for deterministic tests.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// New constructs a Provisioner with the default retry policy.
func New(collection Collection) *Provisioner {
	return &Provisioner{
		Collection: collection,
		Policy:     DefaultPolicy(),
		Now:        time.Now,
		Sleep:      time.Sleep,
	}
}

type run struct {
	started  time.Time
	deadline time.Time
	attempts []Attempt
	denials  int
}

// EnsureIndex checks for the index and creates it if missing. It always
// returns a terminal Result with the full attempt log before the deadline;
// it never panics or leaks an error past this boundary.
//
// The existence check always runs first, so a re-run after a partial failure
// is a cheap no-op once the index exists.
func (p *Provisioner) EnsureIndex(ctx context.Context, spec IndexSpec, deadline time.Time) Result {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	r := &run{started: now(), deadline: deadline}

	if p.Collection == nil {
		return p.finish(r, StatusFailed, "collection not configured", now)
	}
	if err := spec.Validate(); err != nil {
		return p.finish(r, StatusFailed, err.Error(), now)
	}
	if deadline.Sub(r.started) <= p.Policy.SafetyMargin {
		return p.finish(r, StatusDeadlineExceeded, "deadline leaves no retry window", now)
	}

	// Phase 1: existence check, repeated while access control denies it.
	for {
		attempt := p.begin(r, now)
		probe, err := p.Collection.CheckIndex(ctx, spec.Name)
		if err != nil {
			p.record(r, attempt, OutcomeFailed, 0)
			return p.finish(r, StatusFailed, fmt.Sprintf("existence check: %v", err), now)
		}
		switch probe.State {
		case StateExists:
			p.record(r, attempt, OutcomeSuccess, probe.HTTPStatus)
			return p.finish(r, StatusAlreadyExists, "", now)
		case StateMissing:
			p.record(r, attempt, OutcomeSuccess, probe.HTTPStatus)
		case StateDenied:
			p.record(r, attempt, OutcomeTransientDenied, probe.HTTPStatus)
			if status, detail, ok := p.backoff(r, now, sleep); !ok {
				return p.finish(r, status, detail, now)
			}
			continue
		default:
			p.record(r, attempt, OutcomeFailed, probe.HTTPStatus)
			return p.finish(r, StatusFailed, probe.Detail, now)
		}
		break
	}

	// Phase 2: creation, with the same denial tolerance.
	for {
		attempt := p.begin(r, now)
		probe, err := p.Collection.CreateIndex(ctx, spec)
		if err != nil {
			p.record(r, attempt, OutcomeFailed, 0)
			return p.finish(r, StatusFailed, fmt.Sprintf("create index: %v", err), now)
		}
		switch probe.State {
		case StateExists:
			p.record(r, attempt, OutcomeSuccess, probe.HTTPStatus)
			return p.finish(r, StatusCreated, "", now)
		case StateDenied:
			p.record(r, attempt, OutcomeTransientDenied, probe.HTTPStatus)
			if status, detail, ok := p.backoff(r, now, sleep); !ok {
				return p.finish(r, status, detail, now)
			}
		default:
			p.record(r, attempt, OutcomeFailed, probe.HTTPStatus)
			return p.finish(r, StatusFailed, probe.Detail, now)
		}
	}
}

func (p *Provisioner) begin(r *run, now func() time.Time) Attempt {
	return Attempt{
		Number:    len(r.attempts) + 1,
		StartedAt: now(),
		Outcome:   OutcomePending,
	}
}

func (p *Provisioner) record(r *run, attempt Attempt, outcome Outcome, httpStatus int) {
	attempt.Outcome = outcome
	attempt.HTTPStatus = httpStatus
	r.attempts = append(r.attempts, attempt)
	if outcome == OutcomeTransientDenied {
		r.denials++
	}
}

// backoff decides whether another attempt fits into the remaining budget and,
// if so, sleeps the clamped linear-backoff delay. The delay is shrunk so that
// now + delay + SafetyMargin never crosses the deadline.
func (p *Provisioner) backoff(r *run, now func() time.Time, sleep func(time.Duration)) (Status, string, bool) {
	if len(r.attempts) >= p.Policy.MaxAttempts {
		return StatusFailed, fmt.Sprintf("access still denied after %d attempts", len(r.attempts)), false
	}

	delay := p.Policy.delayFor(r.denials)
	budget := r.deadline.Sub(now()) - p.Policy.SafetyMargin
	if budget < delay {
		delay = budget
	}
	if delay < p.Policy.MinDelay {
		return StatusDeadlineExceeded, "remaining budget cannot accommodate another retry", false
	}

	sleep(delay)
	return "", "", true
}

func (p *Provisioner) finish(r *run, status Status, detail string, now func() time.Time) Result {
	attempts := r.attempts
	if attempts == nil {
		attempts = []Attempt{}
	}
	return Result{
		Status:              status,
		Attempts:            attempts,
		TotalElapsedSeconds: now().Sub(r.started).Seconds(),
		Detail:              detail,
	}
}
