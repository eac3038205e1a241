package authz

import "context"

// Check is one authorization question: may Subject perform Relation on Object.
type Check struct {
	Subject  string // e.g. "user:alice"
	Relation string // e.g. "viewer"
	Object   string // e.g. "resume:a1b2c3"
}

// Result answers one Check. Object is the join key back to the originating
// check; callers must not assume results arrive in request order.
type Result struct {
	Object  string
	Allowed bool
}

// BatchChecker resolves many independent checks against the policy-decision
// service in a single round trip.
type BatchChecker interface {
	BatchCheck(ctx context.Context, checks []Check) ([]Result, error)
}
