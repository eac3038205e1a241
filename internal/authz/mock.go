package authz

import (
	"context"
	"sync"
)

// Mock is a scriptable BatchChecker for tests and local dev. Decisions are
// keyed by object; objects without an entry get AllowAll. It records every
// batch it receives and every tuple written to it.
type Mock struct {
	AllowAll  bool
	Decisions map[string]bool
	Err       error // returned from BatchCheck when set

	mu      sync.Mutex
	batches [][]Check
	tuples  []Tuple
}

var (
	_ BatchChecker = (*Mock)(nil)
	_ TupleWriter  = (*Mock)(nil)
)

func (m *Mock) BatchCheck(ctx context.Context, checks []Check) ([]Result, error) {
	m.mu.Lock()
	batch := make([]Check, len(checks))
	copy(batch, checks)
	m.batches = append(m.batches, batch)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]Result, 0, len(checks))
	for _, chk := range checks {
		allowed, ok := m.Decisions[chk.Object]
		if !ok {
			allowed = m.AllowAll
		}
		results = append(results, Result{Object: chk.Object, Allowed: allowed})
	}
	return results, nil
}

func (m *Mock) WriteTuples(ctx context.Context, tuples ...Tuple) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.tuples = append(m.tuples, tuples...)
	return nil
}

// Batches returns a copy of the recorded batch calls.
func (m *Mock) Batches() [][]Check {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]Check, len(m.batches))
	copy(out, m.batches)
	return out
}

// Tuples returns a copy of the recorded tuple writes.
func (m *Mock) Tuples() []Tuple {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Tuple, len(m.tuples))
	copy(out, m.tuples)
	return out
}
