package harness

import (
	"fmt"
	"path"
	"sync"

	"github.com/roach88/testrig/internal/engine"
)

// SuiteFactory builds a suite bound to the given Runner.
type SuiteFactory func(r *engine.Runner) (*engine.Suite, error)

// Entry is a registered suite.
type Entry struct {
	Name    string
	Factory SuiteFactory
}

// Registry holds suite factories in registration order.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register adds a suite factory. Names must be non-empty and unique after
// NFC normalization.
func (r *Registry) Register(name string, factory SuiteFactory) error {
	if name == "" {
		return fmt.Errorf("register suite: name is required")
	}
	if factory == nil {
		return fmt.Errorf("register suite %q: factory is required", name)
	}

	key := engine.NormalizeName(name)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.index[key]; ok {
		return fmt.Errorf("register suite %q: already registered", name)
	}
	r.index[key] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Factory: factory})
	return nil
}

// MustRegister is Register that panics on error. Intended for init-time
// registration.
func (r *Registry) MustRegister(name string, factory SuiteFactory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Names returns the registered suite names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Match returns the entries whose names match the glob filter, in
// registration order. An empty filter matches everything.
func (r *Registry) Match(filter string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if filter == "" {
		return append([]Entry(nil), r.entries...), nil
	}

	pattern := engine.NormalizeName(filter)
	var out []Entry
	for _, e := range r.entries {
		ok, err := path.Match(pattern, engine.NormalizeName(e.Name))
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", filter, err)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// SuiteResult is the outcome of one suite within a run.
type SuiteResult struct {
	Name         string `json:"name"`
	Tests        int    `json:"tests"`
	SuccessCount int    `json:"success_count"`
	FailureCount int    `json:"failure_count"`
}

// Result is the outcome of Run.
type Result struct {
	RunID        string        `json:"run_id"`
	Suites       []SuiteResult `json:"suites"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
}

// Passed reports whether no test failed.
func (r *Result) Passed() bool {
	return r.FailureCount == 0
}

// Total returns the number of tests logged.
func (r *Result) Total() int {
	return r.SuccessCount + r.FailureCount
}
