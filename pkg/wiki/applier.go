package wiki

import (
	"fmt"
)

// DefaultLimitType is used when a save names no limit type.
const DefaultLimitType = "default"

// Applier applies edits through a PageStore while enforcing per-type
// edit budgets for a single run. With Simulate set nothing is saved.
type Applier struct {
	store    PageStore
	limits   map[string]int
	done     map[string]int
	simulate bool
}

// NewApplier creates an applier with the given per-type budgets. A nil
// limits map allows a single default edit.
func NewApplier(store PageStore, limits map[string]int, simulate bool) *Applier {
	if limits == nil {
		limits = map[string]int{DefaultLimitType: 1}
	}
	copied := make(map[string]int, len(limits))
	for limitType, limit := range limits {
		copied[limitType] = limit
	}
	return &Applier{
		store:    store,
		limits:   copied,
		done:     make(map[string]int),
		simulate: simulate,
	}
}

// TrySave creates or overwrites a page, counting it against the limit
// type's budget. It returns false without error when simulating or when
// the budget is exhausted.
func (a *Applier) TrySave(title, content, summary string, overwrite bool, limitType string) (bool, error) {
	if limitType == "" {
		limitType = DefaultLimitType
	}
	limit, ok := a.limits[limitType]
	if !ok {
		return false, fmt.Errorf("undefined limit type %q", limitType)
	}
	if a.simulate {
		return false, nil
	}
	if a.done[limitType] >= limit {
		return false, nil
	}
	if err := a.store.Save(title, content, summary, overwrite); err != nil {
		return false, fmt.Errorf("failed to save %q: %w", title, err)
	}
	a.done[limitType]++
	return true, nil
}

// Done returns how many edits were applied per limit type.
func (a *Applier) Done() map[string]int {
	result := make(map[string]int, len(a.done))
	for limitType, count := range a.done {
		result[limitType] = count
	}
	return result
}

// Remaining returns how many edits the limit type still allows.
func (a *Applier) Remaining(limitType string) int {
	if limitType == "" {
		limitType = DefaultLimitType
	}
	remaining := a.limits[limitType] - a.done[limitType]
	if remaining < 0 {
		return 0
	}
	return remaining
}
