// Package usage tracks per-resource usage against the tenant's plan quotas
// for feature gating. It is pure in-memory bookkeeping: callers report
// absolute usage counts, the tracker never increments on its own.
package usage

import (
	"fmt"
	"sync"
)

// Unlimited marks a resource with no cap.
const Unlimited int64 = -1

// Warning thresholds as fractions of the limit.
const (
	warningThreshold  = 0.80
	criticalThreshold = 0.95
)

// Limit is a per-resource cap. A Max of [Unlimited] means no cap.
type Limit struct {
	Resource string
	Max      int64
}

// Check is the result of a quota query.
type Check struct {
	// Allowed reports whether current+increment fits under the limit.
	Allowed bool

	// Unlimited is true when the resource has no cap; Limit, Remaining and
	// Percentage are meaningless in that case.
	Unlimited bool

	Current    int64
	Limit      int64
	Remaining  int64
	Percentage float64
}

// Severity grades a Warning.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Warning flags a resource at or above the warning threshold.
type Warning struct {
	Resource string
	Message  string
	Severity Severity
}

// Tracker holds the tenant's limits and current usage. Safe for concurrent
// use.
type Tracker struct {
	mu     sync.RWMutex
	order  []string
	limits map[string]int64
	counts map[string]int64
}

// NewTracker creates an empty Tracker with no limits set.
func NewTracker() *Tracker {
	return &Tracker{
		limits: make(map[string]int64),
		counts: make(map[string]int64),
	}
}

// SetLimits replaces the limit set. Declaration order is preserved and
// drives the ordering of [Tracker.Warnings].
func (t *Tracker) SetLimits(limits []Limit) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.order = t.order[:0]
	t.limits = make(map[string]int64, len(limits))
	for _, l := range limits {
		if _, ok := t.limits[l.Resource]; !ok {
			t.order = append(t.order, l.Resource)
		}
		t.limits[l.Resource] = l.Max
	}
}

// SetUsage records the current usage count for a resource. The count is
// absolute, not an increment.
func (t *Tracker) SetUsage(resource string, count int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if count < 0 {
		count = 0
	}
	t.counts[resource] = count
}

// CheckLimit reports whether adding increment to the resource's current
// usage stays within its limit. A resource absent from the limit set, or
// with an unlimited cap, is always allowed.
func (t *Tracker) CheckLimit(resource string, increment int64) Check {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.check(resource, increment)
}

func (t *Tracker) check(resource string, increment int64) Check {
	current := t.counts[resource]
	limit, ok := t.limits[resource]
	if !ok || limit == Unlimited {
		return Check{
			Allowed:   true,
			Unlimited: true,
			Current:   current,
			Limit:     Unlimited,
		}
	}

	remaining := limit - current
	if remaining < 0 {
		remaining = 0
	}
	pct := float64(0)
	if limit > 0 {
		pct = float64(current) / float64(limit) * 100
	}

	return Check{
		Allowed:    current+increment <= limit,
		Current:    current,
		Limit:      limit,
		Remaining:  remaining,
		Percentage: pct,
	}
}

// IsNearLimit reports whether the resource is at or above the given
// fraction of its limit. A threshold <= 0 defaults to 0.8. Unlimited
// resources are never near their limit.
func (t *Tracker) IsNearLimit(resource string, threshold float64) bool {
	if threshold <= 0 {
		threshold = warningThreshold
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	c := t.check(resource, 0)
	if c.Unlimited {
		return false
	}
	return c.Percentage >= threshold*100
}

// Warnings returns one entry per bounded resource at or above 80% of its
// limit, graded critical at 95% and warning below that, in limit
// declaration order.
func (t *Tracker) Warnings() []Warning {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var warnings []Warning
	for _, resource := range t.order {
		c := t.check(resource, 0)
		if c.Unlimited || c.Percentage < warningThreshold*100 {
			continue
		}

		severity := SeverityWarning
		if c.Percentage >= criticalThreshold*100 {
			severity = SeverityCritical
		}
		warnings = append(warnings, Warning{
			Resource: resource,
			Severity: severity,
			Message: fmt.Sprintf("%s usage at %.0f%% (%d/%d)",
				resource, c.Percentage, c.Current, c.Limit),
		})
	}
	return warnings
}

// Snapshot returns the current check result for every limited resource,
// keyed by resource name.
func (t *Tracker) Snapshot() map[string]Check {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := make(map[string]Check, len(t.order))
	for _, resource := range t.order {
		snap[resource] = t.check(resource, 0)
	}
	return snap
}
