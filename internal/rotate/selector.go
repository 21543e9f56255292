// Package rotate contains the rotation core: the pure retirement selector
// and the orchestrator that sequences the rotation state machine.
package rotate

import (
	"github.com/systmms/awsrotate/internal/awsgw"
)

// Reason says why a key was recommended for retirement.
type Reason string

const (
	// ReasonInactive: the key is inactive; inactive keys go first.
	ReasonInactive Reason = "inactive"
	// ReasonOldest: all keys are active; the oldest one goes.
	ReasonOldest Reason = "oldest"
	// ReasonNone: nothing needs to be retired.
	ReasonNone Reason = "none"
)

// Plan is the selector's recommendation. Never persisted, recomputed every
// run. The orchestrator presents it for confirmation and accepts an
// explicit override.
type Plan struct {
	Key    *awsgw.AccessKey
	Reason Reason
}

// Recommend picks the key to retire when the user is at the provider's
// key cap. Priority: inactive before active, earliest creation time first,
// key ID order as the deterministic tie-break. Below the cap there is
// nothing to retire. boundID identifies the key the target profile is
// bound to; the policy does not depend on it, callers pass it so the
// recommendation is computed against the same snapshot the UI shows.
func Recommend(keys []awsgw.AccessKey, boundID string) Plan {
	if len(keys) < awsgw.MaxAccessKeys {
		return Plan{Reason: ReasonNone}
	}

	if victim := earliest(keys, awsgw.StatusInactive); victim != nil {
		return Plan{Key: victim, Reason: ReasonInactive}
	}
	if victim := earliest(keys, awsgw.StatusActive); victim != nil {
		return Plan{Key: victim, Reason: ReasonOldest}
	}

	// Defensive: reachable only if every key has an unknown status.
	return Plan{Reason: ReasonNone}
}

// earliest returns the key with the given status that has the earliest
// creation time, ties broken by lexicographic ID. Nil when none match.
func earliest(keys []awsgw.AccessKey, status awsgw.KeyStatus) *awsgw.AccessKey {
	var best *awsgw.AccessKey
	for i := range keys {
		key := &keys[i]
		if key.Status != status {
			continue
		}
		if best == nil || key.CreatedAt.Before(best.CreatedAt) ||
			(key.CreatedAt.Equal(best.CreatedAt) && key.ID < best.ID) {
			best = key
		}
	}
	if best == nil {
		return nil
	}
	picked := *best
	return &picked
}
