package trade

import (
	"sort"
	"time"
)

// OrderRef is the identity and creation time of an order
type OrderRef struct {
	ID        int64
	CreatedAt time.Time
}

// IDMove renames one order
type IDMove struct {
	From int64
	To   int64
}

// ResequencePlan renumbers orders to 1..N in creation order.
// Applying Stage then Final never collides with an existing key: staged IDs
// are above the current maximum and final IDs are either vacated by the
// staging step or already held by the same order.
type ResequencePlan struct {
	Stage []IDMove
	Final []IDMove
	Count int
}

// IsNoop reports whether every order already has its target ID
func (p ResequencePlan) IsNoop() bool {
	return len(p.Final) == 0
}

// PlanResequence computes the moves that make order IDs dense. Orders are
// ranked by CreatedAt, ties broken by the current ID.
func PlanResequence(refs []OrderRef) ResequencePlan {
	ordered := make([]OrderRef, len(refs))
	copy(ordered, refs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	var maxID int64
	for _, r := range ordered {
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	plan := ResequencePlan{Count: len(ordered)}
	for i, r := range ordered {
		target := int64(i + 1)
		if r.ID == target {
			continue
		}
		temp := maxID + int64(len(plan.Stage)+1)
		plan.Stage = append(plan.Stage, IDMove{From: r.ID, To: temp})
		plan.Final = append(plan.Final, IDMove{From: temp, To: target})
	}
	return plan
}
