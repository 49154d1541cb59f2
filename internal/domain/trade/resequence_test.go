package trade

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPlanResequence(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("already dense", func(t *testing.T) {
		plan := PlanResequence([]OrderRef{
			{ID: 1, CreatedAt: base},
			{ID: 2, CreatedAt: base.Add(time.Minute)},
		})
		assert.True(t, plan.IsNoop())
		assert.Equal(t, 2, plan.Count)
	})

	t.Run("gap after delete", func(t *testing.T) {
		// order 2 was deleted
		plan := PlanResequence([]OrderRef{
			{ID: 1, CreatedAt: base},
			{ID: 3, CreatedAt: base.Add(2 * time.Minute)},
			{ID: 4, CreatedAt: base.Add(3 * time.Minute)},
		})
		assert.Equal(t, []IDMove{{From: 3, To: 5}, {From: 4, To: 6}}, plan.Stage)
		assert.Equal(t, []IDMove{{From: 5, To: 2}, {From: 6, To: 3}}, plan.Final)
		assert.Equal(t, 3, plan.Count)
	})

	t.Run("orders by created_at not by id", func(t *testing.T) {
		plan := PlanResequence([]OrderRef{
			{ID: 1, CreatedAt: base.Add(time.Hour)},
			{ID: 2, CreatedAt: base},
		})
		assert.Equal(t, []IDMove{{From: 2, To: 3}, {From: 1, To: 4}}, plan.Stage)
		assert.Equal(t, []IDMove{{From: 3, To: 1}, {From: 4, To: 2}}, plan.Final)
	})

	t.Run("ties broken by current id", func(t *testing.T) {
		plan := PlanResequence([]OrderRef{
			{ID: 9, CreatedAt: base},
			{ID: 5, CreatedAt: base},
		})
		assert.Equal(t, []IDMove{{From: 5, To: 10}, {From: 9, To: 11}}, plan.Stage)
		assert.Equal(t, []IDMove{{From: 10, To: 1}, {From: 11, To: 2}}, plan.Final)
	})

	t.Run("no final id collides with an unmoved order", func(t *testing.T) {
		refs := []OrderRef{
			{ID: 2, CreatedAt: base.Add(2 * time.Minute)},
			{ID: 7, CreatedAt: base},
			{ID: 3, CreatedAt: base.Add(3 * time.Minute)},
			{ID: 4, CreatedAt: base.Add(time.Minute)},
		}
		plan := PlanResequence(refs)

		occupied := map[int64]bool{}
		for _, r := range refs {
			occupied[r.ID] = true
		}
		for _, m := range plan.Stage {
			assert.False(t, occupied[m.To], "stage target %d in use", m.To)
			delete(occupied, m.From)
			occupied[m.To] = true
		}
		for _, m := range plan.Final {
			assert.False(t, occupied[m.To], "final target %d in use", m.To)
			delete(occupied, m.From)
			occupied[m.To] = true
		}
		assert.Equal(t, map[int64]bool{1: true, 2: true, 3: true, 4: true}, occupied)
	})

	t.Run("empty", func(t *testing.T) {
		plan := PlanResequence(nil)
		assert.True(t, plan.IsNoop())
		assert.Equal(t, 0, plan.Count)
	})
}

func TestNewOrdersResequencedEvent(t *testing.T) {
	plan := ResequencePlan{
		Stage: []IDMove{{From: 3, To: 5}},
		Final: []IDMove{{From: 5, To: 2}},
		Count: 2,
	}
	event := NewOrdersResequencedEvent(plan)
	assert.Equal(t, []IDMove{{From: 3, To: 2}}, event.Moves)
	assert.Equal(t, AggregateTypeOrder, event.AggregateType())
}
