package review

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates pending review", func(t *testing.T) {
		r, err := New(uuid.New(), uuid.New(), "Jane", 5, " Stunning ", "Even better in person.")
		require.NoError(t, err)
		assert.Equal(t, StatusPending, r.Status)
		assert.Equal(t, "Stunning", r.Title)
		require.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeReviewSubmitted, r.GetDomainEvents()[0].EventType())
	})

	t.Run("rating bounds", func(t *testing.T) {
		_, err := New(uuid.New(), uuid.New(), "Jane", 0, "", "ok")
		assert.Error(t, err)
		_, err = New(uuid.New(), uuid.New(), "Jane", 6, "", "ok")
		assert.Error(t, err)
	})

	t.Run("comment required", func(t *testing.T) {
		_, err := New(uuid.New(), uuid.New(), "Jane", 4, "", "   ")
		assert.Error(t, err)
	})
}

func TestReview_Moderation(t *testing.T) {
	r, err := New(uuid.New(), uuid.New(), "Jane", 4, "", "Nice")
	require.NoError(t, err)

	require.NoError(t, r.Approve())
	assert.Equal(t, StatusApproved, r.Status)
	assert.Error(t, r.Approve())

	require.NoError(t, r.Reject())
	assert.Equal(t, StatusRejected, r.Status)
}

func TestSummarize(t *testing.T) {
	mk := func(rating int, status Status) *Review {
		return &Review{Rating: rating, Status: status}
	}
	summary := Summarize([]*Review{
		mk(5, StatusApproved),
		mk(4, StatusApproved),
		mk(4, StatusApproved),
		mk(1, StatusRejected),
		mk(1, StatusPending),
	})
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, "4.33", summary.Average.StringFixed(2))

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.Average.IsZero())
}
