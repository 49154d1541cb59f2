package contact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubmission(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := NewSubmission(" Jane ", "JANE@example.com", "", "Sizing", "Do you resize rings?")
		require.NoError(t, err)
		assert.Equal(t, "Jane", s.Name)
		assert.Equal(t, "jane@example.com", s.Email)
		assert.Equal(t, StatusNew, s.Status)
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := NewSubmission("Jane", "nope", "", "", "Do you resize rings?")
		assert.Error(t, err)
	})

	t.Run("short message", func(t *testing.T) {
		_, err := NewSubmission("Jane", "jane@example.com", "", "", "hi")
		assert.Error(t, err)
	})
}

func TestSubmission_Status(t *testing.T) {
	s, err := NewSubmission("Jane", "jane@example.com", "", "", "Do you resize rings?")
	require.NoError(t, err)
	s.ClearDomainEvents()

	assert.True(t, s.MarkRead())
	assert.Equal(t, StatusRead, s.Status)
	assert.False(t, s.MarkRead())

	require.NoError(t, s.SetStatus(StatusReplied))
	assert.Equal(t, StatusReplied, s.Status)
	assert.False(t, s.MarkRead())
	assert.Equal(t, StatusReplied, s.Status)

	assert.Error(t, s.SetStatus("spam"))
	assert.Len(t, s.GetDomainEvents(), 2)
}
