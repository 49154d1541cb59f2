package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategory(t *testing.T) {
	t.Run("derives slug from name", func(t *testing.T) {
		c, err := NewCategory("  Engagement Rings ", "", "")
		require.NoError(t, err)
		assert.Equal(t, "Engagement Rings", c.Name)
		assert.Equal(t, "engagement-rings", c.Slug)
		assert.Len(t, c.GetDomainEvents(), 1)
	})

	t.Run("keeps explicit slug", func(t *testing.T) {
		c, err := NewCategory("Necklaces", "Chains", "")
		require.NoError(t, err)
		assert.Equal(t, "chains", c.Slug)
	})

	t.Run("rejects malformed slug", func(t *testing.T) {
		_, err := NewCategory("Necklaces", "neck laces!", "")
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCategory("", "", "")
		assert.Error(t, err)
	})
}

func TestCategory_Update(t *testing.T) {
	c, err := NewCategory("Rings", "", "")
	require.NoError(t, err)
	c.ClearDomainEvents()

	require.NoError(t, c.Update("Wedding Bands", "", "Plain bands", "https://cdn/x.png", 2))
	assert.Equal(t, "wedding-bands", c.Slug)
	assert.Equal(t, 2, c.SortOrder)
	require.Len(t, c.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeCategoryUpdated, c.GetDomainEvents()[0].EventType())
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Rings":             "rings",
		"Rose & Gold!":      "rose-gold",
		"  --Ear  Cuffs-- ": "ear-cuffs",
		"Ünïcode":           "n-code",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestLookup(t *testing.T) {
	t.Run("normalises names", func(t *testing.T) {
		l, err := NewLookup(LookupMetalType, "  rose   GOLD ")
		require.NoError(t, err)
		assert.Equal(t, "Rose Gold", l.Name)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewLookup("materials", "Gold")
		assert.Error(t, err)
	})

	t.Run("rename records event with table as aggregate type", func(t *testing.T) {
		l, err := NewLookup(LookupOccasion, "wedding")
		require.NoError(t, err)
		l.ID = 4
		require.NoError(t, l.Rename("anniversary"))
		assert.Equal(t, "Anniversary", l.Name)
		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "occasions", events[0].AggregateType())
		assert.Equal(t, "4", events[0].AggregateID())
	})

	t.Run("parses url form", func(t *testing.T) {
		k, err := ParseLookupKind("stone-types")
		require.NoError(t, err)
		assert.Equal(t, LookupStoneType, k)
		assert.Equal(t, "stone_type_id", k.ProductColumn())

		_, err = ParseLookupKind("colors")
		assert.Error(t, err)
	})
}
