package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	t.Run("it should add, look up, and remove values", func(t *testing.T) {
		// GIVEN
		s := New[string]()

		// WHEN
		s.Add("a")
		s.Add("b")
		s.Add("a")

		// THEN
		assert.Equal(t, 2, s.Size())
		assert.True(t, s.Contains("a"))
		assert.False(t, s.Contains("c"))

		s.Remove("a")
		assert.False(t, s.Contains("a"))
		assert.Equal(t, 1, s.Size())
	})
}
