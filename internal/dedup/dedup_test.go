package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingCache(t *testing.T) {
	dir := t.TempDir()

	c := NewListingCache(dir)
	assert.False(t, c.IsSeen("deadbeef"))

	c.Add([]string{"deadbeef", "cafebabe"})
	assert.True(t, c.IsSeen("deadbeef"))
	assert.True(t, c.IsSeen("cafebabe"))

	// survives reload
	c2 := NewListingCache(dir)
	assert.True(t, c2.IsSeen("deadbeef"))
	assert.False(t, c2.IsSeen("other"))
}
