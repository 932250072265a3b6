package thumbcache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidate(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "mip[0]"))

	require.NoError(t, c.Put(0, 7, "jpg", []byte("a")))
	require.NoError(t, c.Put(3, 7, "jpg", []byte("b")))
	require.NoError(t, c.Put(0, 70, "jpg", []byte("c")))

	ok, err := c.Has(7)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Invalidate(7))

	ok, err = c.Has(7)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.Has(70)
	require.NoError(t, err)
	assert.True(t, ok, "other images keep their thumbnails")
}

func TestInvalidate_EmptyCache(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))
	assert.NoError(t, c.Invalidate(1))
}
