package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/styles/pkg/types"
)

func entries(ops ...string) []types.HistoryEntry {
	out := make([]types.HistoryEntry, len(ops))
	for i, op := range ops {
		out[i] = types.HistoryEntry{Num: i, Operation: op, OpParams: []byte{byte(i)}, Enabled: true}
	}
	return out
}

func TestHistoryTable_AppendAndRead(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	imgs := NewImagesTable(b)
	h := NewHistoryTable(b, 0)

	img, err := imgs.Add(ctx, "a.raw")
	require.NoError(t, err)

	require.NoError(t, h.AppendHistory(ctx, img, entries("exposure", "colorin", "colorout")))

	got, err := h.HistoryEntries(ctx, img)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "colorin", got[1].Operation)
	assert.Equal(t, []byte{0x02}, got[2].OpParams)
	assert.Equal(t, img, got[0].ImageID)
	assert.Equal(t, []byte{}, got[0].BlendopParams)

	n, err := h.Count(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	err = h.AppendHistory(ctx, 999, entries("exposure"))
	assert.ErrorIs(t, err, types.ErrImageNotFound)
}

func TestHistoryTable_ReplaceAndClear(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	img, err := NewImagesTable(b).Add(ctx, "a.raw")
	require.NoError(t, err)
	h := NewHistoryTable(b, 0)

	require.NoError(t, h.AppendHistory(ctx, img, entries("exposure", "colorin")))
	require.NoError(t, h.ReplaceHistory(ctx, img, entries("sharpen")))

	got, err := h.HistoryEntries(ctx, img)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sharpen", got[0].Operation)

	require.NoError(t, h.ClearHistory(ctx, img))
	got, err = h.HistoryEntries(ctx, img)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistoryTable_RemoveOperations(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	img, err := NewImagesTable(b).Add(ctx, "a.raw")
	require.NoError(t, err)
	h := NewHistoryTable(b, 0)

	require.NoError(t, h.AppendHistory(ctx, img, entries("exposure", "colorin", "exposure", "sharpen")))

	n, err := h.RemoveOperations(ctx, img, []string{"exposure", "vignette"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := h.HistoryEntries(ctx, img)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "colorin", got[0].Operation)
	assert.Equal(t, 1, got[0].Num, "remaining entries keep their num")

	n, err = h.RemoveOperations(ctx, img, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryTable_Editor(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)

	closed := NewHistoryTable(b, 0)
	assert.False(t, closed.IsCurrentlyOpen(0))
	assert.NoError(t, closed.ReloadHistory(ctx, 1))

	h := NewHistoryTable(b, 7)
	assert.True(t, h.IsCurrentlyOpen(7))
	assert.False(t, h.IsCurrentlyOpen(8))

	var reloaded []int64
	h.OnReload(func(imgid int64) { reloaded = append(reloaded, imgid) })
	require.NoError(t, h.ReloadHistory(ctx, 7))
	assert.Equal(t, []int64{7}, reloaded)
}
