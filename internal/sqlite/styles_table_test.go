package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/styles/internal/paramcodec"
	"github.com/mesh-intelligence/styles/pkg/types"
)

type upperNamer struct{}

func (upperNamer) DisplayName(op string) string { return strings.ToUpper(op) }

func threeItems() []types.StyleItem {
	return []types.StyleItem{
		{Num: 0, Module: 1, Operation: "exposure", OpParams: []byte{0x00, 0x10}, Enabled: true, BlendopParams: []byte{0x01}, BlendopVersion: 4},
		{Num: 1, Module: 2, Operation: "colorout", OpParams: []byte{0x01, 0x02}, Enabled: false, BlendopParams: []byte{}, BlendopVersion: 4},
		{Num: 2, Module: 1, Operation: "exposure", OpParams: []byte{0xff}, Enabled: true, BlendopParams: []byte{0x02, 0x03}, BlendopVersion: 4, MultiPriority: 1, MultiName: "1"},
	}
}

func TestStyleStore_CreateHeader(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	id, err := s.CreateHeader(ctx, "sepia", "warm tones")
	require.NoError(t, err)
	assert.NotZero(t, id)

	t.Run("duplicate name fails and leaves original untouched", func(t *testing.T) {
		_, err := s.CreateHeader(ctx, "sepia", "something else")
		assert.ErrorIs(t, err, types.ErrStyleExists)

		desc, err := s.GetDescription(ctx, "sepia")
		require.NoError(t, err)
		assert.Equal(t, "warm tones", desc)

		got, err := s.GetID(ctx, "sepia")
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("empty name is rejected", func(t *testing.T) {
		_, err := s.CreateHeader(ctx, "", "x")
		assert.ErrorIs(t, err, types.ErrInvalidName)
	})
}

func TestStyleStore_GetIDPrefersNewestLegacyDuplicate(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	s := NewStyleStore(b, nil)

	db, err := b.conn()
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO styles (name, description) VALUES ('dup', 'old'), ('dup', 'new')")
	require.NoError(t, err)

	desc, err := s.GetDescription(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, "new", desc)
}

func TestStyleStore_ExistsAndGetIDUnknown(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	ok, err := s.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.GetID(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrStyleNotFound)

	_, err = s.GetDescription(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrStyleNotFound)
}

func TestStyleStore_List(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	for _, st := range []types.Style{
		{Name: "vivid", Description: "punchy colours"},
		{Name: "bw", Description: "monochrome"},
		{Name: "sepia", Description: "warm mono 100%"},
	} {
		_, err := s.CreateHeader(ctx, st.Name, st.Description)
		require.NoError(t, err)
	}

	names := func(styles []types.Style) []string {
		var out []string
		for _, st := range styles {
			out = append(out, st.Name)
		}
		return out
	}

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"bw", "sepia", "vivid"}, names(all))

	mono, err := s.List(ctx, "mono")
	require.NoError(t, err)
	assert.Equal(t, []string{"bw", "sepia"}, names(mono))

	byName, err := s.List(ctx, "viv")
	require.NoError(t, err)
	assert.Equal(t, []string{"vivid"}, names(byName))

	literal, err := s.List(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, []string{"sepia"}, names(literal))
}

func TestStyleStore_ListItems(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), upperNamer{})

	_, err := s.CreateStyle(ctx, "sepia", "", threeItems())
	require.NoError(t, err)

	full, err := s.ListItems(ctx, "sepia", true)
	require.NoError(t, err)
	require.Len(t, full, 3)
	assert.Equal(t, []int{2, 1, 0}, []int{full[0].Num, full[1].Num, full[2].Num})
	assert.Equal(t, "exposure", full[0].Operation)
	assert.Equal(t, []byte{0xff}, full[0].OpParams)
	assert.Equal(t, []byte{0x02, 0x03}, full[0].BlendopParams)
	assert.Equal(t, "1", full[0].MultiName)
	assert.Equal(t, []byte{}, full[1].BlendopParams)

	display, err := s.ListItems(ctx, "sepia", false)
	require.NoError(t, err)
	require.Len(t, display, 3)
	assert.Equal(t, "EXPOSURE (on)", display[0].Operation)
	assert.Equal(t, "COLOROUT (off)", display[1].Operation)
	assert.Nil(t, display[0].OpParams)
	assert.Nil(t, display[0].BlendopParams)

	text, err := s.ItemListString(ctx, "sepia")
	require.NoError(t, err)
	assert.Equal(t, "EXPOSURE (on)\nCOLOROUT (off)\nEXPOSURE (on)", text)

	none, err := s.ListItems(ctx, "unknown", true)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStyleStore_ItemsFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	id, err := s.CreateStyle(ctx, "sepia", "", threeItems())
	require.NoError(t, err)

	all, err := s.Items(ctx, id, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 0, all[0].Num)

	some, err := s.Items(ctx, id, []int{2, 0})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, []int{0, 2}, []int{some[0].Num, some[1].Num})
}

func TestStyleStore_ItemsLargeFilter(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	var items []types.StyleItem
	for i := 0; i < 1200; i++ {
		items = append(items, types.StyleItem{Num: i, Operation: "op"})
	}
	id, err := s.CreateStyle(ctx, "big", "", items)
	require.NoError(t, err)

	var filter []int
	for i := 0; i < 1200; i += 2 {
		filter = append(filter, i)
	}
	got, err := s.Items(ctx, id, filter)
	require.NoError(t, err)
	require.Len(t, got, 600)
	assert.Equal(t, 1198, got[len(got)-1].Num)

	require.NoError(t, s.ReplaceItems(ctx, id, filter))
	left, err := s.Items(ctx, id, nil)
	require.NoError(t, err)
	assert.Len(t, left, 600)
	for _, it := range left {
		assert.Zero(t, it.Num%2)
	}
}

func TestStyleStore_ReplaceItems(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	id, err := s.CreateStyle(ctx, "sepia", "", threeItems())
	require.NoError(t, err)

	require.NoError(t, s.ReplaceItems(ctx, id, nil))
	all, err := s.Items(ctx, id, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3, "empty filter keeps everything")

	require.NoError(t, s.ReplaceItems(ctx, id, []int{1}))
	left, err := s.Items(ctx, id, nil)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, 1, left[0].Num)
}

func TestStyleStore_Update(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	_, err := s.CreateStyle(ctx, "A", "first", threeItems())
	require.NoError(t, err)
	_, err = s.CreateHeader(ctx, "taken", "")
	require.NoError(t, err)

	t.Run("rename onto existing style fails without changes", func(t *testing.T) {
		err := s.Update(ctx, "A", "taken", "x", []int{0})
		assert.ErrorIs(t, err, types.ErrStyleExists)

		items, err := s.ListItems(ctx, "A", true)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("unknown style", func(t *testing.T) {
		err := s.Update(ctx, "nope", "B", "", nil)
		assert.ErrorIs(t, err, types.ErrStyleNotFound)
	})

	t.Run("rename, redescribe and prune", func(t *testing.T) {
		require.NoError(t, s.Update(ctx, "A", "B", "second", []int{0}))

		ok, err := s.Exists(ctx, "A")
		require.NoError(t, err)
		assert.False(t, ok)

		desc, err := s.GetDescription(ctx, "B")
		require.NoError(t, err)
		assert.Equal(t, "second", desc)

		items, err := s.ListItems(ctx, "B", true)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 0, items[0].Num)
	})
}

func TestStyleStore_Delete(t *testing.T) {
	ctx := context.Background()
	b := newTestBackend(t)
	s := NewStyleStore(b, nil)

	id, err := s.CreateStyle(ctx, "sepia", "", threeItems())
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, "sepia")
	require.NoError(t, err)
	assert.True(t, deleted)

	items, err := s.ListItems(ctx, "sepia", true)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.GetID(ctx, "sepia")
	assert.ErrorIs(t, err, types.ErrStyleNotFound)

	db, err := b.conn()
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM style_items WHERE styleid = ?", id).Scan(&n))
	assert.Zero(t, n)

	deleted, err = s.Delete(ctx, "sepia")
	require.NoError(t, err, "delete is idempotent")
	assert.False(t, deleted)
}

func TestStyleStore_SaveItemDecodesBlobs(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	id, err := s.CreateHeader(ctx, "sepia", "")
	require.NoError(t, err)

	err = s.SaveItem(ctx, id, types.EncodedStyleItem{
		Num:           0,
		Operation:     "colorout",
		OpParams:      paramcodec.Encode([]byte{0x01, 0x02}),
		Enabled:       true,
		BlendopParams: "",
	})
	require.NoError(t, err)

	items, err := s.ListItems(ctx, "sepia", true)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, []byte{0x01, 0x02}, items[0].OpParams)
	assert.Equal(t, []byte{}, items[0].BlendopParams)
	assert.True(t, items[0].Enabled)
}

func TestStyleStore_ImportStyleIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := NewStyleStore(newTestBackend(t), nil)

	_, err := s.CreateHeader(ctx, "sepia", "original")
	require.NoError(t, err)

	_, err = s.ImportStyle(ctx, "sepia", "imported", []types.EncodedStyleItem{
		{Num: 0, Operation: "colorout", OpParams: "0102"},
	})
	assert.ErrorIs(t, err, types.ErrStyleExists)

	items, err := s.ListItems(ctx, "sepia", true)
	require.NoError(t, err)
	assert.Empty(t, items, "no partial item rows on duplicate header")

	id, err := s.ImportStyle(ctx, "sepia copy", "imported", []types.EncodedStyleItem{
		{Num: 1, Operation: "colorout", OpParams: "0102", Enabled: true},
		{Num: 0, Operation: "exposure", OpParams: "ff"},
	})
	require.NoError(t, err)
	got, err := s.Items(ctx, id, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "exposure", got[0].Operation)
	assert.Equal(t, []byte{0xff}, got[0].OpParams)
}
