package shortcuts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/styles/pkg/types"
)

func TestRegistry(t *testing.T) {
	var applied []string
	r := New(func(_ context.Context, name string) error {
		applied = append(applied, name)
		return nil
	})
	ctx := context.Background()

	r.Register(types.ShortcutLabel("b"))
	r.Bind(types.ShortcutLabel("b"), "b")
	r.Bind(types.ShortcutLabel("a"), "a")
	assert.Equal(t, []string{"styles/Apply a", "styles/Apply b"}, r.Labels())

	require.NoError(t, r.Trigger(ctx, "styles/Apply a"))
	assert.Equal(t, []string{"a"}, applied)

	r.Register(types.ShortcutLabel("a"))
	name, ok := r.Lookup("styles/Apply a")
	assert.True(t, ok, "re-registering keeps the binding")
	assert.Equal(t, "a", name)

	r.Deregister(types.ShortcutLabel("a"))
	assert.Equal(t, []string{"styles/Apply b"}, r.Labels())
	assert.ErrorIs(t, r.Trigger(ctx, "styles/Apply a"), types.ErrNoShortcut)
}

func TestRegistry_UnboundLabel(t *testing.T) {
	r := New(nil)
	r.Register("styles/Apply x")
	_, ok := r.Lookup("styles/Apply x")
	assert.False(t, ok)
	assert.ErrorIs(t, r.Trigger(context.Background(), "styles/Apply x"), types.ErrNoShortcut)
}
