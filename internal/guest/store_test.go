package guest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Slots {
	t.Helper()

	sqlite, err := Open(filepath.Join(t.TempDir(), "guest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Slots{
		"sqlite": sqlite,
		"memory": NewMemoryStore(),
	}
}

func TestSlots(t *testing.T) {
	ctx := context.Background()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			slot := NewSlot(store, CartSlot)

			value, err := slot.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, value, "missing slot reads as nil")

			require.NoError(t, slot.Save(ctx, []byte(`[{"id":"p1"}]`)))
			require.NoError(t, slot.Save(ctx, []byte(`[{"id":"p2"}]`)))

			value, err = slot.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"p2"}]`, string(value))

			other, err := store.Get(ctx, SessionSlot)
			require.NoError(t, err)
			assert.Nil(t, other, "slots are independent")

			require.NoError(t, slot.Delete(ctx))
			value, err = slot.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, value)

			// deleting twice is fine
			assert.NoError(t, slot.Delete(ctx))
		})
	}
}

func TestSQLiteStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "guest.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, SessionSlot, []byte("token")))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, SessionSlot)
	require.NoError(t, err)
	assert.Equal(t, "token", string(value))
	assert.Equal(t, path, second.Path())
}

func TestInMemorySQLite(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Slot(CartSlot).Save(ctx, []byte("[]")))
	value, err := store.Slot(CartSlot).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value))
}
