package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cusco = domain.TravelPackage{ID: "pkg-1", Title: "Cusco", Price: "450.00"}

func TestCart_AddKeepsDuplicates(t *testing.T) {
	var c Cart
	c.Add(cusco)
	c.Add(cusco)

	assert.Equal(t, 2, c.Size())
	assert.Equal(t, cusco, c.Items[0])
	assert.Equal(t, cusco, c.Items[1])
}

func TestCart_ClearAlwaysEmpties(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		var c Cart
		for i := 0; i < n; i++ {
			c.Add(cusco)
		}
		c.Clear()
		assert.True(t, c.Empty())
		assert.Equal(t, 0, c.Size())
	}
}

func TestCart_SnapshotIsDetached(t *testing.T) {
	var c Cart
	c.Add(cusco)
	snap := c.Snapshot()
	c.Clear()

	assert.Len(t, snap, 1)
}

func TestMemoryStore_PerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c, err := store.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, c.Empty())

	added, err := store.AddItem(ctx, "alice", cusco)
	require.NoError(t, err)
	assert.Equal(t, 1, added.Size())

	other, err := store.GetCart(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, other.Empty())

	again, err := store.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Size())

	require.NoError(t, store.DeleteCart(ctx, "alice"))
	gone, err := store.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, gone.Empty())
}

func TestMemoryStore_ConcurrentAddsAreKept(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.AddItem(ctx, "alice", domain.TravelPackage{ID: fmt.Sprintf("pkg-%d", i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := store.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 50, c.Size())
}

func TestMemoryStore_RemoveItemsKeepsLaterAdds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, id := range []string{"a", "b", "c"} {
		_, err := store.AddItem(ctx, "alice", domain.TravelPackage{ID: id})
		require.NoError(t, err)
	}

	require.NoError(t, store.RemoveItems(ctx, "alice", 2))
	c, err := store.GetCart(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, c.Size())
	assert.Equal(t, "c", c.Items[0].ID)

	require.NoError(t, store.RemoveItems(ctx, "alice", 5))
	c, err = store.GetCart(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, c.Empty())
}
