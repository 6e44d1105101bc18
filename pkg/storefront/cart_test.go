package storefront

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartStoreRefetchesAfterEveryMutation(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)
	ctx := context.Background()

	// Act
	added, err := store.Add(ctx, mug, 2)
	require.NoError(t, err)

	updated, err := store.Update(ctx, mug, 3)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 2, f.gets())
	assert.Equal(t, 2, added.TotalItems)
	assert.Equal(t, 3, updated.TotalItems)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("37.50")))
	assert.Equal(t, 3, store.Cart().TotalItems)
}

func TestCartStoreAddToEmptyCart(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)
	ctx := context.Background()

	empty, err := store.Refresh(ctx)
	require.NoError(t, err)
	require.Empty(t, empty.Items)
	require.Equal(t, 0, empty.TotalItems)

	// Act
	cart, err := store.Add(ctx, mug, 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, cart.TotalItems)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 1, store.Cart().TotalItems)
}

func TestCartStoreRemovesLines(t *testing.T) {
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)
	lamp := f.addProduct("Lamp", "40.00", 2)
	ctx := context.Background()

	_, err := store.Add(ctx, mug, 1)
	require.NoError(t, err)
	_, err = store.Add(ctx, lamp, 1)
	require.NoError(t, err)

	t.Run("Zero Quantity Drops The Line", func(t *testing.T) {
		cart, err := store.Update(ctx, mug, 0)

		require.NoError(t, err)
		_, found := cart.Item(mug)
		assert.False(t, found)
		assert.Len(t, cart.Items, 1)
	})

	t.Run("Remove", func(t *testing.T) {
		cart, err := store.Remove(ctx, lamp)

		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Zero(t, cart.TotalItems)
	})

	t.Run("Remove Missing Line", func(t *testing.T) {
		_, err := store.Remove(ctx, lamp)

		assert.True(t, IsNotFound(err))
	})
}

func TestCartStoreClear(t *testing.T) {
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)
	ctx := context.Background()

	_, err := store.Add(ctx, mug, 4)
	require.NoError(t, err)

	cart, err := store.Clear(ctx)

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())
}

func TestCartStoreMutationErrorSkipsRefetch(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	lamp := f.addProduct("Lamp", "40.00", 1)

	// Act
	_, err := store.Add(context.Background(), lamp, 2)

	// Assert
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Zero(t, f.gets())
	assert.Nil(t, store.Cart())
}

func TestCartStoreSubscribers(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)
	ctx := context.Background()

	var seen []int
	unsubscribe := store.Subscribe(func(c *Cart) { seen = append(seen, c.TotalItems) })

	// Act
	_, err := store.Add(ctx, mug, 1)
	require.NoError(t, err)
	_, err = store.Add(ctx, mug, 1)
	require.NoError(t, err)

	unsubscribe()

	_, err = store.Add(ctx, mug, 1)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []int{1, 2}, seen)
}

func TestCartStoreCopiesAreIndependent(t *testing.T) {
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "12.50", 10)

	_, err := store.Add(context.Background(), mug, 1)
	require.NoError(t, err)

	snapshot := store.Cart()
	snapshot.Items[0].Quantity = 99

	assert.Equal(t, 1, store.Cart().Items[0].Quantity)
}

func TestCartStoreConcurrentMutations(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	store := NewCartStore(NewCartAPI(newTestClient(f, "access-0", "refresh-0")))
	mug := f.addProduct("Mug", "1.00", 100)
	ctx := context.Background()

	var wg sync.WaitGroup

	// Act
	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, err := store.Add(ctx, mug, 1)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	cart, err := store.Refresh(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 10, cart.TotalItems)
	assert.Equal(t, 11, f.gets())
}
