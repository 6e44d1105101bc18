package storefront

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(f *fakeAPI, access, refresh string) *Client {
	return NewClient(f.server.URL+"/",
		WithTokens(access, refresh),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestLogin(t *testing.T) {
	t.Run("Success - Tokens Kept", func(t *testing.T) {
		// Arrange
		f := newFakeAPI(t)
		client := newTestClient(f, "", "")

		// Act
		pair, err := client.Login(context.Background(), "jane@example.com", "secret")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "access-0", pair.AccessToken)

		access, refresh := client.Tokens()
		assert.Equal(t, "access-0", access)
		assert.Equal(t, "refresh-0", refresh)
	})

	t.Run("Failure - Bad Password Is Not Refreshed", func(t *testing.T) {
		// Arrange
		f := newFakeAPI(t)
		client := newTestClient(f, "stale", "refresh-0")

		// Act
		_, err := client.Login(context.Background(), "jane@example.com", "wrong")

		// Assert
		require.Error(t, err)
		assert.True(t, IsStatus(err, http.StatusUnauthorized))

		attempts, _ := f.stats()
		assert.Zero(t, attempts)
	})
}

func TestClientSendsBearerToken(t *testing.T) {
	f := newFakeAPI(t)
	client := newTestClient(f, "access-0", "refresh-0")

	_, err := NewCartAPI(client).Get(context.Background())

	require.NoError(t, err)
	attempts, _ := f.stats()
	assert.Zero(t, attempts)
}

func TestClientRefreshesOnceAndRetries(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "refresh-0")

	// Act
	cart, err := NewCartAPI(client).Get(context.Background())

	// Assert
	require.NoError(t, err)
	assert.NotNil(t, cart)

	attempts, rotations := f.stats()
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, rotations)

	access, refresh := client.Tokens()
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)
	assert.Equal(t, 1, f.gets())
}

func TestClientGivesUpAfterOneRetry(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "refresh-0")

	// Act
	err := client.do(context.Background(), http.MethodGet, "/api/v1/admin/orders", nil, nil)

	// Assert
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "Admin access required", apiErr.Message)

	attempts, _ := f.stats()
	assert.Equal(t, 1, attempts)
}

func TestClientDoesNotRefreshOnIneligibleReview(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "access-0", "refresh-0")

	// Act
	err := client.do(context.Background(), http.MethodPost, "/api/v1/reviews", map[string]any{"rating": 5}, nil)

	// Assert
	assert.True(t, IsStatus(err, http.StatusUnprocessableEntity))
	attempts, _ := f.stats()
	assert.Zero(t, attempts)

	access, refresh := client.Tokens()
	assert.Equal(t, "access-0", access)
	assert.Equal(t, "refresh-0", refresh)
}

func TestClientSharedRefreshOutlivesCancelledCaller(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "refresh-0")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := client.refresh(ctx, "expired")

	// Assert
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Eventually(t, func() bool {
		access, _ := client.Tokens()
		return access == "access-1"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientRefreshRejected(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "revoked")

	// Act
	_, err := NewCartAPI(client).Get(context.Background())

	// Assert
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Zero(t, f.gets())

	access, _ := client.Tokens()
	assert.Equal(t, "expired", access)
}

func TestClientWithoutRefreshTokenReturnsRejection(t *testing.T) {
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "")

	_, err := NewCartAPI(client).Get(context.Background())

	assert.True(t, IsStatus(err, http.StatusForbidden))
	attempts, _ := f.stats()
	assert.Zero(t, attempts)
}

func TestClientConcurrentRejectionsShareOneRefresh(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "expired", "refresh-0")
	api := NewCartAPI(client)

	var wg sync.WaitGroup
	errs := make([]error, 8)

	// Act
	for i := range errs {
		wg.Add(1)

		go func() {
			defer wg.Done()
			_, errs[i] = api.Get(context.Background())
		}()
	}

	wg.Wait()

	// Assert
	for _, err := range errs {
		assert.NoError(t, err)
	}

	_, rotations := f.stats()
	assert.Equal(t, 1, rotations)
}

func TestClientRefreshesAfterServerRotation(t *testing.T) {
	f := newFakeAPI(t)
	client := newTestClient(f, "access-0", "refresh-0")
	api := NewCartAPI(client)

	_, err := api.Get(context.Background())
	require.NoError(t, err)

	f.expireAccess()

	_, err = api.Get(context.Background())
	require.NoError(t, err)

	_, rotations := f.stats()
	assert.Equal(t, 1, rotations)
}

func TestClientDecodesErrorEnvelope(t *testing.T) {
	// Arrange
	f := newFakeAPI(t)
	client := newTestClient(f, "access-0", "refresh-0")

	// Act
	_, err := NewCartAPI(client).AddItem(context.Background(), uuid.New(), 1)

	// Assert
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Contains(t, apiErr.Error(), "Product not found")
}
