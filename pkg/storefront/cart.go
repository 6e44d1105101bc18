package storefront

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

const cartPath = "/api/v1/cart"

// CartAPI wraps the cart endpoints. Every call returns the server's view.
type CartAPI struct {
	client *Client
}

func NewCartAPI(client *Client) *CartAPI {
	return &CartAPI{client: client}
}

func (a *CartAPI) Get(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := a.client.do(ctx, http.MethodGet, cartPath, nil, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (a *CartAPI) AddItem(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	var cart Cart

	body := CartLine{ProductID: productID, Quantity: quantity}
	if err := a.client.do(ctx, http.MethodPost, cartPath+"/items", body, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// UpdateItem sets a line's quantity; the server drops the line below one.
func (a *CartAPI) UpdateItem(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	var cart Cart

	body := map[string]int{"quantity": quantity}
	if err := a.client.do(ctx, http.MethodPut, cartPath+"/items/"+productID.String(), body, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (a *CartAPI) RemoveItem(ctx context.Context, productID uuid.UUID) (*Cart, error) {
	var cart Cart
	if err := a.client.do(ctx, http.MethodDelete, cartPath+"/items/"+productID.String(), nil, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (a *CartAPI) Clear(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := a.client.do(ctx, http.MethodDelete, cartPath, nil, &cart); err != nil {
		return nil, err
	}

	return &cart, nil
}

// Validate checks the lines against current stock without changing the cart.
func (a *CartAPI) Validate(ctx context.Context, lines []CartLine) (*CartValidation, error) {
	var validation CartValidation

	body := map[string][]CartLine{"items": lines}
	if err := a.client.do(ctx, http.MethodPost, cartPath+"/validate", body, &validation); err != nil {
		return nil, err
	}

	return &validation, nil
}

// CartStore caches the server cart for a UI. Every successful mutation is
// followed by a full refetch; the mutation's own response is discarded and
// nothing is computed locally. When refetches overlap the last response to
// arrive is kept. Safe for concurrent use.
type CartStore struct {
	api *CartAPI

	mu          sync.RWMutex
	cart        *Cart
	subscribers map[int]func(*Cart)
	nextID      int
}

func NewCartStore(api *CartAPI) *CartStore {
	return &CartStore{api: api, subscribers: make(map[int]func(*Cart))}
}

// Cart returns a copy of the cached cart, or nil before the first Refresh.
func (s *CartStore) Cart() *Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cart.clone()
}

// Subscribe registers fn to receive every refreshed cart. The returned
// function removes the subscription.
func (s *CartStore) Subscribe(fn func(*Cart)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.subscribers, id)
	}
}

func (s *CartStore) Refresh(ctx context.Context) (*Cart, error) {
	cart, err := s.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cart = cart
	subscribers := make([]func(*Cart), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(cart.clone())
	}

	return cart.clone(), nil
}

func (s *CartStore) Add(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) error {
		_, err := s.api.AddItem(ctx, productID, quantity)
		return err
	})
}

func (s *CartStore) Update(ctx context.Context, productID uuid.UUID, quantity int) (*Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) error {
		_, err := s.api.UpdateItem(ctx, productID, quantity)
		return err
	})
}

func (s *CartStore) Remove(ctx context.Context, productID uuid.UUID) (*Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) error {
		_, err := s.api.RemoveItem(ctx, productID)
		return err
	})
}

func (s *CartStore) Clear(ctx context.Context) (*Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) error {
		_, err := s.api.Clear(ctx)
		return err
	})
}

func (s *CartStore) mutate(ctx context.Context, call func(context.Context) error) (*Cart, error) {
	if err := call(ctx); err != nil {
		return nil, err
	}

	return s.Refresh(ctx)
}
