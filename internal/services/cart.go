package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const validationConcurrency = 8

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ValidateItems(ctx context.Context, lines []models.CartLine) (*models.CartValidation, error)
}

type cartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(repo repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{repo: repo, products: products}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {
	product, err := s.purchasableProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	requested := req.Quantity
	if existing, ok := cart.Item(req.ProductID); ok {
		requested += existing.Quantity
	}

	if requested > product.StockQuantity {
		return nil, insufficientStock(product)
	}

	if err := s.repo.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, appErrors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets the quantity of a line. A quantity below one removes it.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, userID, productID)
	}

	product, err := s.purchasableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if quantity > product.StockQuantity {
		return nil, insufficientStock(product)
	}

	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Item not found in cart").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update cart item").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Item not found in cart").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to remove cart item").WithError(err)
	}

	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearCart(ctx, cart.ID); err != nil {
		return nil, appErrors.DatabaseError("Failed to clear cart").WithError(err)
	}

	cart.Items = []models.CartItem{}
	cart.Recalculate()

	return cart, nil
}

// ValidateItems checks every line against current stock. Duplicate product
// lines are merged first, so the result has one entry per product. Lookups
// run concurrently; a database failure aborts the whole validation.
func (s *cartService) ValidateItems(ctx context.Context, lines []models.CartLine) (*models.CartValidation, error) {
	lines = mergeLines(lines)
	results := make([]models.LineValidation, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(validationConcurrency)

	for i, line := range lines {
		g.Go(func() error {
			result := models.LineValidation{ProductID: line.ProductID, Requested: line.Quantity}

			product, err := s.products.GetProductByID(gctx, line.ProductID)
			switch {
			case errors.Is(err, sql.ErrNoRows):
				result.Reason = "product not found"
			case err != nil:
				return err
			case !product.Purchasable():
				result.Available = product.StockQuantity
				result.Reason = "product unavailable"
			case line.Quantity > product.StockQuantity:
				result.Available = product.StockQuantity
				result.Reason = "insufficient stock"
			default:
				result.Available = product.StockQuantity
				result.Valid = true
			}

			results[i] = result

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, appErrors.DatabaseError("Failed to validate cart").WithError(err)
	}

	validation := &models.CartValidation{Valid: true, Items: results}
	for _, result := range results {
		if !result.Valid {
			validation.Valid = false
			break
		}
	}

	return validation, nil
}

func (s *cartService) purchasableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		return nil, lookupError(err, "Product not found")
	}

	if !product.Purchasable() {
		return nil, appErrors.BadRequestError("Product is not available for purchase")
	}

	return product, nil
}

func insufficientStock(product *models.Product) *appErrors.AppError {
	return appErrors.ConflictError("Insufficient stock").
		WithDetail(fmt.Sprintf("only %d of %s left in stock", product.StockQuantity, product.Name))
}
