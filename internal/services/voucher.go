package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type VoucherService interface {
	CreateVoucher(ctx context.Context, req *models.CreateVoucherRequest) (*models.Voucher, error)
	ApplyVoucher(ctx context.Context, code string, subtotal decimal.Decimal) (*models.VoucherDiscount, error)
}

type voucherService struct {
	repo repository.VoucherRepository
	now  func() time.Time
}

func NewVoucherService(repo repository.VoucherRepository) VoucherService {
	return &voucherService{repo: repo, now: time.Now}
}

func (s *voucherService) CreateVoucher(ctx context.Context, req *models.CreateVoucherRequest) (*models.Voucher, error) {
	if !req.Value.IsPositive() {
		return nil, appErrors.AddValidationError("value", "must be greater than zero")
	}
	if req.Type == models.VoucherPercentage && req.Value.GreaterThan(hundred) {
		return nil, appErrors.AddValidationError("value", "percentage cannot exceed 100")
	}
	if req.MinSubtotal.IsNegative() {
		return nil, appErrors.AddValidationError("min_subtotal", "cannot be negative")
	}

	voucher := &models.Voucher{
		ID:          uuid.New(),
		Code:        strings.ToUpper(req.Code),
		Type:        req.Type,
		Value:       req.Value,
		MinSubtotal: req.MinSubtotal,
		Description: req.Description,
		Active:      true,
		ExpiresAt:   req.ExpiresAt,
	}

	if err := s.repo.CreateVoucher(ctx, voucher); err != nil {
		if isDuplicate(err) {
			return nil, appErrors.DuplicateEntryError("Voucher code already exists").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create voucher").WithError(err)
	}

	return voucher, nil
}

// ApplyVoucher computes the discount a voucher grants on subtotal without
// redeeming it.
func (s *voucherService) ApplyVoucher(ctx context.Context, code string, subtotal decimal.Decimal) (*models.VoucherDiscount, error) {
	if subtotal.IsNegative() {
		return nil, appErrors.AddValidationError("subtotal", "cannot be negative")
	}

	voucher, err := s.repo.GetVoucherByCode(ctx, code)
	if err != nil {
		return nil, lookupError(err, "Voucher not found")
	}

	if !voucher.Active || (voucher.ExpiresAt != nil && !s.now().Before(*voucher.ExpiresAt)) {
		return nil, appErrors.BadRequestError("Voucher is no longer valid")
	}

	if subtotal.LessThan(voucher.MinSubtotal) {
		return nil, appErrors.BadRequestError(fmt.Sprintf("Voucher requires a minimum subtotal of %s", voucher.MinSubtotal.StringFixed(2)))
	}

	return &models.VoucherDiscount{
		Code:        voucher.Code,
		Discount:    discountFor(voucher, subtotal),
		Description: voucher.Description,
	}, nil
}

// discountFor never exceeds the subtotal and is rounded to cents.
func discountFor(voucher *models.Voucher, subtotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch voucher.Type {
	case models.VoucherPercentage:
		discount = subtotal.Mul(voucher.Value).Div(hundred)
	default:
		discount = voucher.Value
	}

	return decimal.Min(discount, subtotal).Round(2)
}
