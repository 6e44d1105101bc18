package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

type VoucherRepository interface {
	CreateVoucher(ctx context.Context, voucher *models.Voucher) error
	GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error)
}

type voucherRepository struct {
	DB *sql.DB
}

func NewVoucherRepo(db *sql.DB) VoucherRepository {
	return &voucherRepository{DB: db}
}

func (r *voucherRepository) CreateVoucher(ctx context.Context, voucher *models.Voucher) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	err := r.DB.QueryRowContext(dbCtx, `
		INSERT INTO vouchers (id, code, type, value, min_subtotal, description, active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at`,
		voucher.ID, strings.ToUpper(voucher.Code), voucher.Type, voucher.Value, voucher.MinSubtotal, voucher.Description,
		voucher.Active, voucher.ExpiresAt).Scan(&voucher.CreatedAt)

	return translateUnique(err)
}

// Codes are stored upper-case and matched case-insensitively.
func (r *voucherRepository) GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		voucher   models.Voucher
		expiresAt sql.NullTime
	)

	err := r.DB.QueryRowContext(dbCtx, `
		SELECT id, code, type, value, min_subtotal, description, active, expires_at, created_at
		FROM vouchers WHERE code = $1`, strings.ToUpper(code)).
		Scan(&voucher.ID, &voucher.Code, &voucher.Type, &voucher.Value, &voucher.MinSubtotal, &voucher.Description,
			&voucher.Active, &expiresAt, &voucher.CreatedAt)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		voucher.ExpiresAt = &expiresAt.Time
	}

	return &voucher, nil
}
