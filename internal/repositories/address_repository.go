package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type AddressRepository interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, id uuid.UUID) error
}

type addressRepository struct {
	DB *sql.DB
}

func NewAddressRepo(db *sql.DB) AddressRepository {
	return &addressRepository{DB: db}
}

const addressColumns = `id, user_id, recipient, phone, street, city, state, postal_code, country, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(dest ...any) error }, a *models.Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Recipient, &a.Phone, &a.Street, &a.City, &a.State, &a.PostalCode, &a.Country,
		&a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
}

// A user has at most one default address; saving a new default clears the old one.
func clearDefaultAddress(ctx context.Context, q queryer, userID, keep uuid.UUID) error {
	if _, err := q.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND id <> $2 AND is_default`, userID, keep); err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}

	return nil
}

func (r *addressRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		if address.IsDefault {
			if err := clearDefaultAddress(dbCtx, tx, address.UserID, address.ID); err != nil {
				return err
			}
		}

		return tx.QueryRowContext(dbCtx, `
			INSERT INTO addresses (id, user_id, recipient, phone, street, city, state, postal_code, country, is_default, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			RETURNING created_at, updated_at`,
			address.ID, address.UserID, address.Recipient, address.Phone, address.Street, address.City, address.State,
			address.PostalCode, address.Country, address.IsDefault).Scan(&address.CreatedAt, &address.UpdatedAt)
	})
}

func (r *addressRepository) GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address := &models.Address{}
	if err := scanAddress(r.DB.QueryRowContext(dbCtx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id), address); err != nil {
		return nil, err
	}

	return address, nil
}

func (r *addressRepository) ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, `
		SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*models.Address{}
	for rows.Next() {
		address := &models.Address{}
		if err := scanAddress(rows, address); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, address)
	}

	return addresses, rows.Err()
}

func (r *addressRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		if address.IsDefault {
			if err := clearDefaultAddress(dbCtx, tx, address.UserID, address.ID); err != nil {
				return err
			}
		}

		return tx.QueryRowContext(dbCtx, `
			UPDATE addresses
			SET recipient = $1, phone = $2, street = $3, city = $4, state = $5, postal_code = $6, country = $7,
			    is_default = $8, updated_at = NOW()
			WHERE id = $9
			RETURNING updated_at`,
			address.Recipient, address.Phone, address.Street, address.City, address.State, address.PostalCode,
			address.Country, address.IsDefault, address.ID).Scan(&address.UpdatedAt)
	})
}

func (r *addressRepository) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	return expectAffected(result)
}
