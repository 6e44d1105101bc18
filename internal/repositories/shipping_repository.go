package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type ShippingRepository interface {
	CreateMethod(ctx context.Context, method *models.ShippingMethod) error
	GetMethodByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error)
	ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error)
	UpdateMethod(ctx context.Context, method *models.ShippingMethod) error
}

type shippingRepository struct {
	DB *sql.DB
}

func NewShippingRepo(db *sql.DB) ShippingRepository {
	return &shippingRepository{DB: db}
}

const shippingColumns = `id, name, description, cost, estimated_days, active, created_at, updated_at`

func scanShippingMethod(row interface{ Scan(dest ...any) error }, m *models.ShippingMethod) error {
	return row.Scan(&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.Active, &m.CreatedAt, &m.UpdatedAt)
}

func (r *shippingRepository) CreateMethod(ctx context.Context, method *models.ShippingMethod) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return r.DB.QueryRowContext(dbCtx, `
		INSERT INTO shipping_methods (id, name, description, cost, estimated_days, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`,
		method.ID, method.Name, method.Description, method.Cost, method.EstimatedDays, method.Active).
		Scan(&method.CreatedAt, &method.UpdatedAt)
}

func (r *shippingRepository) GetMethodByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	method := &models.ShippingMethod{}
	if err := scanShippingMethod(r.DB.QueryRowContext(dbCtx, `SELECT `+shippingColumns+` FROM shipping_methods WHERE id = $1`, id), method); err != nil {
		return nil, err
	}

	return method, nil
}

func (r *shippingRepository) ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + shippingColumns + ` FROM shipping_methods`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY cost, name`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping methods: %w", err)
	}
	defer rows.Close()

	methods := []*models.ShippingMethod{}
	for rows.Next() {
		method := &models.ShippingMethod{}
		if err := scanShippingMethod(rows, method); err != nil {
			return nil, fmt.Errorf("failed to scan shipping method: %w", err)
		}
		methods = append(methods, method)
	}

	return methods, rows.Err()
}

func (r *shippingRepository) UpdateMethod(ctx context.Context, method *models.ShippingMethod) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return r.DB.QueryRowContext(dbCtx, `
		UPDATE shipping_methods
		SET name = $1, description = $2, cost = $3, estimated_days = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`,
		method.Name, method.Description, method.Cost, method.EstimatedDays, method.Active, method.ID).Scan(&method.UpdatedAt)
}
