package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const defaultPingTimeout = 5 * time.Second

var (
	// ErrInsufficientStock is returned when a conditional stock decrement matches no row.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStatusChanged is returned when a row no longer carries the status the caller read.
	ErrStatusChanged = errors.New("status changed concurrently")
	// ErrDuplicate wraps unique constraint violations.
	ErrDuplicate = errors.New("duplicate entry")
)

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}

	return err
}

// Repositories bundles the postgres-backed repositories sharing one pool.
type Repositories struct {
	DB           *sql.DB
	Users        UserRepository
	Products     ProductRepository
	Carts        CartRepository
	Orders       OrderRepository
	Payments     PaymentRepository
	Reviews      ReviewRepository
	Addresses    AddressRepository
	Shipping     ShippingRepository
	Vouchers     VoucherRepository
	Notification NotificationRepository
}

func New(cfg *config.Config) (*Repositories, error) {
	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithSpanOptions(otelsql.SpanOptions{OmitConnResetSession: true}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewRepositories(db), nil
}

// NewRepositories wires every repository onto an existing pool.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:           db,
		Users:        NewUserRepo(db),
		Products:     NewProductRepo(db),
		Carts:        NewCartRepo(db),
		Orders:       NewOrderRepo(db),
		Payments:     NewPaymentRepo(db),
		Reviews:      NewReviewRepo(db),
		Addresses:    NewAddressRepo(db),
		Shipping:     NewShippingRepo(db),
		Vouchers:     NewVoucherRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func expectAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
