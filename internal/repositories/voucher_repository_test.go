package repository_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupVoucherRepoTest(t *testing.T) (repository.VoucherRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewVoucherRepo(db), mock
}

func TestVoucherRepository_CreateVoucher(t *testing.T) {
	insertSQL := regexp.QuoteMeta(`INSERT INTO vouchers`)

	t.Run("Success - Code Stored Upper Case", func(t *testing.T) {
		// Arrange
		repo, mock := setupVoucherRepoTest(t)
		voucher := &models.Voucher{
			ID:          uuid.New(),
			Code:        "save10",
			Type:        models.VoucherPercentage,
			Value:       decimal.NewFromInt(10),
			MinSubtotal: decimal.NewFromInt(20),
			Active:      true,
		}
		now := time.Now()

		mock.ExpectQuery(insertSQL).
			WithArgs(voucher.ID, "SAVE10", "percentage", voucher.Value, voucher.MinSubtotal, "", true, nil).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

		// Act
		err := repo.CreateVoucher(t.Context(), voucher)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, now, voucher.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Duplicate Code", func(t *testing.T) {
		// Arrange
		repo, mock := setupVoucherRepoTest(t)
		voucher := &models.Voucher{ID: uuid.New(), Code: "SAVE10", Type: models.VoucherFixed, Value: decimal.NewFromInt(5)}

		mock.ExpectQuery(insertSQL).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "vouchers_code_key"})

		// Act
		err := repo.CreateVoucher(t.Context(), voucher)

		// Assert
		require.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Contains(t, err.Error(), "vouchers_code_key")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestVoucherRepository_GetVoucherByCode(t *testing.T) {
	selectSQL := regexp.QuoteMeta(`FROM vouchers WHERE code = $1`)
	columns := []string{"id", "code", "type", "value", "min_subtotal", "description", "active", "expires_at", "created_at"}

	t.Run("Success - Case Insensitive Lookup", func(t *testing.T) {
		// Arrange
		repo, mock := setupVoucherRepoTest(t)
		id := uuid.New()
		expires := time.Now().Add(24 * time.Hour)

		mock.ExpectQuery(selectSQL).
			WithArgs("SAVE10").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "SAVE10", "percentage", "10", "20.00", "Ten percent off", true, expires, time.Now()))

		// Act
		voucher, err := repo.GetVoucherByCode(t.Context(), "save10")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, voucher.ID)
		assert.Equal(t, models.VoucherPercentage, voucher.Type)
		assert.True(t, voucher.MinSubtotal.Equal(decimal.NewFromInt(20)))
		require.NotNil(t, voucher.ExpiresAt)
		assert.WithinDuration(t, expires, *voucher.ExpiresAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - No Expiry", func(t *testing.T) {
		repo, mock := setupVoucherRepoTest(t)

		mock.ExpectQuery(selectSQL).
			WithArgs("FLAT5").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New().String(), "FLAT5", "fixed", "5.00", "0", "", true, nil, time.Now()))

		voucher, err := repo.GetVoucherByCode(t.Context(), "FLAT5")

		require.NoError(t, err)
		assert.Nil(t, voucher.ExpiresAt)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		repo, mock := setupVoucherRepoTest(t)

		mock.ExpectQuery(selectSQL).WithArgs("NOPE").WillReturnError(sql.ErrNoRows)

		voucher, err := repo.GetVoucherByCode(t.Context(), "nope")

		assert.Nil(t, voucher)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}
