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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProductRepoTest(t *testing.T) (repository.ProductRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return repository.NewProductRepo(db), mock
}

var productCols = []string{"id", "category_id", "name", "description", "price", "stock_quantity", "sku", "image_url", "status", "created_at", "updated_at"}

func TestProductRepository_GetProductByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo, mock := setupProductRepoTest(t)
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(id.String(), 3, "Mug", "ceramic", "12.50", 7, "MUG-001", "", "active", now, now))

		product, err := repo.GetProductByID(t.Context(), id)

		require.NoError(t, err)
		assert.Equal(t, "Mug", product.Name)
		assert.Equal(t, 7, product.StockQuantity)
		assert.Equal(t, "12.5", product.Price.String())
		assert.True(t, product.Purchasable())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		repo, mock := setupProductRepoTest(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM products WHERE id = $1`)).WillReturnError(sql.ErrNoRows)

		product, err := repo.GetProductByID(t.Context(), uuid.New())

		assert.Nil(t, product)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_ListProducts(t *testing.T) {
	t.Run("Category And Search Filters", func(t *testing.T) {
		repo, mock := setupProductRepoTest(t)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE category_id = $1 AND (name ILIKE $2 OR description ILIKE $2)`)).
			WithArgs(int64(3), "%mug%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $3 OFFSET $4`)).
			WithArgs(int64(3), "%mug%", 10, 10).
			WillReturnRows(sqlmock.NewRows(productCols).AddRow(uuid.NewString(), 3, "Mug", "", "12.50", 7, "MUG-001", "", "active", now, now))

		products, total, err := repo.ListProducts(t.Context(), models.ProductFilter{CategoryID: 3, Search: " mug "}, 2, 10)

		require.NoError(t, err)
		assert.Equal(t, 11, total)
		assert.Len(t, products, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Filters", func(t *testing.T) {
		repo, mock := setupProductRepoTest(t)

		mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM products$`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC LIMIT $1 OFFSET $2`)).
			WithArgs(10, 0).
			WillReturnRows(sqlmock.NewRows(productCols))

		products, total, err := repo.ListProducts(t.Context(), models.ProductFilter{}, 1, 10)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, products)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProductRepository_DeleteProduct(t *testing.T) {
	repo, mock := setupProductRepoTest(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteProduct(t.Context(), id)

	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
