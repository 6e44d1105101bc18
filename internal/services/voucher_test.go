package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApplyVoucher(t *testing.T) {
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name         string
		voucher      *models.Voucher
		subtotal     string
		wantDiscount string
		wantCode     string
	}{
		{
			name:         "Percentage",
			voucher:      &models.Voucher{Code: "TEN", Type: models.VoucherPercentage, Value: decimal.NewFromInt(10), Active: true},
			subtotal:     "59.99",
			wantDiscount: "6",
		},
		{
			name:         "Fixed",
			voucher:      &models.Voucher{Code: "FIVE", Type: models.VoucherFixed, Value: decimal.NewFromInt(5), Active: true, ExpiresAt: &future},
			subtotal:     "20",
			wantDiscount: "5",
		},
		{
			name:         "Fixed Clamped To Subtotal",
			voucher:      &models.Voucher{Code: "BIG", Type: models.VoucherFixed, Value: decimal.NewFromInt(50), Active: true},
			subtotal:     "12.5",
			wantDiscount: "12.5",
		},
		{
			name:     "Inactive",
			voucher:  &models.Voucher{Code: "OFF", Type: models.VoucherFixed, Value: decimal.NewFromInt(5), Active: false},
			subtotal: "20",
			wantCode: appErrors.ErrCodeBadRequest,
		},
		{
			name:     "Expired",
			voucher:  &models.Voucher{Code: "OLD", Type: models.VoucherFixed, Value: decimal.NewFromInt(5), Active: true, ExpiresAt: &past},
			subtotal: "20",
			wantCode: appErrors.ErrCodeBadRequest,
		},
		{
			name:     "Below Minimum Subtotal",
			voucher:  &models.Voucher{Code: "MIN", Type: models.VoucherFixed, Value: decimal.NewFromInt(5), MinSubtotal: decimal.NewFromInt(30), Active: true},
			subtotal: "29.99",
			wantCode: appErrors.ErrCodeBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockRepo := new(mocks.VoucherRepository)
			voucherService := service.NewVoucherService(mockRepo)
			mockRepo.On("GetVoucherByCode", mock.Anything, tc.voucher.Code).Return(tc.voucher, nil).Once()

			// Act
			result, err := voucherService.ApplyVoucher(ctx, tc.voucher.Code, decimal.RequireFromString(tc.subtotal))

			// Assert
			if tc.wantCode != "" {
				assert.Nil(t, result)
				assertAppError(t, err, tc.wantCode)
				return
			}

			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tc.wantDiscount).Equal(result.Discount), "got %s", result.Discount)
			assert.Equal(t, tc.voucher.Code, result.Code)
		})
	}

	t.Run("Unknown Code", func(t *testing.T) {
		mockRepo := new(mocks.VoucherRepository)
		voucherService := service.NewVoucherService(mockRepo)
		mockRepo.On("GetVoucherByCode", mock.Anything, "NOPE").Return(nil, sqlNoRows()).Once()

		_, err := voucherService.ApplyVoucher(ctx, "NOPE", decimal.NewFromInt(10))

		assertAppError(t, err, appErrors.ErrCodeNotFound)
	})
}

func TestCreateVoucher(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Upper Cases Code", func(t *testing.T) {
		mockRepo := new(mocks.VoucherRepository)
		voucherService := service.NewVoucherService(mockRepo)
		mockRepo.On("CreateVoucher", mock.Anything, mock.MatchedBy(func(v *models.Voucher) bool {
			return v.Code == "SPRING10" && v.Active
		})).Return(nil).Once()

		voucher, err := voucherService.CreateVoucher(ctx, &models.CreateVoucherRequest{
			Code: "spring10", Type: models.VoucherPercentage, Value: decimal.NewFromInt(10),
		})

		require.NoError(t, err)
		assert.Equal(t, "SPRING10", voucher.Code)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Failure - Percentage Above 100", func(t *testing.T) {
		voucherService := service.NewVoucherService(new(mocks.VoucherRepository))

		_, err := voucherService.CreateVoucher(ctx, &models.CreateVoucherRequest{
			Code: "HUGE", Type: models.VoucherPercentage, Value: decimal.NewFromInt(150),
		})

		assertAppError(t, err, appErrors.ErrCodeValidation)
	})

	t.Run("Failure - Duplicate Code", func(t *testing.T) {
		mockRepo := new(mocks.VoucherRepository)
		voucherService := service.NewVoucherService(mockRepo)
		mockRepo.On("CreateVoucher", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", repository.ErrDuplicate)).Once()

		_, err := voucherService.CreateVoucher(ctx, &models.CreateVoucherRequest{
			Code: "DUP", Type: models.VoucherFixed, Value: decimal.NewFromInt(1),
		})

		assertAppError(t, err, appErrors.ErrCodeDuplicateEntry)
	})
}
