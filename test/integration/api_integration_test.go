package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newCheckoutService(t *testing.T, testDB *TestDB, txCapable bool) service.CheckoutService {
	t.Helper()

	logger := zerolog.Nop()

	cfg := config.CheckoutConfig{
		ShippingFee:           10.0,
		FreeShippingThreshold: 100.0,
		OrderNumberPrefix:     "ORD",
		TxMode:                config.TxModeAuto,
	}

	return service.NewCheckoutService(
		repository.NewOrderRepository(testDB.DB, logger),
		repository.NewProductRepository(testDB.DB, logger),
		repository.NewCartRepository(testDB.DB, logger),
		coupon.NewResolver(nil, logger),
		payment.NewGatewayVerifier("", 5*time.Second, logger),
		cache.NoopCache{},
		service.NewMongoTxRunner(testDB.Client),
		txCapable,
		cfg,
		logger,
	)
}

func checkoutRequest(userID string) *model.CheckoutRequest {
	return &model.CheckoutRequest{
		UserID:        userID,
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		Phone:         "+44123456789",
		Address1:      "1 Analytical Way",
		City:          "London",
		PostCode:      "EC1A 1BB",
		Country:       "GB",
		PaymentMethod: model.PaymentMethodCOD,
	}
}

func TestCheckout_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := SetupTestDB(t)
	ctx := context.Background()
	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(testDB.DB, logger)
	orderRepo := repository.NewOrderRepository(testDB.DB, logger)
	cartRepo := repository.NewCartRepository(testDB.DB, logger)

	t.Run("places an order end to end", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, testDB.TxCapable)

		p1 := SeedProduct(t, testDB.DB, "tea", 10.00, 50)
		p2 := SeedProduct(t, testDB.DB, "mug", 25.00, 50)
		SeedCartLine(t, testDB.DB, "user-1", p1.ID, 2)
		SeedCartLine(t, testDB.DB, "user-1", p2.ID, 1)

		order, replayed, err := svc.PlaceOrder(ctx, checkoutRequest("user-1"))
		require.NoError(t, err)
		assert.False(t, replayed)

		assert.Equal(t, 45.00, order.SubTotal)
		assert.Equal(t, 10.00, order.ShippingCost)
		assert.Equal(t, 55.00, order.TotalAmount)

		// Stock decremented and cart cleared.
		got, err := productRepo.GetByID(ctx, p1.ID)
		require.NoError(t, err)
		assert.Equal(t, 48, got.Stock)

		_, err = cartRepo.LoadItems(ctx, "user-1")
		assert.ErrorIs(t, err, model.ErrEmptyCart)

		// Order durable under its number.
		stored, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, order.OrderNumber, stored.OrderNumber)
	})

	t.Run("concurrent checkouts never oversell", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, testDB.TxCapable)

		p := SeedProduct(t, testDB.DB, "rare", 99.00, 3)
		SeedCartLine(t, testDB.DB, "user-1", p.ID, 2)
		SeedCartLine(t, testDB.DB, "user-2", p.ID, 2)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, user := range []string{"user-1", "user-2"} {
			wg.Add(1)
			go func(i int, user string) {
				defer wg.Done()
				_, _, errs[i] = svc.PlaceOrder(ctx, checkoutRequest(user))
			}(i, user)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				var domainErr *model.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, model.ErrCodeUnavailableItem, domainErr.Code)
			}
		}
		assert.Equal(t, 1, succeeded)

		got, err := productRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Stock)
	})

	t.Run("idempotent replay returns the first order once", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, testDB.TxCapable)

		p := SeedProduct(t, testDB.DB, "kettle", 45.00, 10)
		SeedCartLine(t, testDB.DB, "user-1", p.ID, 1)

		req := checkoutRequest("user-1")
		req.IdempotencyKey = "idem-1"

		first, replayed, err := svc.PlaceOrder(ctx, req)
		require.NoError(t, err)
		assert.False(t, replayed)

		second, replayed, err := svc.PlaceOrder(ctx, req)
		require.NoError(t, err)
		assert.True(t, replayed)
		assert.Equal(t, first.OrderNumber, second.OrderNumber)

		// Exactly one decrement, exactly one order.
		got, err := productRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 9, got.Stock)

		count, err := testDB.DB.Collection("orders").CountDocuments(ctx, bson.M{"userId": "user-1"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("order snapshot survives later price changes", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, testDB.TxCapable)

		p := SeedProduct(t, testDB.DB, "lamp", 60.00, 10)
		SeedCartLine(t, testDB.DB, "user-1", p.ID, 1)

		order, _, err := svc.PlaceOrder(ctx, checkoutRequest("user-1"))
		require.NoError(t, err)

		_, err = testDB.DB.Collection("products").UpdateByID(ctx, p.ID, bson.M{"$set": bson.M{"price": 99.99}})
		require.NoError(t, err)

		stored, err := orderRepo.GetByID(ctx, order.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		require.Len(t, stored.Items, 1)
		assert.Equal(t, 60.00, stored.Items[0].UnitPrice)
		assert.Equal(t, 60.00, stored.SubTotal)
	})

	t.Run("sequential fallback places orders without transactions", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, false)

		p := SeedProduct(t, testDB.DB, "fallback", 30.00, 5)
		SeedCartLine(t, testDB.DB, "user-1", p.ID, 2)

		order, _, err := svc.PlaceOrder(ctx, checkoutRequest("user-1"))
		require.NoError(t, err)
		assert.Equal(t, 60.00, order.SubTotal)

		got, err := productRepo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Stock)

		_, err = cartRepo.LoadItems(ctx, "user-1")
		assert.ErrorIs(t, err, model.ErrEmptyCart)
	})

	t.Run("empty cart rejected", func(t *testing.T) {
		CleanupDB(t, testDB.DB)
		svc := newCheckoutService(t, testDB, testDB.TxCapable)

		_, _, err := svc.PlaceOrder(ctx, checkoutRequest("user-1"))
		assert.ErrorIs(t, err, model.ErrEmptyCart)
	})
}
