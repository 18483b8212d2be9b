package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/coupon"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/payment"
	"storefront/internal/pricing"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// checkoutService implements CheckoutService. It coordinates the checkout
// pipeline as one transaction when the deployment supports multi-document
// transactions, and as a compensated sequential run when it does not.
type checkoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	coupons     coupon.Resolver
	verifier    payment.Verifier
	cache       cache.ProductCache
	txRunner    TxRunner
	txCapable   bool
	cfg         config.CheckoutConfig
	validate    *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewCheckoutService creates a new checkout service. txCapable reflects the
// configured transaction mode combined with the startup probe result.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	coupons coupon.Resolver,
	verifier payment.Verifier,
	productCache cache.ProductCache,
	txRunner TxRunner,
	txCapable bool,
	cfg config.CheckoutConfig,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		coupons:     coupons,
		verifier:    verifier,
		cache:       productCache,
		txRunner:    txRunner,
		txCapable:   txCapable,
		cfg:         cfg,
		validate:    validator.New(),
		logger:      logger.With().Str("service", "checkout").Logger(),
		now:         time.Now,
	}
}

// reservedLine records one completed stock reservation so the sequential
// path can compensate it if a later step fails.
type reservedLine struct {
	productID primitive.ObjectID
	variantID string
	quantity  int
}

// PlaceOrder runs the checkout pipeline for one submission.
func (s *checkoutService) PlaceOrder(ctx context.Context, req *model.CheckoutRequest) (*model.Order, bool, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, false, err
	}

	// Idempotency guard: checked before any side effect, so a retried
	// request can never decrement stock twice.
	if req.IdempotencyKey != "" {
		existing, err := s.orderRepo.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
		if err != nil {
			return nil, false, fmt.Errorf("idempotency lookup failed: %w", err)
		}
		if existing != nil {
			s.logger.Info().
				Str("user_id", req.UserID).
				Str("order_number", existing.OrderNumber).
				Msg("idempotent replay, returning existing order")
			return existing, true, nil
		}
	}

	if req.RequiresPaymentVerification() {
		verdict, err := s.verifier.Verify(ctx, req.PaymentMethod, req.PaymentIntentReference)
		if err != nil {
			s.logger.Error().Err(err).
				Str("payment_method", req.PaymentMethod).
				Msg("payment verification failed")
			return nil, false, fmt.Errorf("payment verification failed: %w", err)
		}
		if verdict != payment.VerdictPaid {
			return nil, false, model.ErrPaymentNotCompleted
		}
	}

	order, err := s.executeCheckout(ctx, req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateOrder) {
			// Two near-simultaneous retries raced past the guard; the
			// unique index picked a winner. Return it.
			winner, lookupErr := s.orderRepo.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
			if lookupErr != nil {
				return nil, false, fmt.Errorf("duplicate order lookup failed: %w", lookupErr)
			}
			if winner != nil {
				return winner, true, nil
			}
			return nil, false, fmt.Errorf("duplicate order detected but not found: %w", err)
		}
		return nil, false, err
	}

	s.invalidateCache(ctx, order)

	s.logger.Info().
		Str("user_id", req.UserID).
		Str("order_number", order.OrderNumber).
		Int("item_count", len(order.Items)).
		Float64("total_amount", order.TotalAmount).
		Msg("order created")

	return order, false, nil
}

// executeCheckout runs the pipeline under a transaction when the deployment
// supports one, falling back to the compensated sequential path on a
// capability rejection. Any other failure aborts without fallback.
func (s *checkoutService) executeCheckout(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error) {
	if !s.txCapable {
		return s.runSequential(ctx, req)
	}

	var order *model.Order
	err := s.txRunner.WithTransaction(ctx, func(txCtx context.Context) error {
		var pipelineErr error
		order, pipelineErr = s.runPipeline(txCtx, req, nil)
		return pipelineErr
	})
	if err == nil {
		return order, nil
	}

	if !database.IsTransactionUnsupported(err) {
		return nil, err
	}

	// The topology changed since the startup probe. Use the sequential
	// fallback for this request; per-line reservations stay atomic, only
	// cross-line atomicity degrades to best-effort compensation.
	s.logger.Warn().
		Str("user_id", req.UserID).
		Msg("transactions unsupported by deployment, using sequential fallback")

	return s.runSequential(ctx, req)
}

// runSequential executes the pipeline without a wrapping transaction,
// releasing completed reservations if a later step fails. Compensation is
// best-effort: a release that itself fails leaves stock under-replenished,
// which is logged but cannot be repaired here. The checkout failure is still
// surfaced to the caller either way.
func (s *checkoutService) runSequential(ctx context.Context, req *model.CheckoutRequest) (*model.Order, error) {
	var reserved []reservedLine
	order, err := s.runPipeline(ctx, req, &reserved)
	if err != nil {
		s.compensate(ctx, reserved)
		return nil, err
	}
	return order, nil
}

// runPipeline performs the checkout steps: load cart, resolve pricing and
// reserve stock per line, assemble and insert the order, clear the cart.
// When reserved is non-nil (sequential mode), each completed reservation is
// appended to it so the caller can compensate on failure.
func (s *checkoutService) runPipeline(ctx context.Context, req *model.CheckoutRequest, reserved *[]reservedLine) (*model.Order, error) {
	lines, err := s.cartRepo.LoadItems(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		res := pricing.Resolve(product, line.VariantID)
		if res == nil {
			title := ""
			if product != nil {
				title = product.Title
			}
			return nil, model.UnavailableItem(title)
		}

		if err := s.productRepo.ReserveStock(ctx, line.ProductID, res.VariantID, line.Quantity); err != nil {
			if errors.Is(err, repository.ErrInsufficientStock) {
				return nil, model.UnavailableItem(res.Title)
			}
			return nil, err
		}
		if reserved != nil {
			*reserved = append(*reserved, reservedLine{
				productID: line.ProductID,
				variantID: res.VariantID,
				quantity:  line.Quantity,
			})
		}

		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			VariantID: res.VariantID,
			Title:     res.Title,
			SKU:       res.SKU,
			UnitPrice: res.UnitPrice,
			Quantity:  line.Quantity,
			Amount:    pricing.Amount(res.UnitPrice, line.Quantity),
			ImageURL:  res.ImageURL,
		})
	}

	order := s.assembleOrder(ctx, req, items)

	if err := s.orderRepo.Insert(ctx, order); err != nil {
		return nil, err
	}

	if err := s.cartRepo.Clear(ctx, req.UserID); err != nil {
		if reserved == nil {
			// Transactional mode: abort the whole transaction.
			return nil, err
		}
		// Sequential mode: the order is already durable, so failing the
		// checkout now would be a lie. The stale cart is the lesser
		// inconsistency; the next checkout attempt will surface it.
		s.logger.Error().Err(err).
			Str("user_id", req.UserID).
			Str("order_number", order.OrderNumber).
			Msg("failed to clear cart after order commit")
	}

	return order, nil
}

// compensate releases every reservation recorded by a failed sequential run.
func (s *checkoutService) compensate(ctx context.Context, reserved []reservedLine) {
	for _, line := range reserved {
		if err := s.productRepo.ReleaseStock(ctx, line.productID, line.variantID, line.quantity); err != nil {
			s.logger.Error().Err(err).
				Str("product_id", line.productID.Hex()).
				Str("variant_id", line.variantID).
				Int("quantity", line.quantity).
				Msg("compensation failed, stock left under-replenished")
		}
	}
}

// invalidateCache drops cached entries for every product the order touched.
func (s *checkoutService) invalidateCache(ctx context.Context, order *model.Order) {
	ids := make([]string, 0, len(order.Items))
	seen := make(map[string]bool, len(order.Items))
	for _, item := range order.Items {
		id := item.ProductID.Hex()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn().Err(err).Msg("product cache invalidation failed")
	}
}

// validateRequest enforces the strict request contract.
func (s *checkoutService) validateRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			if first.Tag() == "oneof" {
				return model.ErrInvalidPaymentMethod
			}
			return model.NewDomainError(model.ErrCodeMissingField,
				fmt.Sprintf("field %s is missing or invalid", first.Field()))
		}
		return model.NewDomainError(model.ErrCodeMissingField, "malformed request")
	}

	if req.RequiresPaymentVerification() && req.PaymentIntentReference == "" {
		return model.NewDomainError(model.ErrCodeMissingField,
			"paymentIntentReference is required for gateway payment methods")
	}

	return nil
}
