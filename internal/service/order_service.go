package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo repository.OrderRepository
	validate  *validator.Validate
	logger    zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, logger zerolog.Logger) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		validate:  validator.New(),
		logger:    logger.With().Str("service", "order").Logger(),
	}
}

// GetByID retrieves an order owned by the user.
func (s *orderService) GetByID(ctx context.Context, userID, orderID string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID != userID {
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// RequestReturn appends a return request to a delivered order. Quantities are
// validated against the order's immutable item snapshots, never against the
// live catalogue; a product deleted since purchase can still be returned.
func (s *orderService) RequestReturn(ctx context.Context, orderID string, input *model.ReturnRequestInput) (*model.Order, error) {
	if input == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "request body is required")
	}

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, model.NewDomainError(model.ErrCodeMissingField,
				fmt.Sprintf("field %s is missing or invalid", verrs[0].Field()))
		}
		return nil, model.NewDomainError(model.ErrCodeMissingField, "malformed request")
	}

	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, model.ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != input.UserID {
		return nil, model.ErrOrderNotFound
	}

	if order.Status != model.OrderStatusDelivered {
		return nil, model.ErrReturnNotAllowed
	}

	request := model.ReturnRequest{
		Reason:      input.Reason,
		Status:      model.ReturnStatusRequested,
		RequestedAt: timeNow(),
	}

	for _, in := range input.Items {
		pid, err := primitive.ObjectIDFromHex(in.ProductID)
		if err != nil {
			return nil, model.ErrInvalidReturn
		}

		purchased := findOrderItem(order.Items, pid, in.VariantID)
		if purchased == nil {
			return nil, model.ErrInvalidReturn
		}
		if in.Quantity > purchased.Quantity {
			return nil, model.ErrInvalidReturn
		}

		request.Items = append(request.Items, model.ReturnItem{
			ProductID: pid,
			VariantID: in.VariantID,
			Quantity:  in.Quantity,
		})
	}

	matched, err := s.orderRepo.AppendReturnRequest(ctx, oid, input.UserID, request)
	if err != nil {
		return nil, fmt.Errorf("failed to append return request: %w", err)
	}
	if !matched {
		// Status changed between the read and the conditional push.
		return nil, model.ErrReturnNotAllowed
	}

	s.logger.Info().
		Str("order_id", orderID).
		Str("user_id", input.UserID).
		Int("item_count", len(request.Items)).
		Msg("return request recorded")

	updated, err := s.orderRepo.GetByID(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}

	return updated, nil
}

// findOrderItem returns the snapshot line matching the product and variant.
func findOrderItem(items []model.OrderItem, productID primitive.ObjectID, variantID string) *model.OrderItem {
	for i := range items {
		if items[i].ProductID == productID && items[i].VariantID == variantID {
			return &items[i]
		}
	}
	return nil
}
