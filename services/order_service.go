package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"storefront/cache"
	"storefront/events"
	"storefront/models"
	"storefront/repositories"
	"storefront/utils"
)

type OrderService struct {
	tx        repositories.TxRunner
	orders    repositories.OrderStore
	cache     cache.CartCache
	verifier  PaymentVerifier
	publisher events.OrderPublisher
	logger    *slog.Logger
}

func NewOrderService(
	tx repositories.TxRunner,
	orders repositories.OrderStore,
	cartCache cache.CartCache,
	verifier PaymentVerifier,
	publisher events.OrderPublisher,
	logger *slog.Logger,
) *OrderService {
	if cartCache == nil {
		cartCache = cache.Noop{}
	}
	if verifier == nil {
		verifier = TrustingVerifier{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		tx:        tx,
		orders:    orders,
		cache:     cartCache,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
	}
}

// PlaceOrder turns the user's cart into an order in one transaction: every line is
// revalidated against the locked product row, stock is decremented, the order is
// written and the cart deleted. Any failure leaves cart, stock and orders untouched.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int64, req models.PlaceOrderRequest) (*models.Order, error) {
	owner := models.UserOwner(userID)

	var order *models.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context, uow repositories.UnitOfWork) error {
		cart, err := uow.Carts().FindByOwnerForUpdate(ctx, owner)
		if err != nil {
			return utils.NewInternal("Failed to load cart", err)
		}
		if cart == nil || len(cart.Items) == 0 {
			return utils.NewBadRequest("Cart is empty")
		}

		products, err := lockProducts(ctx, uow.Products(), cart.Items)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, item := range cart.Items {
			product := products[item.ProductObjectID]
			if product.Stock < item.Quantity {
				return utils.NewBadRequest("Insufficient stock")
			}
			if !product.AllowsPayment(req.PaymentMethod) {
				return utils.NewBadRequest(fmt.Sprintf("%s cannot be paid with %s", product.Name, req.PaymentMethod))
			}

			err := uow.Products().DecrementStock(ctx, product.ID, item.Quantity)
			if errors.Is(err, repositories.ErrInsufficientStock) {
				return utils.NewBadRequest("Insufficient stock")
			}
			if err != nil {
				return utils.NewInternal("Failed to update stock", err)
			}
			// the same product may appear on several lines with different options
			product.Stock -= item.Quantity

			total = total.Add(item.TotalPrice)
		}

		order = &models.Order{
			UserID:          userID,
			Items:           models.CloneItems(cart.Items),
			TotalAmount:     total,
			ShippingAddress: req.ShippingAddress,
			ContactNumber:   req.ContactNumber,
			PaymentMethod:   req.PaymentMethod,
			PaymentStatus:   s.paymentStatus(ctx, req),
			PaymentDetails:  req.PaymentDetails,
			OrderStatus:     models.OrderPending,
		}
		if err := uow.Orders().Create(ctx, order); err != nil {
			return utils.NewInternal("Failed to create order", err)
		}

		if err := uow.Carts().DeleteByOwner(ctx, owner); err != nil {
			return utils.NewInternal("Failed to clear cart", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// the order is committed; a client hanging up now must not leave a stale cart cached
	after := context.WithoutCancel(ctx)
	s.cache.DeletePrefix(after, owner.CacheKey())
	if err := s.publisher.PublishOrderPlaced(after, events.NewOrderPlaced(order)); err != nil {
		s.logger.Warn("failed to publish order event", "order_id", order.ID, "error", err)
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"user_id", userID,
		"total", order.TotalAmount.StringFixed(2),
		"payment_status", order.PaymentStatus,
	)
	return order, nil
}

// lockProducts locks every product referenced by items in ascending id order so
// concurrent placements over overlapping products cannot deadlock.
func lockProducts(ctx context.Context, store repositories.ProductStore, items []models.CartItem) (map[int64]*models.Product, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductObjectID] {
			seen[item.ProductObjectID] = true
			ids = append(ids, item.ProductObjectID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products := make(map[int64]*models.Product, len(ids))
	for _, id := range ids {
		product, err := store.FindByIDForUpdate(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, utils.NewNotFound("Product not found")
		}
		if err != nil {
			return nil, utils.NewInternal("Failed to load product", err)
		}
		products[id] = product
	}
	return products, nil
}

func (s *OrderService) paymentStatus(ctx context.Context, req models.PlaceOrderRequest) models.PaymentStatus {
	if req.PaymentMethod == models.PaymentCOD {
		return models.PaymentPending
	}
	if req.PaymentDetails == nil || req.PaymentDetails.TransactionID == "" {
		return models.PaymentPending
	}

	ok, err := s.verifier.Verify(ctx, req.PaymentMethod, *req.PaymentDetails)
	if err != nil {
		s.logger.Warn("payment verification failed", "method", req.PaymentMethod, "error", err)
		return models.PaymentPending
	}
	if ok {
		return models.PaymentPaid
	}
	return models.PaymentPending
}

// GetOrder returns the order when the requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, requesterID int64, role string, id int64) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFound("Order not found")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to load order", err)
	}
	if order.UserID != requesterID && role != models.RoleAdmin {
		return nil, utils.NewForbidden("You are not allowed to view this order")
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.NewInternal("Failed to load orders", err)
	}
	return orders, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, utils.NewNotFound("Order not found")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to load order", err)
	}

	if !order.OrderStatus.CanTransitionTo(status) {
		return nil, utils.NewBadRequest(fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, status))
	}

	err = s.orders.UpdateStatus(ctx, id, order.OrderStatus, status)
	if errors.Is(err, repositories.ErrStaleStatus) {
		return nil, utils.NewConflict("Order status was changed by another request")
	}
	if err != nil {
		return nil, utils.NewInternal("Failed to update order status", err)
	}

	s.logger.Info("order status changed", "order_id", id, "from", order.OrderStatus, "to", status)
	order.OrderStatus = status
	order.UpdatedAt = time.Now()
	return order, nil
}
