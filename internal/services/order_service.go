package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"storefront-api/internal/domain"
	"storefront-api/internal/infra"
	"storefront-api/internal/infra/metrics"
	"storefront-api/internal/infra/tracing"
	"storefront-api/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var ErrOrderNotFound = fmt.Errorf("order %w", domain.ErrNotFound)

type OrderService struct {
	store     repository.Store
	catalog   *CatalogService
	publisher infra.EventPublisher
	logger    *zap.Logger
	events    sync.WaitGroup
}

func NewOrderService(store repository.Store, catalog *CatalogService, pub infra.EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:     store,
		catalog:   catalog,
		publisher: pub,
		logger:    logger,
	}
}

// CreateOrder persists the order, its items and the stock decrements in one
// transaction. Prices are taken from the input as given.
func (s *OrderService) CreateOrder(ctx context.Context, in domain.CreateOrderInput) (*domain.Order, error) {
	ctx, span := tracing.Tracer().Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	order := &domain.Order{
		UserID:          in.UserID,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		TotalAmount:     domain.OrderTotal(in.Items),
		ShippingAddress: in.ShippingAddress,
		BillingAddress:  in.BillingAddress,
		PaymentMethod:   in.PaymentMethod,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Orders().Create(ctx, order); err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		items := make([]domain.OrderItem, 0, len(in.Items))
		for _, line := range in.Items {
			prod, err := tx.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if prod == nil {
				return fmt.Errorf("%w: %d", ErrProductNotFound, line.ProductID)
			}

			item := domain.OrderItem{
				OrderID:         order.ID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				Price:           line.Price,
				ProductName:     prod.Name,
				ProductImageURL: prod.ImageURL,
			}
			if err := tx.Orders().AddItem(ctx, &item); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
			items = append(items, item)
		}

		// rows are locked in product id order so concurrent orders cannot deadlock
		for _, line := range sortedByProduct(in.Items) {
			if err := tx.Products().DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		order.Items = items
		return nil
	})
	if err != nil {
		metrics.RecordOrderCreateFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, "order transaction rolled back")
		s.logger.Warn("Order transaction rolled back", zap.Uint64("user_id", in.UserID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrTransactionFailure, err)
	}

	metrics.RecordOrderCreated()
	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	s.logger.Info("Order created",
		zap.Uint64("order_id", order.ID),
		zap.Uint64("user_id", order.UserID),
		zap.String("total", order.TotalAmount.StringFixed(2)),
		zap.Int("items", len(order.Items)),
	)

	s.catalog.InvalidateProducts(ctx, productIDs(in.Items)...)

	created, err := s.store.Orders().FindByID(ctx, order.ID)
	if err != nil || created == nil {
		s.logger.Warn("Failed to reload created order", zap.Uint64("order_id", order.ID), zap.Error(err))
		created = order
	}

	s.publishAsync(ctx, domain.EventOrderCreated, created)
	return created, nil
}

// CreateOrderFromCart orders the cart contents at their snapshot prices and empties the cart.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID uint64, shippingAddress, billingAddress, paymentMethod string) (*domain.Order, error) {
	cart, err := s.store.Carts().FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, domain.ErrEmptyCart
	}

	lines := make([]domain.OrderLine, len(cart))
	for i, item := range cart {
		lines[i] = domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.ProductPrice,
		}
	}

	order, err := s.CreateOrder(ctx, domain.CreateOrderInput{
		UserID:          userID,
		Items:           lines,
		ShippingAddress: shippingAddress,
		BillingAddress:  billingAddress,
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		return nil, err
	}

	s.clearCartAfterOrder(ctx, order)
	return order, nil
}

// Checkout creates an order from explicit lines and then empties the caller's cart.
func (s *OrderService) Checkout(ctx context.Context, in domain.CreateOrderInput) (*domain.Order, error) {
	order, err := s.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	s.clearCartAfterOrder(ctx, order)
	return order, nil
}

// The order is already committed, so a failed clear is logged and not returned.
func (s *OrderService) clearCartAfterOrder(ctx context.Context, order *domain.Order) {
	if _, err := s.store.Carts().Clear(ctx, order.UserID); err != nil {
		s.logger.Error("Failed to clear cart after order",
			zap.Uint64("order_id", order.ID),
			zap.Uint64("user_id", order.UserID),
			zap.Error(err),
		)
		return
	}
	metrics.RecordCartOperation("clear")
}

func (s *OrderService) GetOrderById(ctx context.Context, id uint64) (*domain.Order, error) {
	o, err := s.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// GetOrder lets admins read any order and everyone else only their own.
func (s *OrderService) GetOrder(ctx context.Context, id uint64, requester domain.Principal) (*domain.Order, error) {
	o, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin && o.UserID != requester.UserID {
		return nil, domain.ErrForbidden
	}
	return o, nil
}

func (s *OrderService) GetOrdersByUserID(ctx context.Context, userID uint64, page, limit int) (*domain.OrderPage, error) {
	offset, limit, err := pageWindow(page, limit)
	if err != nil {
		return nil, err
	}
	return s.store.Orders().FindPage(ctx, &userID, offset, limit)
}

func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) (*domain.OrderPage, error) {
	offset, limit, err := pageWindow(page, limit)
	if err != nil {
		return nil, err
	}
	return s.store.Orders().FindPage(ctx, nil, offset, limit)
}

// UpdateOrder applies an admin update. Moves outside the regular lifecycle are
// allowed but logged.
func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, upd domain.OrderUpdate) (*domain.Order, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, *upd.Status)
	}
	if upd.PaymentStatus != nil && !upd.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidInput, *upd.PaymentStatus)
	}

	current, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Status != nil && *upd.Status != current.Status && !current.Status.CanTransitionTo(*upd.Status) {
		s.logger.Warn("Order status moved outside lifecycle",
			zap.Uint64("order_id", id),
			zap.String("from", string(current.Status)),
			zap.String("to", string(*upd.Status)),
		)
	}

	found, err := s.store.Orders().Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrOrderNotFound
	}

	updated, err := s.GetOrderById(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publishAsync(ctx, domain.EventOrderUpdated, updated)
	return updated, nil
}

// CancelOrder cancels the caller's own pending order. Stock is not restored.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID uint64) (*domain.Order, error) {
	o, err := s.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrForbidden
	}
	if o.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: only pending orders can be cancelled", domain.ErrInvalidTransition)
	}

	ok, err := s.store.Orders().UpdateStatusIf(ctx, orderID, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %d is no longer pending", domain.ErrInvalidTransition, orderID)
	}

	cancelled, err := s.GetOrderById(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Order cancelled", zap.Uint64("order_id", orderID), zap.Uint64("user_id", userID))
	s.publishAsync(ctx, domain.EventOrderCancelled, cancelled)
	return cancelled, nil
}

// DeleteOrder removes the order and its items. Stock is not restored.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) (bool, error) {
	var deleted *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.Orders().FindByID(ctx, id)
		if err != nil || o == nil {
			return err
		}
		if err := tx.Orders().DeleteItems(ctx, id); err != nil {
			return err
		}
		found, err := tx.Orders().Delete(ctx, id)
		if err != nil {
			return err
		}
		if found {
			deleted = o
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete order %d: %w", id, err)
	}
	if deleted == nil {
		return false, nil
	}

	s.logger.Info("Order deleted", zap.Uint64("order_id", id))
	s.publishAsync(ctx, domain.EventOrderDeleted, deleted)
	return true, nil
}

func (s *OrderService) publishAsync(ctx context.Context, event string, order *domain.Order) {
	evt := domain.NewOrderEvent(order)
	// keep trace values, drop the request deadline
	ctx = context.WithoutCancel(ctx)

	s.events.Add(1)
	go func() {
		defer s.events.Done()
		s.publishOrderEvent(ctx, event, evt)
	}()
}

func (s *OrderService) publishOrderEvent(ctx context.Context, event string, evt domain.OrderEvent) {
	if err := s.publisher.Publish(ctx, event, evt); err != nil {
		s.logger.Error("Failed to publish event",
			zap.String("event", event),
			zap.Uint64("order_id", evt.OrderID),
			zap.String("trace_id", tracing.TraceID(ctx)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Published event", zap.String("event", event), zap.Uint64("order_id", evt.OrderID))
}

// WaitForEvents blocks until every in-flight publish has finished.
func (s *OrderService) WaitForEvents() {
	s.events.Wait()
}

func validateOrderInput(in domain.CreateOrderInput) error {
	if in.UserID == 0 {
		return fmt.Errorf("%w: user is required", domain.ErrInvalidInput)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: order has no items", domain.ErrInvalidInput)
	}
	for i, line := range in.Items {
		if line.ProductID == 0 || line.Quantity <= 0 || !line.Price.IsPositive() {
			return fmt.Errorf("%w: item %d needs a product, a positive quantity and a positive price", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

func sortedByProduct(lines []domain.OrderLine) []domain.OrderLine {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, func(a, b domain.OrderLine) int {
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	return sorted
}

func productIDs(lines []domain.OrderLine) []uint64 {
	ids := make([]uint64, 0, len(lines))
	for _, l := range lines {
		if !slices.Contains(ids, l.ProductID) {
			ids = append(ids, l.ProductID)
		}
	}
	return ids
}
