package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"storefront-api/internal/domain"
	"storefront-api/internal/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newOrderService(t *testing.T) (*OrderService, *mocks.MockStore, *mocks.MockPublisher) {
	store := mocks.NewMockStore()
	pub := new(mocks.MockPublisher)
	logger := zaptest.NewLogger(t)
	svc := NewOrderService(store, NewCatalogService(store, logger), pub, logger)
	return svc, store, pub
}

func expectOrderInsert(store *mocks.MockStore, id uint64) {
	store.OrderRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.Order).ID = id
	})
}

func line(productID uint64, qty int, price string) domain.OrderLine {
	return domain.OrderLine{ProductID: productID, Quantity: qty, Price: decimal.RequireFromString(price)}
}

func TestOrderService_CreateOrderFromCart(t *testing.T) {
	svc, store, pub := newOrderService(t)

	store.CartRepo.On("FindByUser", mock.Anything, TestUserID).Return([]domain.CartItem{
		CreateMockCartItem(TestUserID, 7, 2, "10.00"),
		CreateMockCartItem(TestUserID, 9, 1, "5.00"),
	}, nil)
	expectOrderInsert(store, TestOrderID)
	store.ProductRepo.On("FindByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "12.00", 10), nil)
	store.ProductRepo.On("FindByID", mock.Anything, uint64(9)).Return(CreateMockProduct(9, "bulb", "5.00", 10), nil)
	store.OrderRepo.On("AddItem", mock.Anything, mock.AnythingOfType("*domain.OrderItem")).Return(nil).Twice()
	store.ProductRepo.On("DecrementStock", mock.Anything, uint64(7), 2).Return(nil).Once()
	store.ProductRepo.On("DecrementStock", mock.Anything, uint64(9), 1).Return(nil).Once()
	store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
	store.CartRepo.On("Clear", mock.Anything, TestUserID).Return(true, nil).Once()
	pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.AnythingOfType("domain.OrderEvent")).Return(nil).Once()

	order, err := svc.CreateOrderFromCart(context.Background(), TestUserID, TestAddress, TestAddress, "credit_card")
	svc.WaitForEvents()

	require.NoError(t, err)
	assert.Equal(t, TestOrderID, order.ID)
	assert.Equal(t, "25.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	// snapshot price wins over the current catalog price
	assert.Equal(t, "10.00", order.Items[0].Price.StringFixed(2))
	assert.Equal(t, "lamp", order.Items[0].ProductName)
	assert.Equal(t, 1, store.Transactions)

	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOrderService_CreateOrder_ReturnsReloadedOrder(t *testing.T) {
	svc, store, pub := newOrderService(t)

	reloaded := CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending, domain.OrderItem{
		ID: 3, OrderID: TestOrderID, ProductID: 7, Quantity: 1, Price: decimal.RequireFromString("10.00"),
	})

	expectOrderInsert(store, TestOrderID)
	store.ProductRepo.On("FindByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "10.00", 3), nil)
	store.OrderRepo.On("AddItem", mock.Anything, mock.Anything).Return(nil)
	store.ProductRepo.On("DecrementStock", mock.Anything, uint64(7), 1).Return(nil)
	store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(reloaded, nil)
	pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(errors.New("broker down"))

	order, err := svc.CreateOrder(context.Background(), domain.CreateOrderInput{
		UserID: TestUserID, Items: []domain.OrderLine{line(7, 1, "10.00")},
		ShippingAddress: TestAddress, BillingAddress: TestAddress, PaymentMethod: "paypal",
	})
	svc.WaitForEvents()

	// a failed publish never fails the committed order
	require.NoError(t, err)
	assert.Same(t, reloaded, order)
	store.CartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderService_CreateOrder_RollsBack(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(*mocks.MockStore)
		wantErr    error
	}{
		{
			name: "insufficient stock on second product",
			setupMocks: func(store *mocks.MockStore) {
				expectOrderInsert(store, TestOrderID)
				store.ProductRepo.On("FindByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "10.00", 5), nil)
				store.ProductRepo.On("FindByID", mock.Anything, uint64(9)).Return(CreateMockProduct(9, "bulb", "5.00", 0), nil)
				store.OrderRepo.On("AddItem", mock.Anything, mock.Anything).Return(nil)
				store.ProductRepo.On("DecrementStock", mock.Anything, uint64(7), 2).Return(nil)
				store.ProductRepo.On("DecrementStock", mock.Anything, uint64(9), 1).Return(domain.ErrInsufficientStock)
			},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name: "product row missing",
			setupMocks: func(store *mocks.MockStore) {
				expectOrderInsert(store, TestOrderID)
				store.ProductRepo.On("FindByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "10.00", 5), nil)
				store.ProductRepo.On("FindByID", mock.Anything, uint64(9)).Return(nil, nil)
				store.OrderRepo.On("AddItem", mock.Anything, mock.Anything).Return(nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "order insert fails",
			setupMocks: func(store *mocks.MockStore) {
				store.OrderRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("database error"))
			},
			wantErr: domain.ErrTransactionFailure,
		},
		{
			name: "commit fails",
			setupMocks: func(store *mocks.MockStore) {
				expectOrderInsert(store, TestOrderID)
				store.ProductRepo.On("FindByID", mock.Anything, mock.Anything).Return(CreateMockProduct(7, "lamp", "10.00", 5), nil)
				store.OrderRepo.On("AddItem", mock.Anything, mock.Anything).Return(nil)
				store.ProductRepo.On("DecrementStock", mock.Anything, mock.Anything, mock.Anything).Return(nil)
				store.TxErr = errors.New("commit failed")
			},
			wantErr: domain.ErrTransactionFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := newOrderService(t)
			tt.setupMocks(store)

			order, err := svc.Checkout(context.Background(), domain.CreateOrderInput{
				UserID:          TestUserID,
				Items:           []domain.OrderLine{line(7, 2, "10.00"), line(9, 1, "5.00")},
				ShippingAddress: TestAddress,
				BillingAddress:  TestAddress,
				PaymentMethod:   "credit_card",
			})
			svc.WaitForEvents()

			assert.Nil(t, order)
			assert.ErrorIs(t, err, domain.ErrTransactionFailure)
			assert.ErrorIs(t, err, tt.wantErr)

			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			store.CartRepo.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
			store.OrderRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_CreateOrder_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input domain.CreateOrderInput
	}{
		{"no items", domain.CreateOrderInput{UserID: TestUserID}},
		{"zero quantity", domain.CreateOrderInput{UserID: TestUserID, Items: []domain.OrderLine{line(7, 0, "10.00")}}},
		{"zero price", domain.CreateOrderInput{UserID: TestUserID, Items: []domain.OrderLine{line(7, 1, "0")}}},
		{"negative price", domain.CreateOrderInput{UserID: TestUserID, Items: []domain.OrderLine{line(7, 1, "-3.00")}}},
		{"missing product", domain.CreateOrderInput{UserID: TestUserID, Items: []domain.OrderLine{line(0, 1, "1.00")}}},
		{"missing user", domain.CreateOrderInput{Items: []domain.OrderLine{line(7, 1, "1.00")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newOrderService(t)

			_, err := svc.CreateOrder(context.Background(), tt.input)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, store.Transactions)
		})
	}
}

func TestOrderService_CreateOrderFromCart_Empty(t *testing.T) {
	svc, store, _ := newOrderService(t)
	store.CartRepo.On("FindByUser", mock.Anything, TestUserID).Return([]domain.CartItem{}, nil)

	_, err := svc.CreateOrderFromCart(context.Background(), TestUserID, TestAddress, TestAddress, "paypal")

	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Zero(t, store.Transactions)
}

func TestOrderService_CreateOrderFromCart_ClearFailureIsNotFatal(t *testing.T) {
	svc, store, pub := newOrderService(t)

	store.CartRepo.On("FindByUser", mock.Anything, TestUserID).Return([]domain.CartItem{
		CreateMockCartItem(TestUserID, 7, 1, "10.00"),
	}, nil)
	expectOrderInsert(store, TestOrderID)
	store.ProductRepo.On("FindByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "10.00", 5), nil)
	store.OrderRepo.On("AddItem", mock.Anything, mock.Anything).Return(nil)
	store.ProductRepo.On("DecrementStock", mock.Anything, uint64(7), 1).Return(nil)
	store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
	store.CartRepo.On("Clear", mock.Anything, TestUserID).Return(false, errors.New("connection reset"))
	pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)

	order, err := svc.CreateOrderFromCart(context.Background(), TestUserID, TestAddress, TestAddress, "stripe")
	svc.WaitForEvents()

	require.NoError(t, err)
	assert.Equal(t, "10.00", order.TotalAmount.StringFixed(2))
}

func TestOrderService_CancelOrder(t *testing.T) {
	tests := []struct {
		name       string
		userID     uint64
		setupMocks func(*mocks.MockStore, *mocks.MockPublisher)
		wantErr    error
	}{
		{
			name:   "pending order is cancelled",
			userID: TestUserID,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
					Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil).Once()
				store.OrderRepo.On("UpdateStatusIf", mock.Anything, TestOrderID, domain.StatusPending, domain.StatusCancelled).
					Return(true, nil)
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
					Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusCancelled), nil).Once()
				pub.On("Publish", mock.Anything, domain.EventOrderCancelled, mock.Anything).Return(nil).Once()
			},
		},
		{
			name:   "shipped order cannot be cancelled",
			userID: TestUserID,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
					Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusShipped), nil)
			},
			wantErr: domain.ErrInvalidTransition,
		},
		{
			name:   "another user's order",
			userID: 99,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
					Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil)
			},
			wantErr: domain.ErrForbidden,
		},
		{
			name:   "order not found",
			userID: TestUserID,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:   "status changed concurrently",
			userID: TestUserID,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
					Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil)
				store.OrderRepo.On("UpdateStatusIf", mock.Anything, TestOrderID, domain.StatusPending, domain.StatusCancelled).
					Return(false, nil)
			},
			wantErr: domain.ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := newOrderService(t)
			tt.setupMocks(store, pub)

			order, err := svc.CancelOrder(context.Background(), tt.userID, TestOrderID)
			svc.WaitForEvents()

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, domain.StatusCancelled, order.Status)
			}
			if tt.name == "shipped order cannot be cancelled" {
				store.OrderRepo.AssertNotCalled(t, "UpdateStatusIf", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			store.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_GetOrder(t *testing.T) {
	svc, store, _ := newOrderService(t)
	store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
		Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil)

	_, err := svc.GetOrder(context.Background(), TestOrderID, domain.Principal{UserID: 2})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	o, err := svc.GetOrder(context.Background(), TestOrderID, domain.Principal{UserID: 2, IsAdmin: true})
	require.NoError(t, err)
	assert.Equal(t, TestOrderID, o.ID)

	o, err = svc.GetOrder(context.Background(), TestOrderID, domain.Principal{UserID: TestUserID})
	require.NoError(t, err)
	assert.Equal(t, TestUserID, o.UserID)
}

func TestOrderService_GetOrdersByUserID_Pagination(t *testing.T) {
	svc, store, _ := newOrderService(t)

	orders := make([]domain.Order, 5)
	for i := range orders {
		orders[i] = *CreateMockOrder(uint64(i+1), TestUserID, domain.StatusPending)
	}
	store.OrderRepo.On("FindPage", mock.Anything, mock.MatchedBy(func(u *uint64) bool {
		return u != nil && *u == TestUserID
	}), 10, 10).Return(&domain.OrderPage{Orders: orders, Total: 15}, nil)

	page, err := svc.GetOrdersByUserID(context.Background(), TestUserID, 2, 10)

	require.NoError(t, err)
	assert.Len(t, page.Orders, 5)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, int64(2), PageCount(page.Total, 10))
	store.AssertExpectations(t)
}

func TestOrderService_GetAllOrders_Window(t *testing.T) {
	tests := []struct {
		name        string
		page, limit int
		wantOffset  int
		wantLimit   int
		wantErr     error
	}{
		{"first page", 1, 10, 0, 10, nil},
		{"limit capped", 3, 500, 200, 100, nil},
		{"zero page", 0, 10, 0, 0, domain.ErrInvalidInput},
		{"negative limit", 1, -1, 0, 0, domain.ErrInvalidInput},
		{"offset overflows", math.MaxInt, 10, 0, 0, domain.ErrInvalidInput},
		{"last representable page", math.MaxInt/100 + 1, 100, math.MaxInt / 100 * 100, 100, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newOrderService(t)
			if tt.wantErr == nil {
				store.OrderRepo.On("FindPage", mock.Anything, (*uint64)(nil), tt.wantOffset, tt.wantLimit).
					Return(&domain.OrderPage{Orders: []domain.Order{}}, nil)
			}

			_, err := svc.GetAllOrders(context.Background(), tt.page, tt.limit)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				store.OrderRepo.AssertNotCalled(t, "FindPage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			store.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateOrder(t *testing.T) {
	shipped := domain.StatusShipped
	bogus := domain.OrderStatus("lost")
	paid := domain.PaymentPaid

	t.Run("admin moves pending straight to shipped", func(t *testing.T) {
		svc, store, pub := newOrderService(t)
		upd := domain.OrderUpdate{Status: &shipped, PaymentStatus: &paid}

		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
			Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil).Once()
		store.OrderRepo.On("Update", mock.Anything, TestOrderID, upd).Return(true, nil)
		updated := CreateMockOrder(TestOrderID, TestUserID, domain.StatusShipped)
		updated.PaymentStatus = domain.PaymentPaid
		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(updated, nil).Once()
		pub.On("Publish", mock.Anything, domain.EventOrderUpdated, mock.Anything).Return(nil).Once()

		o, err := svc.UpdateOrder(context.Background(), TestOrderID, upd)
		svc.WaitForEvents()

		require.NoError(t, err)
		assert.Equal(t, domain.StatusShipped, o.Status)
		assert.Equal(t, domain.PaymentPaid, o.PaymentStatus)
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		svc, store, _ := newOrderService(t)

		_, err := svc.UpdateOrder(context.Background(), TestOrderID, domain.OrderUpdate{Status: &bogus})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		store.OrderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		svc, store, _ := newOrderService(t)
		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)

		_, err := svc.UpdateOrder(context.Background(), TestOrderID, domain.OrderUpdate{Status: &shipped})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Run("existing order", func(t *testing.T) {
		svc, store, pub := newOrderService(t)
		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
			Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusDelivered), nil)
		store.OrderRepo.On("DeleteItems", mock.Anything, TestOrderID).Return(nil)
		store.OrderRepo.On("Delete", mock.Anything, TestOrderID).Return(true, nil)
		pub.On("Publish", mock.Anything, domain.EventOrderDeleted, mock.Anything).Return(nil).Once()

		found, err := svc.DeleteOrder(context.Background(), TestOrderID)
		svc.WaitForEvents()

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 1, store.Transactions)
		store.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("missing order", func(t *testing.T) {
		svc, store, pub := newOrderService(t)
		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).Return(nil, nil)

		found, err := svc.DeleteOrder(context.Background(), TestOrderID)

		require.NoError(t, err)
		assert.False(t, found)
		store.OrderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("item delete fails", func(t *testing.T) {
		svc, store, _ := newOrderService(t)
		store.OrderRepo.On("FindByID", mock.Anything, TestOrderID).
			Return(CreateMockOrder(TestOrderID, TestUserID, domain.StatusPending), nil)
		store.OrderRepo.On("DeleteItems", mock.Anything, TestOrderID).Return(errors.New("lock wait timeout"))

		_, err := svc.DeleteOrder(context.Background(), TestOrderID)

		assert.Error(t, err)
		store.OrderRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
