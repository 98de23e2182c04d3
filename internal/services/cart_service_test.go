package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront-api/internal/domain"
	"storefront-api/internal/mocks"
	"storefront-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memCarts keeps cart rows in memory with the same merge semantics as the SQL upsert.
type memCarts struct {
	mu    sync.Mutex
	items map[[2]uint64]*domain.CartItem
}

func newMemCarts() *memCarts {
	return &memCarts{items: map[[2]uint64]*domain.CartItem{}}
}

func (m *memCarts) Find(_ context.Context, userID, productID uint64) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it, ok := m.items[[2]uint64{userID, productID}]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

func (m *memCarts) FindByUser(_ context.Context, userID uint64) ([]domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.CartItem{}
	for k, it := range m.items {
		if k[0] == userID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (m *memCarts) Increment(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	m.mu.Lock()
	if it, ok := m.items[[2]uint64{userID, productID}]; ok {
		it.Quantity += quantity
	}
	m.mu.Unlock()
	return m.Find(ctx, userID, productID)
}

func (m *memCarts) Upsert(_ context.Context, item *domain.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint64{item.UserID, item.ProductID}
	if it, ok := m.items[key]; ok {
		it.Quantity += item.Quantity
		return nil
	}
	cp := *item
	m.items[key] = &cp
	return nil
}

func (m *memCarts) SetQuantity(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	m.mu.Lock()
	if it, ok := m.items[[2]uint64{userID, productID}]; ok {
		it.Quantity = quantity
	}
	m.mu.Unlock()
	return m.Find(ctx, userID, productID)
}

func (m *memCarts) Remove(_ context.Context, userID, productID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]uint64{userID, productID}
	_, ok := m.items[key]
	delete(m.items, key)
	return ok, nil
}

func (m *memCarts) Clear(_ context.Context, userID uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := false
	for k := range m.items {
		if k[0] == userID {
			delete(m.items, k)
			removed = true
		}
	}
	return removed, nil
}

func (m *memCarts) Total(_ context.Context, userID uint64) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for k, it := range m.items {
		if k[0] == userID {
			total = total.Add(it.ProductPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
	}
	return total, nil
}

func (m *memCarts) Count(_ context.Context, userID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, it := range m.items {
		if k[0] == userID {
			n += int64(it.Quantity)
		}
	}
	return n, nil
}

type memCartStore struct {
	*mocks.MockStore
	carts *memCarts
}

func (s *memCartStore) Carts() repository.CartRepository { return s.carts }

func newMemCartService(t *testing.T) (*CartService, *memCartStore) {
	store := &memCartStore{MockStore: mocks.NewMockStore(), carts: newMemCarts()}
	logger := zaptest.NewLogger(t)
	return NewCartService(store, NewCatalogService(store, logger), logger), store
}

func TestCartService_AddToCart_IsAdditive(t *testing.T) {
	svc, store := newMemCartService(t)
	store.ProductRepo.On("FindActiveByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, "lamp", "10.00", 50), nil)

	ctx := context.Background()
	for _, q := range []int{2, 3, 5} {
		_, err := svc.AddToCart(ctx, TestUserID, TestProductID, q)
		require.NoError(t, err)
	}

	item, err := store.carts.Find(ctx, TestUserID, TestProductID)
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
	assert.Equal(t, "lamp", item.ProductName)
	assert.Equal(t, "10.00", item.ProductPrice.StringFixed(2))

	// only the first add needed the catalog
	store.ProductRepo.AssertNumberOfCalls(t, "FindActiveByID", 1)
}

func TestCartService_UpdateQuantityZeroRemoves(t *testing.T) {
	ctx := context.Background()

	viaUpdate, storeA := newMemCartService(t)
	viaRemove, storeB := newMemCartService(t)
	for _, s := range []*memCartStore{storeA, storeB} {
		s.ProductRepo.On("FindActiveByID", mock.Anything, mock.Anything).Return(CreateMockProduct(TestProductID, "lamp", "10.00", 50), nil)
	}

	_, err := viaUpdate.AddToCart(ctx, TestUserID, TestProductID, 2)
	require.NoError(t, err)
	_, err = viaRemove.AddToCart(ctx, TestUserID, TestProductID, 2)
	require.NoError(t, err)

	item, err := viaUpdate.UpdateQuantity(ctx, TestUserID, TestProductID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	removed, err := viaRemove.RemoveFromCart(ctx, TestUserID, TestProductID)
	require.NoError(t, err)
	assert.True(t, removed)

	a, _ := viaUpdate.GetCart(ctx, TestUserID)
	b, _ := viaRemove.GetCart(ctx, TestUserID)
	assert.Equal(t, a, b)

	// removing again is a no-op
	item, err = viaUpdate.UpdateQuantity(ctx, TestUserID, TestProductID, 0)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestCartService_GetCart(t *testing.T) {
	svc, store := newMemCartService(t)
	ctx := context.Background()

	empty, err := svc.GetCart(ctx, TestUserID)
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.NotNil(t, empty.Items)
	assert.True(t, empty.Total.IsZero())
	assert.Zero(t, empty.ItemCount)

	store.ProductRepo.On("FindActiveByID", mock.Anything, uint64(7)).Return(CreateMockProduct(7, "lamp", "10.00", 50), nil)
	store.ProductRepo.On("FindActiveByID", mock.Anything, uint64(9)).Return(CreateMockProduct(9, "bulb", "5.00", 50), nil)
	_, err = svc.AddToCart(ctx, TestUserID, 7, 2)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, TestUserID, 9, 1)
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, TestUserID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
	assert.Equal(t, "25.00", cart.Total.StringFixed(2))
	assert.Equal(t, int64(3), cart.ItemCount)
}

func TestCartService_AddToCart(t *testing.T) {
	tests := []struct {
		name       string
		productID  uint64
		quantity   int
		setupMocks func(*mocks.MockStore)
		wantQty    int
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:      "new entry snapshots product",
			productID: TestProductID,
			quantity:  2,
			setupMocks: func(store *mocks.MockStore) {
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(nil, nil).Once()
				store.ProductRepo.On("FindActiveByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, "lamp", "10.00", 5), nil)
				store.CartRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(it *domain.CartItem) bool {
					return it.ProductName == "lamp" && it.ProductPrice.Equal(decimal.RequireFromString("10.00")) && it.Quantity == 2
				})).Return(nil)
				item := CreateMockCartItem(TestUserID, TestProductID, 2, "10.00")
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(&item, nil).Once()
			},
			wantQty: 2,
		},
		{
			name:      "existing entry is incremented",
			productID: TestProductID,
			quantity:  3,
			setupMocks: func(store *mocks.MockStore) {
				existing := CreateMockCartItem(TestUserID, TestProductID, 2, "10.00")
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(&existing, nil)
				merged := CreateMockCartItem(TestUserID, TestProductID, 5, "10.00")
				store.CartRepo.On("Increment", mock.Anything, TestUserID, TestProductID, 3).Return(&merged, nil)
			},
			wantQty: 5,
		},
		{
			name:      "inactive product",
			productID: TestProductID,
			quantity:  1,
			setupMocks: func(store *mocks.MockStore) {
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(nil, nil)
				store.ProductRepo.On("FindActiveByID", mock.Anything, TestProductID).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:      "unknown product",
			productID: TestProductID,
			quantity:  1,
			setupMocks: func(store *mocks.MockStore) {
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(nil, nil)
				store.ProductRepo.On("FindActiveByID", mock.Anything, TestProductID).Return(nil, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:       "zero quantity",
			productID:  TestProductID,
			quantity:   0,
			setupMocks: func(store *mocks.MockStore) {},
			wantErr:    domain.ErrInvalidInput,
		},
		{
			name:      "store error",
			productID: TestProductID,
			quantity:  1,
			setupMocks: func(store *mocks.MockStore) {
				store.CartRepo.On("Find", mock.Anything, TestUserID, TestProductID).Return(nil, errors.New("database error"))
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mocks.NewMockStore()
			logger := zaptest.NewLogger(t)
			svc := NewCartService(store, NewCatalogService(store, logger), logger)
			tt.setupMocks(store)

			item, err := svc.AddToCart(context.Background(), TestUserID, tt.productID, tt.quantity)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, item)
			case tt.wantAnyErr:
				assert.Error(t, err)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantQty, item.Quantity)
			}
			store.CartRepo.AssertExpectations(t)
		})
	}
}

func TestCartService_UpdateQuantity_Missing(t *testing.T) {
	store := mocks.NewMockStore()
	logger := zaptest.NewLogger(t)
	svc := NewCartService(store, NewCatalogService(store, logger), logger)
	store.CartRepo.On("SetQuantity", mock.Anything, TestUserID, TestProductID, 4).Return(nil, nil)

	item, err := svc.UpdateQuantity(context.Background(), TestUserID, TestProductID, 4)

	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestCartService_GetCart_PropagatesErrors(t *testing.T) {
	store := mocks.NewMockStore()
	logger := zaptest.NewLogger(t)
	svc := NewCartService(store, NewCatalogService(store, logger), logger)

	store.CartRepo.On("FindByUser", mock.Anything, TestUserID).Return([]domain.CartItem{}, nil).Maybe()
	store.CartRepo.On("Total", mock.Anything, TestUserID).Return(decimal.Zero, errors.New("timeout"))
	store.CartRepo.On("Count", mock.Anything, TestUserID).Return(int64(0), nil).Maybe()

	_, err := svc.GetCart(context.Background(), TestUserID)
	assert.ErrorContains(t, err, "timeout")
}
