package services

import (
	"context"
	"fmt"

	"storefront-api/internal/domain"
	"storefront-api/internal/infra/metrics"
	"storefront-api/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrCartItemNotFound = fmt.Errorf("cart item %w", domain.ErrNotFound)

type CartService struct {
	store   repository.Store
	catalog *CatalogService
	logger  *zap.Logger
}

func NewCartService(store repository.Store, catalog *CatalogService, logger *zap.Logger) *CartService {
	return &CartService{store: store, catalog: catalog, logger: logger}
}

// AddToCart increments an existing entry or inserts a new one snapshotting the active product.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	if productID == 0 || quantity <= 0 {
		return nil, fmt.Errorf("%w: productId and quantity must be positive", domain.ErrInvalidInput)
	}

	carts := s.store.Carts()

	existing, err := carts.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		item, err := carts.Increment(ctx, userID, productID, quantity)
		if err != nil {
			return nil, err
		}
		if item != nil {
			metrics.RecordCartOperation("add")
			return item, nil
		}
		// removed concurrently, fall through to insert
	}

	prod, err := s.catalog.GetActiveProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	item := &domain.CartItem{
		UserID:          userID,
		ProductID:       productID,
		Quantity:        quantity,
		ProductName:     prod.Name,
		ProductPrice:    prod.Price,
		ProductImageURL: prod.ImageURL,
	}
	if err := carts.Upsert(ctx, item); err != nil {
		return nil, err
	}

	// the upsert may have merged into a racing insert
	stored, err := carts.Find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = item
	}

	metrics.RecordCartOperation("add")
	return stored, nil
}

func (s *CartService) GetCartItems(ctx context.Context, userID uint64) ([]domain.CartItem, error) {
	items, err := s.store.Carts().FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.CartItem{}
	}
	return items, nil
}

// UpdateQuantity overwrites the quantity. A quantity <= 0 removes the entry and returns nil.
// A nil item with a nil error means no entry existed.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint64, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		if _, err := s.RemoveFromCart(ctx, userID, productID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	item, err := s.store.Carts().SetQuantity(ctx, userID, productID, quantity)
	if err != nil {
		return nil, err
	}
	if item != nil {
		metrics.RecordCartOperation("update")
	}
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID uint64) (bool, error) {
	removed, err := s.store.Carts().Remove(ctx, userID, productID)
	if err != nil {
		return false, err
	}
	if removed {
		metrics.RecordCartOperation("remove")
	}
	return removed, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uint64) (bool, error) {
	cleared, err := s.store.Carts().Clear(ctx, userID)
	if err != nil {
		return false, err
	}
	metrics.RecordCartOperation("clear")
	return cleared, nil
}

func (s *CartService) GetCartTotal(ctx context.Context, userID uint64) (decimal.Decimal, error) {
	return s.store.Carts().Total(ctx, userID)
}

func (s *CartService) GetCartItemCount(ctx context.Context, userID uint64) (int64, error) {
	return s.store.Carts().Count(ctx, userID)
}

// GetCart reads items, total and count concurrently.
func (s *CartService) GetCart(ctx context.Context, userID uint64) (*domain.CartSummary, error) {
	var summary domain.CartSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.GetCartItems(gctx, userID)
		summary.Items = items
		return err
	})
	g.Go(func() error {
		total, err := s.GetCartTotal(gctx, userID)
		summary.Total = total
		return err
	})
	g.Go(func() error {
		count, err := s.GetCartItemCount(gctx, userID)
		summary.ItemCount = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &summary, nil
}
