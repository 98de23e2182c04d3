package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storefront-api/internal/domain"
	"storefront-api/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrProductNotFound = fmt.Errorf("product %w", domain.ErrNotFound)

const defaultProductCacheTTL = 5 * time.Minute

// RedisClient is the subset of *redis.Client the product cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type CatalogService struct {
	store       repository.Store
	redisClient RedisClient
	cacheTTL    time.Duration
	group       singleflight.Group
	logger      *zap.Logger
}

func NewCatalogService(store repository.Store, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		cacheTTL: defaultProductCacheTTL,
		logger:   logger,
	}
}

// SetRedisClient enables the product read-through cache.
func (s *CatalogService) SetRedisClient(client RedisClient, ttl time.Duration) {
	s.redisClient = client
	if ttl > 0 {
		s.cacheTTL = ttl
	}
}

func productCacheKey(id uint64) string {
	return "product:" + strconv.FormatUint(id, 10)
}

// GetProduct returns the product whatever its active flag.
func (s *CatalogService) GetProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	prod, err := s.getProductWithCache(ctx, id)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}
	return prod, nil
}

// GetActiveProduct reads an active product straight from the store, bypassing
// the cache so snapshots taken from it carry the current price.
func (s *CatalogService) GetActiveProduct(ctx context.Context, id uint64) (*domain.Product, error) {
	prod, err := s.store.Products().FindActiveByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if prod == nil {
		return nil, fmt.Errorf("%w or inactive", ErrProductNotFound)
	}
	return prod, nil
}

func (s *CatalogService) getProductWithCache(ctx context.Context, id uint64) (*domain.Product, error) {
	cacheKey := productCacheKey(id)

	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var prod domain.Product
			if err := json.Unmarshal(cached, &prod); err == nil {
				return &prod, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("Product cache read failed", zap.Uint64("product_id", id), zap.Error(err))
		}
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		// shared by every waiter on this key, so one caller's cancellation must not fail the rest
		ctx := context.WithoutCancel(ctx)
		prod, err := s.store.Products().FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if prod != nil {
			s.cacheProduct(ctx, prod, s.cacheTTL)
		}
		return prod, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	return v.(*domain.Product), nil
}

func (s *CatalogService) cacheProduct(ctx context.Context, prod *domain.Product, ttl time.Duration) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(prod)
	if err != nil {
		return
	}
	if err := s.redisClient.Set(ctx, productCacheKey(prod.ID), data, ttl).Err(); err != nil {
		s.logger.Warn("Product cache write failed", zap.Uint64("product_id", prod.ID), zap.Error(err))
	}
}

// InvalidateProducts drops cached entries. Failures are logged only; the TTL bounds staleness.
func (s *CatalogService) InvalidateProducts(ctx context.Context, ids ...uint64) {
	if s.redisClient == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productCacheKey(id)
	}
	if err := s.redisClient.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("Product cache invalidation failed", zap.Uint64s("product_ids", ids), zap.Error(err))
	}
}

func (s *CatalogService) WarmupProductCache(ctx context.Context, productIds []uint64) error {
	if s.redisClient == nil {
		return nil
	}

	for _, id := range productIds {
		prod, err := s.store.Products().FindByID(ctx, id)
		if err != nil {
			s.logger.Warn("Failed to warm up cache for product", zap.Uint64("product_id", id), zap.Error(err))
			continue
		}
		if prod != nil {
			s.cacheProduct(ctx, prod, s.cacheTTL)
		}
	}

	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page, limit int) (*domain.ProductPage, error) {
	offset, limit, err := pageWindow(page, limit)
	if err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, fmt.Errorf("%w: minPrice is greater than maxPrice", domain.ErrInvalidInput)
	}
	return s.store.Products().List(ctx, filter, offset, limit)
}

func (s *CatalogService) GetCategories(ctx context.Context) ([]string, error) {
	categories, err := s.store.Products().Categories(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, prod *domain.Product) (*domain.Product, error) {
	if err := validateProduct(prod.Name, prod.Price.IsPositive(), prod.Stock); err != nil {
		return nil, err
	}
	if err := s.store.Products().Create(ctx, prod); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.Uint64("product_id", prod.ID), zap.String("name", prod.Name))
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint64, upd domain.ProductUpdate) (*domain.Product, error) {
	if upd.Price != nil && !upd.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	if upd.Name != nil && *upd.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	if !upd.Empty() {
		found, err := s.store.Products().Update(ctx, id, upd)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, ErrProductNotFound
		}
		s.InvalidateProducts(ctx, id)
	}

	prod, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint64) error {
	found, err := s.store.Products().Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrProductNotFound
	}
	s.InvalidateProducts(ctx, id)
	s.logger.Info("Product deleted", zap.Uint64("product_id", id))
	return nil
}

func validateProduct(name string, positivePrice bool, stock int) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	case !positivePrice:
		return fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
	case stock < 0:
		return fmt.Errorf("%w: stock must not be negative", domain.ErrInvalidInput)
	}
	return nil
}
