package repository

import (
	"context"
	"time"

	"github.com/delivery-pricing-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу; nil, nil при промахе
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// GetRoute получает результат маршрута из кеша; nil, nil при промахе
	GetRoute(ctx context.Context, key string) (*domain.RouteResult, error)

	// SetRoute сохраняет результат маршрута в кеше
	SetRoute(ctx context.Context, key string, route *domain.RouteResult, ttl time.Duration) error
}
