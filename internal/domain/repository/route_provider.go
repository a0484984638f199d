package repository

import (
	"context"

	"github.com/delivery-pricing-service/internal/domain"
)

// RouteProvider - контракт внешнего источника дистанции и длительности.
// Реализации возвращают ошибку при любом сбое; преобразование сбоев в
// геометрический fallback - ответственность route resolver, ошибки
// провайдера никогда не доходят до вызывающего.
type RouteProvider interface {
	// GetRoute возвращает дистанцию и длительность маршрута между
	// нормализованными точками
	GetRoute(ctx context.Context, pickup, drop domain.Coordinate) (*domain.RouteResult, error)

	// Name возвращает имя провайдера для breakdown и confidence
	Name() string
}
