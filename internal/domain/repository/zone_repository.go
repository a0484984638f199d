package repository

import (
	"context"

	"github.com/delivery-pricing-service/internal/domain"
)

// ZoneRepository определяет доступ к географическим зонам
type ZoneRepository interface {
	// ListActiveByCity возвращает активные зоны города в порядке
	// priority DESC, code ASC - порядок обхода индекса зон
	ListActiveByCity(ctx context.Context, city string) ([]*domain.Zone, error)
}
