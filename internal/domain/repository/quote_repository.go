package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/delivery-pricing-service/internal/domain"
)

// QuoteRepository определяет персистентность котировок и фактических цен.
// Котировки append-only: breakdown фиксируется при создании и больше
// не пересчитывается.
type QuoteRepository interface {
	// CreateQuote сохраняет новую котировку
	CreateQuote(ctx context.Context, quote *domain.Quote) error

	// CreateQuotePair атомарно сохраняет обе ноги поездки туда-обратно
	// с двунаправленной связью; частичная пара не сохраняется
	CreateQuotePair(ctx context.Context, outbound, returnLeg *domain.Quote) error

	// GetQuote возвращает котировку по ID, nil при отсутствии
	GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error)

	// CreateActual сохраняет фактическую цену вендора
	CreateActual(ctx context.Context, actual *domain.PricingActual) error
}
