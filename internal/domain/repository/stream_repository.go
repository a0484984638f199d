package repository

import (
	"context"

	"github.com/delivery-pricing-service/internal/domain"
)

// StreamRepository определяет работу с Redis Streams для приёма
// фактических цен вендоров
type StreamRepository interface {
	// CreateConsumerGroup создаёт consumer group для стрима
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// ConsumeBatch читает до count сообщений без блокировки
	ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error)

	// AckMessage подтверждает обработку сообщения
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// PublishMessage публикует JSON-событие в стрим
	PublishMessage(ctx context.Context, stream string, payload interface{}) error
}
