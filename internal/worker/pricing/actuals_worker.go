package pricing

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
	"github.com/delivery-pricing-service/internal/usecase/dto"
	"github.com/delivery-pricing-service/internal/worker"
)

const (
	maxBatchSize    = 20                     // максимум сообщений за раз
	emptyQueueSleep = 100 * time.Millisecond // пауза если очередь пуста
)

// ActualRecorder фиксирует фактическую цену вендора по котировке
type ActualRecorder interface {
	RecordActual(ctx context.Context, quoteID uuid.UUID, req *dto.ActualPriceRequest) (*dto.ActualPriceResponse, error)
}

// ActualsWorker принимает фактические цены вендоров из Redis Stream
// и фиксирует расхождение с котированной ценой через quote engine
type ActualsWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	quoteUC      ActualRecorder
	consumerName string
}

// NewActualsWorker создает новый ActualsWorker
func NewActualsWorker(
	streamRepo repository.StreamRepository,
	quoteUC ActualRecorder,
	consumerGroup string,
	logger *zap.Logger,
) *ActualsWorker {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())

	return &ActualsWorker{
		BaseWorker:   worker.NewBaseWorker("pricing-actuals", consumerGroup, logger),
		streamRepo:   streamRepo,
		quoteUC:      quoteUC,
		consumerName: consumerName,
	}
}

// Start запускает воркер
func (w *ActualsWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting ActualsWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int("max_batch_size", maxBatchSize))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamPricingActuals, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		default:
			processed, err := w.processBatch(ctx)
			if err != nil {
				logger.Error("Failed to process batch", zap.Error(err))
				time.Sleep(time.Second) // пауза при ошибке
				continue
			}

			if processed == 0 {
				time.Sleep(emptyQueueSleep)
			}
		}
	}
}

// processBatch читает и обрабатывает пакет сообщений.
// Возвращает количество обработанных сообщений.
func (w *ActualsWorker) processBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(
		ctx,
		domain.StreamPricingActuals,
		w.ConsumerGroup(),
		w.consumerName,
		maxBatchSize,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}

	if len(messages) == 0 {
		return 0, nil // очередь пуста
	}

	logger.Info("Processing actuals batch", zap.Int("message_count", len(messages)))

	processed := 0
	for _, msg := range messages {
		if w.processMessage(ctx, msg) {
			processed++
		}
	}

	return processed, nil
}

// processMessage обрабатывает одно событие. Возвращает true, если
// сообщение подтверждено (включая битые и ссылающиеся на несуществующую
// котировку: их повтор бессмыслен).
func (w *ActualsWorker) processMessage(ctx context.Context, msg domain.StreamMessage) bool {
	logger := w.Logger()

	event, err := w.parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		// ACK битое сообщение чтобы не застревало
		w.ack(ctx, msg.ID)
		return true
	}

	_, err = w.quoteUC.RecordActual(ctx, event.QuoteID, &dto.ActualPriceRequest{
		ActualPrice: event.ActualPrice,
		Vendor:      event.Vendor,
	})
	if err != nil {
		if stderrors.Is(err, errors.ErrQuoteNotFound) {
			logger.Warn("Actual references unknown quote, skipping",
				zap.String("message_id", msg.ID),
				zap.String("quote_id", event.QuoteID.String()))
			w.ack(ctx, msg.ID)
			return true
		}
		// Транзиентный сбой: без ACK, сообщение будет перечитано
		logger.Error("Failed to record actual price",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return false
	}

	logger.Debug("Actual price recorded",
		zap.String("quote_id", event.QuoteID.String()),
		zap.Int64("actual_price", event.ActualPrice))
	w.ack(ctx, msg.ID)
	return true
}

func (w *ActualsWorker) parseMessage(msg domain.StreamMessage) (*domain.ActualPriceEvent, error) {
	var event domain.ActualPriceEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("invalid event json: %w", err)
	}
	if event.QuoteID == uuid.Nil {
		return nil, fmt.Errorf("missing quote_id")
	}
	if event.ActualPrice <= 0 {
		return nil, fmt.Errorf("non-positive actual_price")
	}
	return &event, nil
}

func (w *ActualsWorker) ack(ctx context.Context, messageID string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamPricingActuals, w.ConsumerGroup(), messageID); err != nil {
		w.Logger().Warn("Failed to ack message", zap.String("message_id", messageID), zap.Error(err))
	}
}
