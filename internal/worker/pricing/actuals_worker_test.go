package pricing_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/pkg/errors"
	"github.com/delivery-pricing-service/internal/usecase/dto"
	"github.com/delivery-pricing-service/internal/worker/pricing"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishMessage(ctx context.Context, stream string, payload interface{}) error {
	args := m.Called(ctx, stream, payload)
	return args.Error(0)
}

// MockActualRecorder is a mock of the quote engine's actual recording entry point
type MockActualRecorder struct {
	mock.Mock
}

func (m *MockActualRecorder) RecordActual(ctx context.Context, quoteID uuid.UUID, req *dto.ActualPriceRequest) (*dto.ActualPriceResponse, error) {
	args := m.Called(ctx, quoteID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ActualPriceResponse), args.Error(1)
}

func newTestWorker() (*pricing.ActualsWorker, *MockStreamRepository, *MockActualRecorder) {
	mockStream := &MockStreamRepository{}
	mockRecorder := &MockActualRecorder{}
	w := pricing.NewActualsWorker(mockStream, mockRecorder, "test-group", zap.NewNop())
	return w, mockStream, mockRecorder
}

func actualMessage(id string, event domain.ActualPriceEvent) domain.StreamMessage {
	data, _ := json.Marshal(event)
	return domain.StreamMessage{ID: id, Data: string(data)}
}

func TestActualsWorker_Name(t *testing.T) {
	w, _, _ := newTestWorker()
	assert.Equal(t, "pricing-actuals", w.Name())
}

func TestActualsWorker_Stop(t *testing.T) {
	w, _, _ := newTestWorker()

	// Stop should not error even if not started
	err := w.Stop()
	assert.NoError(t, err)

	// Calling stop multiple times should be safe
	err = w.Stop()
	assert.NoError(t, err)
}

func TestActualsWorker_ContextCancellation(t *testing.T) {
	w, mockStream, _ := newTestWorker()

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamPricingActuals, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}

	mockStream.AssertExpectations(t)
}

func TestActualsWorker_BatchProcessing(t *testing.T) {
	w, mockStream, mockRecorder := newTestWorker()

	quoteID1 := uuid.New()
	quoteID2 := uuid.New()

	messages := []domain.StreamMessage{
		actualMessage("1234567890-0", domain.ActualPriceEvent{
			QuoteID:     quoteID1,
			ActualPrice: 33000,
			Vendor:      "porter",
		}),
		actualMessage("1234567890-1", domain.ActualPriceEvent{
			QuoteID:     quoteID2,
			ActualPrice: 45000,
			Vendor:      "porter",
		}),
	}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamPricingActuals, "test-group").
		Return(nil)

	// First call returns the batch, then the queue is empty
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	mockRecorder.On("RecordActual", mock.Anything, quoteID1, mock.MatchedBy(func(req *dto.ActualPriceRequest) bool {
		return req.ActualPrice == 33000 && req.Vendor == "porter"
	})).Return(&dto.ActualPriceResponse{QuoteID: quoteID1, ActualPrice: 33000}, nil)
	mockRecorder.On("RecordActual", mock.Anything, quoteID2, mock.MatchedBy(func(req *dto.ActualPriceRequest) bool {
		return req.ActualPrice == 45000
	})).Return(&dto.ActualPriceResponse{QuoteID: quoteID2, ActualPrice: 45000}, nil)

	mockStream.On("AckMessage", mock.Anything, domain.StreamPricingActuals, "test-group", "1234567890-0").
		Return(nil)
	mockStream.On("AckMessage", mock.Anything, domain.StreamPricingActuals, "test-group", "1234567890-1").
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
	mockRecorder.AssertExpectations(t)
}

func TestActualsWorker_MalformedMessageAcked(t *testing.T) {
	w, mockStream, mockRecorder := newTestWorker()

	messages := []domain.StreamMessage{
		{ID: "1234567890-0", Data: "not json"},
	}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamPricingActuals, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	// Broken message gets acked so it does not stay pending
	mockStream.On("AckMessage", mock.Anything, domain.StreamPricingActuals, "test-group", "1234567890-0").
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
	mockRecorder.AssertNotCalled(t, "RecordActual", mock.Anything, mock.Anything, mock.Anything)
}

func TestActualsWorker_UnknownQuoteAcked(t *testing.T) {
	w, mockStream, mockRecorder := newTestWorker()

	quoteID := uuid.New()
	messages := []domain.StreamMessage{
		actualMessage("1234567890-0", domain.ActualPriceEvent{
			QuoteID:     quoteID,
			ActualPrice: 12000,
		}),
	}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamPricingActuals, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	mockRecorder.On("RecordActual", mock.Anything, quoteID, mock.Anything).
		Return(nil, errors.ErrQuoteNotFound)

	// Unknown quote is a permanent failure, message must not be retried
	mockStream.On("AckMessage", mock.Anything, domain.StreamPricingActuals, "test-group", "1234567890-0").
		Return(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
	mockRecorder.AssertExpectations(t)
}

func TestActualsWorker_TransientFailureNotAcked(t *testing.T) {
	w, mockStream, mockRecorder := newTestWorker()

	quoteID := uuid.New()
	messages := []domain.StreamMessage{
		actualMessage("1234567890-0", domain.ActualPriceEvent{
			QuoteID:     quoteID,
			ActualPrice: 12000,
		}),
	}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamPricingActuals, "test-group").
		Return(nil)
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return(messages, nil).Once()
	mockStream.On("ConsumeBatch", mock.Anything, domain.StreamPricingActuals, "test-group", mock.AnythingOfType("string"), 20).
		Return([]domain.StreamMessage{}, nil)

	mockRecorder.On("RecordActual", mock.Anything, quoteID, mock.Anything).
		Return(nil, errors.ErrPersistenceFailure)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Worker did not stop in time")
	}

	mockStream.AssertExpectations(t)
	// No ack so the message stays pending for redelivery
	mockStream.AssertNotCalled(t, "AckMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
