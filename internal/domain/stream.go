package domain

import "github.com/google/uuid"

// Stream names (должны совпадать с публикующими сервисами)
const (
	StreamPricingActuals = "stream:pricing:actuals"
)

// ActualPriceEvent - входящее событие с фактической ценой вендора
type ActualPriceEvent struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	ActualPrice int64     `json:"actual_price"`
	Vendor      string    `json:"vendor,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
