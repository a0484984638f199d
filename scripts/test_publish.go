//go:build ignore

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ActualPriceEvent struct {
	QuoteID     uuid.UUID `json:"quote_id"`
	ActualPrice int64     `json:"actual_price"`
	Vendor      string    `json:"vendor,omitempty"`
}

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	quoteID := flag.String("quote", "", "Quote UUID to report actual price for")
	actualPrice := flag.Int64("price", 33000, "Actual vendor price in minor units")
	vendor := flag.String("vendor", "porter", "Vendor name")
	flag.Parse()

	if *quoteID == "" {
		log.Fatal("Pass -quote with an existing quote UUID")
	}

	id, err := uuid.Parse(*quoteID)
	if err != nil {
		log.Fatalf("Invalid quote UUID: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	// Проверка подключения
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := ActualPriceEvent{
		QuoteID:     id,
		ActualPrice: *actualPrice,
		Vendor:      *vendor,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// Публикация в стрим
	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: "stream:pricing:actuals",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("✅ Event published successfully!\n")
	fmt.Printf("   Stream: stream:pricing:actuals\n")
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Quote ID: %s\n", event.QuoteID)
	fmt.Printf("   Actual price: %d (%s)\n", event.ActualPrice, event.Vendor)
}
