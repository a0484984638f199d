package googlemaps

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"googlemaps.github.io/maps"

	"github.com/delivery-pricing-service/internal/config"
	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

type client struct {
	mapsClient *maps.Client
	logger     *zap.Logger
}

// NewGoogleMapsClient создает клиент Distance Matrix API.
// Дополнительные opts (WithBaseURL, WithHTTPClient) используются
// в тестах для подмены эндпоинта.
func NewGoogleMapsClient(cfg *config.MapsConfig, logger *zap.Logger, opts ...maps.ClientOption) (repository.RouteProvider, error) {
	options := append([]maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
	}, opts...)

	mapsClient, err := maps.NewClient(options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &client{
		mapsClient: mapsClient,
		logger:     logger,
	}, nil
}

func (c *client) Name() string {
	return domain.ProviderGoogleMaps
}

// GetRoute запрашивает дистанцию и длительность с учетом трафика.
// departure_time=now включает duration_in_traffic в ответе.
func (c *client) GetRoute(ctx context.Context, pickup, drop domain.Coordinate) (*domain.RouteResult, error) {
	req := &maps.DistanceMatrixRequest{
		Origins:       []string{fmt.Sprintf("%f,%f", pickup.Lat, pickup.Lng)},
		Destinations:  []string{fmt.Sprintf("%f,%f", drop.Lat, drop.Lng)},
		Mode:          maps.TravelModeDriving,
		Units:         maps.UnitsMetric,
		DepartureTime: "now",
		TrafficModel:  maps.TrafficModelBestGuess,
	}

	resp, err := c.mapsClient.DistanceMatrix(ctx, req)
	if err != nil {
		c.logger.Warn("Distance matrix request failed", zap.Error(err))
		return nil, errors.ErrProviderFailure.WithDetails(map[string]interface{}{
			"cause": err.Error(),
		})
	}

	if len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return nil, errors.ErrProviderFailure.WithDetails(map[string]interface{}{
			"cause": "empty distance matrix response",
		})
	}

	element := resp.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, errors.ErrProviderFailure.WithDetails(map[string]interface{}{
			"cause":  "distance matrix element not ok",
			"status": element.Status,
		})
	}

	result := &domain.RouteResult{
		DistanceM: int64(element.Distance.Meters),
		DurationS: int64(element.Duration.Seconds()),
		Provider:  domain.ProviderGoogleMaps,
	}
	if element.DurationInTraffic > 0 {
		inTraffic := int64(element.DurationInTraffic.Seconds())
		result.DurationInTrafficS = &inTraffic
	}

	c.logger.Debug("Distance matrix resolved",
		zap.Int64("distance_m", result.DistanceM),
		zap.Int64("duration_s", result.DurationS))
	return result, nil
}
