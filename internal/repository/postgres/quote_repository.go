package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
)

type quoteRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewQuoteRepository(db *DB) repository.QuoteRepository {
	return &quoteRepository{
		db:     db.DB,
		logger: db.logger,
	}
}

const quoteInsertQuery = `
	INSERT INTO quotes (
		id, city, vehicle_type,
		pickup_lat_raw, pickup_lng_raw, drop_lat_raw, drop_lng_raw,
		pickup_lat, pickup_lng, drop_lat, drop_lng,
		distance_m, duration_s, duration_in_traffic_s,
		provider, confidence,
		final_price, breakdown,
		valid_until, linked_quote_id, trip_leg, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
		$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
	)
`

func quoteInsertArgs(q *domain.Quote, breakdownJSON []byte) []interface{} {
	return []interface{}{
		q.ID, q.City, q.VehicleType,
		q.PickupLatRaw, q.PickupLngRaw, q.DropLatRaw, q.DropLngRaw,
		q.PickupLat, q.PickupLng, q.DropLat, q.DropLng,
		q.DistanceM, q.DurationS, q.DurationInTrafficS,
		q.Provider, q.Confidence,
		q.FinalPrice, breakdownJSON,
		q.ValidUntil, q.LinkedQuoteID, q.TripLeg, q.CreatedAt,
	}
}

func (r *quoteRepository) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	breakdownJSON, err := json.Marshal(quote.Breakdown)
	if err != nil {
		r.logger.Error("Failed to marshal breakdown", zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	if _, err := r.db.ExecContext(ctx, quoteInsertQuery, quoteInsertArgs(quote, breakdownJSON)...); err != nil {
		r.logger.Error("Failed to insert quote",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	return nil
}

// CreateQuotePair сохраняет обе ноги туда-обратно в одной транзакции:
// либо обе котировки со взаимными ссылками, либо ни одной
func (r *quoteRepository) CreateQuotePair(ctx context.Context, outbound, returnLeg *domain.Quote) error {
	outJSON, err := json.Marshal(outbound.Breakdown)
	if err != nil {
		r.logger.Error("Failed to marshal outbound breakdown", zap.Error(err))
		return errors.ErrPersistenceFailure
	}
	retJSON, err := json.Marshal(returnLeg.Breakdown)
	if err != nil {
		r.logger.Error("Failed to marshal return breakdown", zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin quote pair tx", zap.Error(err))
		return errors.ErrPersistenceFailure
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, quoteInsertQuery, quoteInsertArgs(outbound, outJSON)...); err != nil {
		r.logger.Error("Failed to insert outbound quote", zap.Error(err))
		return errors.ErrPersistenceFailure
	}
	if _, err := tx.ExecContext(ctx, quoteInsertQuery, quoteInsertArgs(returnLeg, retJSON)...); err != nil {
		r.logger.Error("Failed to insert return quote", zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit quote pair", zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	return nil
}

func (r *quoteRepository) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	query := `
		SELECT
			id, city, vehicle_type,
			pickup_lat_raw, pickup_lng_raw, drop_lat_raw, drop_lng_raw,
			pickup_lat, pickup_lng, drop_lat, drop_lng,
			distance_m, duration_s, duration_in_traffic_s,
			provider, confidence,
			final_price, breakdown,
			valid_until, linked_quote_id, trip_leg, created_at
		FROM quotes
		WHERE id = $1
	`

	var q domain.Quote
	var breakdownJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID, &q.City, &q.VehicleType,
		&q.PickupLatRaw, &q.PickupLngRaw, &q.DropLatRaw, &q.DropLngRaw,
		&q.PickupLat, &q.PickupLng, &q.DropLat, &q.DropLng,
		&q.DistanceM, &q.DurationS, &q.DurationInTrafficS,
		&q.Provider, &q.Confidence,
		&q.FinalPrice, &breakdownJSON,
		&q.ValidUntil, &q.LinkedQuoteID, &q.TripLeg, &q.CreatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get quote", zap.String("quote_id", id.String()), zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	if len(breakdownJSON) > 0 {
		var bd domain.PriceBreakdown
		if err := json.Unmarshal(breakdownJSON, &bd); err != nil {
			r.logger.Warn("Failed to unmarshal breakdown",
				zap.String("quote_id", id.String()),
				zap.Error(err))
		} else {
			q.Breakdown = &bd
		}
	}

	return &q, nil
}

func (r *quoteRepository) CreateActual(ctx context.Context, actual *domain.PricingActual) error {
	query := `
		INSERT INTO pricing_actuals (
			quote_id, actual_price, vendor, variance_amount, variance_pct, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		actual.QuoteID, actual.ActualPrice, actual.Vendor,
		actual.VarianceAmount, actual.VariancePct, actual.CreatedAt,
	).Scan(&actual.ID)
	if err != nil {
		r.logger.Error("Failed to insert pricing actual",
			zap.String("quote_id", actual.QuoteID.String()),
			zap.Error(err))
		return errors.ErrPersistenceFailure
	}

	return nil
}
