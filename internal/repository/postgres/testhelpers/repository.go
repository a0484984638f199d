package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewZoneRepositoryForTest creates a zone repository with test database and logger
func NewZoneRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ZoneRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewZoneRepository(pgDB)
}

// NewPricingRepositoryForTest creates a pricing repository with test database and logger
func NewPricingRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.PricingRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewPricingRepository(pgDB)
}

// NewQuoteRepositoryForTest creates a quote repository with test database and logger
func NewQuoteRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.QuoteRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewQuoteRepository(pgDB)
}
