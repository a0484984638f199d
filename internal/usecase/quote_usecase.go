package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/domain"
	"github.com/delivery-pricing-service/internal/domain/repository"
	"github.com/delivery-pricing-service/internal/pkg/errors"
	"github.com/delivery-pricing-service/internal/usecase/dto"
)

const (
	defaultQuoteValidityMinutes  = 10
	defaultReturnTripDiscountPct = 10
)

// QuoteUseCase - оркестратор конвейера котировок: маршрут, тарифная
// карта, расчёт, персистентность. Единственное место, где котировка
// собирается целиком.
type QuoteUseCase struct {
	routeUC      *RouteUseCase
	rateResolver *RateResolverUseCase
	calculator   *PriceCalculatorUseCase
	quoteRepo    repository.QuoteRepository
	logger       *zap.Logger

	returnTripDelay time.Duration

	// now инъектируется в тестах для детерминированных окон валидности
	now func() time.Time
}

// NewQuoteUseCase - создание нового QuoteUseCase
func NewQuoteUseCase(
	routeUC *RouteUseCase,
	rateResolver *RateResolverUseCase,
	calculator *PriceCalculatorUseCase,
	quoteRepo repository.QuoteRepository,
	logger *zap.Logger,
	returnTripDelay time.Duration,
) *QuoteUseCase {
	if returnTripDelay <= 0 {
		returnTripDelay = 2 * time.Hour
	}
	return &QuoteUseCase{
		routeUC:         routeUC,
		rateResolver:    rateResolver,
		calculator:      calculator,
		quoteRepo:       quoteRepo,
		logger:          logger,
		returnTripDelay: returnTripDelay,
		now:             time.Now,
	}
}

// WithClock подменяет источник времени; детерминированные окна
// валидности в тестах
func (uc *QuoteUseCase) WithClock(now func() time.Time) *QuoteUseCase {
	uc.now = now
	return uc
}

// CreateQuote рассчитывает и сохраняет одиночную котировку
func (uc *QuoteUseCase) CreateQuote(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	quoteTime := uc.quoteTime(req.QuoteTime)

	quote, _, err := uc.buildQuote(ctx, req.City, req.VehicleType, req.Pickup, req.Drop, req.ItemValue, quoteTime)
	if err != nil {
		return nil, err
	}

	if err := uc.quoteRepo.CreateQuote(ctx, quote); err != nil {
		uc.logger.Error("Failed to persist quote",
			zap.String("quote_id", quote.ID.String()),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	resp := dto.FromQuote(quote)
	return &resp, nil
}

// CreateMultiQuote рассчитывает котировки для нескольких типов машин
// по одному маршруту. Маршрут разрешается один раз; провал расчёта
// по одному типу не валит остальные. Ошибка возвращается только если
// не удалась ни одна котировка.
func (uc *QuoteUseCase) CreateMultiQuote(ctx context.Context, req *dto.MultiQuoteRequest) (*dto.MultiQuoteResponse, error) {
	quoteTime := uc.quoteTime(req.QuoteTime)

	route, pickup, drop, err := uc.routeUC.Resolve(ctx,
		req.Pickup.Lat, req.Pickup.Lng, req.Drop.Lat, req.Drop.Lng,
		req.City, req.VehicleTypes[0], quoteTime)
	if err != nil {
		return nil, err
	}

	resp := &dto.MultiQuoteResponse{
		City:      req.City,
		DistanceM: route.DistanceM,
		DurationS: route.DurationS,
	}

	var firstErr error
	for _, vehicleType := range req.VehicleTypes {
		quote, err := uc.priceAndAssemble(ctx, req.City, vehicleType, req.Pickup, req.Drop,
			pickup, drop, route, req.ItemValue, quoteTime)
		if err == nil {
			err = uc.quoteRepo.CreateQuote(ctx, quote)
			if err != nil {
				uc.logger.Error("Failed to persist quote",
					zap.String("vehicle_type", vehicleType),
					zap.Error(err))
				err = errors.ErrPersistenceFailure
			}
		}
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			resp.Errors = append(resp.Errors, vehicleError(vehicleType, err))
			continue
		}
		resp.Quotes = append(resp.Quotes, dto.FromQuote(quote))
	}

	if len(resp.Quotes) == 0 {
		return nil, firstErr
	}
	return resp, nil
}

// CreateRoundTrip рассчитывает пару связанных котировок туда-обратно.
// Обратная нога считается на отложенное время с обменом точек;
// сохранение пары атомарно, частичная пара не появляется.
func (uc *QuoteUseCase) CreateRoundTrip(ctx context.Context, req *dto.RoundTripRequest) (*dto.RoundTripResponse, error) {
	quoteTime := uc.quoteTime(req.QuoteTime)
	returnTime := quoteTime.Add(uc.returnTripDelay)
	if req.ReturnTime != nil {
		returnTime = *req.ReturnTime
	}

	outbound, outCard, err := uc.buildQuote(ctx, req.City, req.VehicleType, req.Pickup, req.Drop,
		req.ItemValue, quoteTime)
	if err != nil {
		return nil, err
	}

	returnLeg, _, err := uc.buildQuote(ctx, req.City, req.VehicleType, req.Drop, req.Pickup,
		req.ItemValue, returnTime)
	if err != nil {
		return nil, err
	}

	outLeg, retLeg := domain.TripLegOutbound, domain.TripLegReturn
	outbound.TripLeg = &outLeg
	outbound.LinkedQuoteID = &returnLeg.ID
	returnLeg.TripLeg = &retLeg
	returnLeg.LinkedQuoteID = &outbound.ID

	if err := uc.quoteRepo.CreateQuotePair(ctx, outbound, returnLeg); err != nil {
		uc.logger.Error("Failed to persist round trip pair",
			zap.String("outbound_id", outbound.ID.String()),
			zap.String("return_id", returnLeg.ID.String()),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	combined := outbound.FinalPrice + returnLeg.FinalPrice
	discount := roundTripDiscount(outCard, combined)

	return &dto.RoundTripResponse{
		Outbound:       dto.FromQuote(outbound),
		Return:         dto.FromQuote(returnLeg),
		CombinedPrice:  combined,
		DiscountAmount: discount,
		TotalPrice:     combined - discount,
	}, nil
}

// RecordActual фиксирует фактическую цену вендора для котировки
// и вычисляет расхождение с котированной
func (uc *QuoteUseCase) RecordActual(ctx context.Context, quoteID uuid.UUID, req *dto.ActualPriceRequest) (*dto.ActualPriceResponse, error) {
	quote, err := uc.quoteRepo.GetQuote(ctx, quoteID)
	if err != nil {
		uc.logger.Error("Failed to load quote", zap.String("quote_id", quoteID.String()), zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}
	if quote == nil {
		return nil, errors.ErrQuoteNotFound.WithDetails(map[string]interface{}{
			"quote_id": quoteID.String(),
		})
	}

	amount, pct := domain.Variance(req.ActualPrice, quote.FinalPrice)
	actual := &domain.PricingActual{
		QuoteID:        quote.ID,
		ActualPrice:    req.ActualPrice,
		Vendor:         req.Vendor,
		VarianceAmount: amount,
		VariancePct:    pct,
		CreatedAt:      uc.now(),
	}

	if err := uc.quoteRepo.CreateActual(ctx, actual); err != nil {
		uc.logger.Error("Failed to persist actual price",
			zap.String("quote_id", quoteID.String()),
			zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}

	return &dto.ActualPriceResponse{
		QuoteID:     quote.ID,
		QuotedPrice: quote.FinalPrice,
		ActualPrice: req.ActualPrice,
		VarianceAbs: amount,
		VariancePct: pct.StringFixed(2),
		Vendor:      req.Vendor,
		RecordedAt:  actual.CreatedAt,
	}, nil
}

// GetQuote возвращает сохранённую котировку по ID
func (uc *QuoteUseCase) GetQuote(ctx context.Context, quoteID uuid.UUID) (*dto.QuoteResponse, error) {
	quote, err := uc.quoteRepo.GetQuote(ctx, quoteID)
	if err != nil {
		uc.logger.Error("Failed to load quote", zap.String("quote_id", quoteID.String()), zap.Error(err))
		return nil, errors.ErrPersistenceFailure
	}
	if quote == nil {
		return nil, errors.ErrQuoteNotFound.WithDetails(map[string]interface{}{
			"quote_id": quoteID.String(),
		})
	}

	resp := dto.FromQuote(quote)
	resp.Expired = uc.now().After(quote.ValidUntil)
	return &resp, nil
}

// buildQuote прогоняет полный конвейер одной ноги: маршрут, карта,
// расчёт, сборка котировки. Без персистентности.
func (uc *QuoteUseCase) buildQuote(
	ctx context.Context,
	city, vehicleType string,
	rawPickup, rawDrop dto.PointInput,
	itemValue *int64,
	quoteTime time.Time,
) (*domain.Quote, *domain.RateCard, error) {
	route, pickup, drop, err := uc.routeUC.Resolve(ctx,
		rawPickup.Lat, rawPickup.Lng, rawDrop.Lat, rawDrop.Lng,
		city, vehicleType, quoteTime)
	if err != nil {
		return nil, nil, err
	}

	card, localTime, err := uc.rateResolver.Resolve(ctx, city, vehicleType, pickup, drop, quoteTime)
	if err != nil {
		return nil, nil, err
	}

	quote, err := uc.assemble(city, vehicleType, rawPickup, rawDrop, pickup, drop,
		route, card, itemValue, localTime)
	if err != nil {
		return nil, nil, err
	}
	return quote, card, nil
}

// priceAndAssemble строит котировку по уже разрешённому маршруту
func (uc *QuoteUseCase) priceAndAssemble(
	ctx context.Context,
	city, vehicleType string,
	rawPickup, rawDrop dto.PointInput,
	pickup, drop domain.Coordinate,
	route *domain.RouteResult,
	itemValue *int64,
	quoteTime time.Time,
) (*domain.Quote, error) {
	card, localTime, err := uc.rateResolver.Resolve(ctx, city, vehicleType, pickup, drop, quoteTime)
	if err != nil {
		return nil, err
	}
	return uc.assemble(city, vehicleType, rawPickup, rawDrop, pickup, drop, route, card, itemValue, localTime)
}

// assemble выполняет расчёт и собирает доменную котировку
func (uc *QuoteUseCase) assemble(
	city, vehicleType string,
	rawPickup, rawDrop dto.PointInput,
	pickup, drop domain.Coordinate,
	route *domain.RouteResult,
	card *domain.RateCard,
	itemValue *int64,
	localTime time.Time,
) (*domain.Quote, error) {
	breakdown, err := uc.calculator.Calculate(card, route, itemValue, localTime)
	if err != nil {
		return nil, err
	}

	confidence := domain.ConfidenceHigh
	if route.Provider == domain.ProviderHaversineFallback {
		confidence = domain.ConfidenceEstimated
	}

	validity := card.QuoteValidityMinutes
	if validity <= 0 {
		validity = defaultQuoteValidityMinutes
	}

	createdAt := uc.now()
	return &domain.Quote{
		ID:          uuid.New(),
		City:        city,
		VehicleType: vehicleType,

		PickupLatRaw: rawPickup.Lat,
		PickupLngRaw: rawPickup.Lng,
		DropLatRaw:   rawDrop.Lat,
		DropLngRaw:   rawDrop.Lng,

		PickupLat: pickup.Lat,
		PickupLng: pickup.Lng,
		DropLat:   drop.Lat,
		DropLng:   drop.Lng,

		DistanceM:          route.DistanceM,
		DurationS:          route.DurationS,
		DurationInTrafficS: route.DurationInTrafficS,
		Provider:           route.Provider,
		Confidence:         confidence,

		FinalPrice: breakdown.FinalPrice,
		Breakdown:  breakdown,

		ValidUntil: createdAt.Add(time.Duration(validity) * time.Minute),
		CreatedAt:  createdAt,
	}, nil
}

// roundTripDiscount считает скидку с суммарной цены пары.
// Процент берётся из тарифной карты прямой ноги, при нулевом
// значении используется умолчание.
func roundTripDiscount(card *domain.RateCard, combined int64) int64 {
	pct := decimal.NewFromInt(defaultReturnTripDiscountPct)
	if card != nil && card.ReturnTripDiscountPct.IsPositive() {
		pct = card.ReturnTripDiscountPct
	}

	return decimal.NewFromInt(combined).
		Mul(pct).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

func (uc *QuoteUseCase) quoteTime(override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	return uc.now()
}

func vehicleError(vehicleType string, err error) dto.VehicleQuoteError {
	if appErr, ok := errors.AsAppError(err); ok {
		return dto.VehicleQuoteError{
			VehicleType: vehicleType,
			Code:        appErr.Code,
			Message:     appErr.Message,
		}
	}
	return dto.VehicleQuoteError{
		VehicleType: vehicleType,
		Code:        errors.ErrInternalServer.Code,
		Message:     err.Error(),
	}
}
