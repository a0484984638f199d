package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/delivery-pricing-service/internal/pkg/errors"
	"github.com/delivery-pricing-service/internal/pkg/utils"
	"github.com/delivery-pricing-service/internal/pkg/validator"
	"github.com/delivery-pricing-service/internal/usecase"
	"github.com/delivery-pricing-service/internal/usecase/dto"
)

// QuoteHandler - обработчик котировок доставки
type QuoteHandler struct {
	quoteUC *usecase.QuoteUseCase
	logger  *zap.Logger
}

// NewQuoteHandler создает новый QuoteHandler
func NewQuoteHandler(quoteUC *usecase.QuoteUseCase, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteUC: quoteUC,
		logger:  logger,
	}
}

// CreateQuote godoc
// @Summary Расчет котировки доставки
// @Description Рассчитывает цену доставки для одного типа транспорта: маршрут, тариф, surge и итоговая цена
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.QuoteRequest true "Параметры котировки"
// @Success 200 {object} utils.SuccessResponse{data=dto.QuoteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) CreateQuote(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	h.logger.Info("CreateQuote request",
		zap.String("city", req.City),
		zap.String("vehicle_type", req.VehicleType))

	result, err := h.quoteUC.CreateQuote(c.Context(), &req)
	if err != nil {
		h.logger.Error("CreateQuote failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// CreateMultiQuote godoc
// @Summary Котировки для нескольких типов транспорта
// @Description Рассчитывает цены для нескольких типов транспорта по одному маршруту. Маршрут резолвится один раз
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.MultiQuoteRequest true "Параметры с массивом типов транспорта"
// @Success 200 {object} utils.SuccessResponse{data=dto.MultiQuoteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/quotes/multi [post]
func (h *QuoteHandler) CreateMultiQuote(c *fiber.Ctx) error {
	var req dto.MultiQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	h.logger.Info("CreateMultiQuote request",
		zap.String("city", req.City),
		zap.Strings("vehicle_types", req.VehicleTypes))

	result, err := h.quoteUC.CreateMultiQuote(c.Context(), &req)
	if err != nil {
		h.logger.Error("CreateMultiQuote failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: len(result.Quotes),
	})
}

// CreateRoundTrip godoc
// @Summary Котировка туда-обратно
// @Description Рассчитывает связанную пару котировок: прямой и обратный рейс со скидкой на комбинированную цену
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.RoundTripRequest true "Параметры рейса туда-обратно"
// @Success 200 {object} utils.SuccessResponse{data=dto.RoundTripResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/quotes/round-trip [post]
func (h *QuoteHandler) CreateRoundTrip(c *fiber.Ctx) error {
	var req dto.RoundTripRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	h.logger.Info("CreateRoundTrip request",
		zap.String("city", req.City),
		zap.String("vehicle_type", req.VehicleType))

	result, err := h.quoteUC.CreateRoundTrip(c.Context(), &req)
	if err != nil {
		h.logger.Error("CreateRoundTrip failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// GetQuote godoc
// @Summary Получение котировки по ID
// @Description Возвращает сохраненную котировку вместе с разбивкой цены
// @Tags Quotes
// @Produce json
// @Param id path string true "UUID котировки"
// @Success 200 {object} utils.SuccessResponse{data=dto.QuoteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"id": c.Params("id"),
		}))
	}

	result, err := h.quoteUC.GetQuote(c.Context(), quoteID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// RecordActual godoc
// @Summary Фиксация фактической цены вендора
// @Description Сохраняет фактическую цену по котировке и возвращает расхождение с котированной ценой
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "UUID котировки"
// @Param request body dto.ActualPriceRequest true "Фактическая цена"
// @Success 200 {object} utils.SuccessResponse{data=dto.ActualPriceResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/quotes/{id}/actual [post]
func (h *QuoteHandler) RecordActual(c *fiber.Ctx) error {
	quoteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"id": c.Params("id"),
		}))
	}

	var req dto.ActualPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"validation": err.Error(),
		}))
	}

	h.logger.Info("RecordActual request",
		zap.String("quote_id", quoteID.String()),
		zap.Int64("actual_price", req.ActualPrice))

	result, err := h.quoteUC.RecordActual(c.Context(), quoteID, &req)
	if err != nil {
		h.logger.Error("RecordActual failed", zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}
