// Package docs Delivery Pricing Service API.
//
// Сервис расчета котировок доставки. Принимает координаты забора и
// доставки, резолвит маршрут через внешнего провайдера (с геометрическим
// fallback), подбирает тариф по зонам и коридорам города и считает
// итоговую цену с surge-правилами и буферами.
//
// Основные возможности:
// - Расчет котировки для одного типа транспорта
// - Мульти-котировка для нескольких типов транспорта по одному маршруту
// - Связанные котировки туда-обратно со скидкой
// - Фиксация фактических цен вендоров и расчет расхождения
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package docs
