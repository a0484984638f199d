package errors

import "net/http"

var (
	ErrInvalidCoordinate = New(
		"INVALID_COORDINATE",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrConfigNotFound = New(
		"CONFIG_NOT_FOUND",
		"No active pricing config for city and vehicle type",
		http.StatusNotFound,
	)

	ErrQuoteNotFound = New(
		"QUOTE_NOT_FOUND",
		"Quote not found",
		http.StatusNotFound,
	)

	// ErrZoneLookupAmbiguous не возвращается по умолчанию: при равных
	// приоритетах индекс зон выбирает зону с наименьшим кодом
	ErrZoneLookupAmbiguous = New(
		"ZONE_LOOKUP_AMBIGUOUS",
		"Multiple zones with equal priority claim the point",
		http.StatusInternalServerError,
	)

	ErrCalculationError = New(
		"CALCULATION_ERROR",
		"Rate card is missing required fields",
		http.StatusInternalServerError,
	)

	// ErrProviderFailure никогда не доходит до клиента: route resolver
	// всегда деградирует на геометрический fallback
	ErrProviderFailure = New(
		"PROVIDER_FAILURE",
		"Route provider request failed",
		http.StatusServiceUnavailable,
	)

	ErrPersistenceFailure = New(
		"PERSISTENCE_FAILURE",
		"Failed to persist record",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
