package web

import (
	"github.com/gofiber/fiber/v2"

	"tiktok-stats/internal/domain"
)

// apiResponse is the JSON envelope shared by every /api endpoint.
type apiResponse struct {
	Success bool                    `json:"success"`
	Data    any                     `json:"data,omitempty"`
	Error   *domain.ClassifiedError `json:"error,omitempty"`
}

// queryStatus maps a query result to its HTTP status. Partial results are
// reported as 200 with both data and error set.
func queryStatus(result *domain.QueryResult) int {
	if result.Outcome != domain.OutcomeFailed || result.Error == nil {
		return fiber.StatusOK
	}
	switch result.Error.Code {
	case domain.CodeMissingParameters:
		return fiber.StatusBadRequest
	case domain.CodeEmptyResponse:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// historyStatus maps a classified history error to its HTTP status.
func historyStatus(classified domain.ClassifiedError) int {
	switch classified.Code {
	case domain.CodeMissingHistoryParams, domain.CodeMissingAPIKey:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
