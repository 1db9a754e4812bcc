package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// ReportHandler exposes grading report synthesis.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler constructs the handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("component", "report_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *ReportHandler) Register(router fiber.Router) {
	router.Post("/:slug/report", h.generate)
}

func (h *ReportHandler) generate(c *fiber.Ctx) error {
	var payload dto.GradingReportRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	response, err := h.service.Generate(requestContext(c), slugParam(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "report generated", response)
}

func (h *ReportHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrNoTranscriptData):
		return utils.SendError(c, fiber.StatusNotFound, "no session activity to grade")
	case errors.Is(err, service.ErrMalformedReport):
		return utils.SendError(c, fiber.StatusBadGateway, "report generation failed")
	case errors.Is(err, service.ErrUpstream):
		return utils.SendError(c, fiber.StatusBadGateway, "model unavailable")
	default:
		h.logger.Error().Err(err).Msg("report generation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
