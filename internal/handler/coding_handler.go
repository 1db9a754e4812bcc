package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// CodingHandler exposes code execution, follow-up and hint endpoints.
type CodingHandler struct {
	executions service.ExecutionService
	hints      service.HintService
	logger     zerolog.Logger
}

// NewCodingHandler constructs the handler.
func NewCodingHandler(executions service.ExecutionService, hints service.HintService, logger zerolog.Logger) *CodingHandler {
	return &CodingHandler{
		executions: executions,
		hints:      hints,
		logger:     logger.With().Str("component", "coding_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *CodingHandler) Register(router fiber.Router) {
	router.Post("/execute", h.execute)
	router.Post("/followup", h.followUp)
	router.Post("/hint", h.hint)
	router.Post("/problem", h.problem)
}

func (h *CodingHandler) execute(c *fiber.Ctx) error {
	var payload dto.ExecutionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.executions.Execute(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code executed", response)
}

func (h *CodingHandler) followUp(c *fiber.Ctx) error {
	var payload dto.FollowUpRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.executions.FollowUp(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "follow-up generated", response)
}

func (h *CodingHandler) hint(c *fiber.Ctx) error {
	var payload dto.HintRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.hints.RequestHint(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "hint generated", response)
}

func (h *CodingHandler) problem(c *fiber.Ctx) error {
	var payload dto.ProblemRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.executions.GenerateProblem(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "problem generated", response)
}

func (h *CodingHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrUnsupportedLanguage):
		return utils.SendError(c, fiber.StatusBadRequest, "language not supported")
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrStoreUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "event store unavailable")
	case errors.Is(err, service.ErrUpstream):
		return utils.SendError(c, fiber.StatusBadGateway, "model unavailable")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("coding operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
