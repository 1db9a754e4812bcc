package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// CallHandler exposes voice call registration and transcript ingestion.
type CallHandler struct {
	service service.CallService
	logger  zerolog.Logger
}

// NewCallHandler constructs the handler.
func NewCallHandler(service service.CallService, logger zerolog.Logger) *CallHandler {
	return &CallHandler{
		service: service,
		logger:  logger.With().Str("component", "call_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *CallHandler) Register(router fiber.Router) {
	router.Post("/register", h.register)
	router.Post("/turns", h.recordTurn)
}

func (h *CallHandler) register(c *fiber.Ctx) error {
	var payload dto.RegisterCallRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Register(requestContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "call registered", response)
}

func (h *CallHandler) recordTurn(c *fiber.Ctx) error {
	var payload dto.VoiceTurnRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.service.RecordTurn(requestContext(c), payload); err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "turn recorded", nil)
}

func (h *CallHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrInterviewInactive):
		return utils.SendError(c, fiber.StatusConflict, "interview is not active")
	case errors.Is(err, service.ErrAgentMissing):
		return utils.SendError(c, fiber.StatusConflict, "interviewer has no voice agent")
	case errors.Is(err, service.ErrStoreUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "event store unavailable")
	case errors.Is(err, service.ErrUpstream):
		return utils.SendError(c, fiber.StatusBadGateway, "voice service unavailable")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("call operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
