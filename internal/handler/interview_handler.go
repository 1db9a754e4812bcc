package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/dto"
	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// InterviewHandler exposes interview lifecycle endpoints.
type InterviewHandler struct {
	service service.InterviewService
	logger  zerolog.Logger
}

// NewInterviewHandler constructs the handler.
func NewInterviewHandler(service service.InterviewService, logger zerolog.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger.With().Str("component", "interview_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *InterviewHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("/:slug", h.get)
	router.Delete("/:slug", h.deactivate)
}

func (h *InterviewHandler) create(c *fiber.Ctx) error {
	var payload dto.CreateInterviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Create(requestContext(c), authenticatedUserID(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "interview created", response)
}

func (h *InterviewHandler) get(c *fiber.Ctx) error {
	response, err := h.service.GetBySlug(requestContext(c), slugParam(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview retrieved", response)
}

func (h *InterviewHandler) deactivate(c *fiber.Ctx) error {
	response, err := h.service.Deactivate(requestContext(c), slugParam(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "interview deactivated", response)
}

func (h *InterviewHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, service.ErrInterviewerNotFound):
		return utils.SendError(c, fiber.StatusBadRequest, "interviewer not found")
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("interview operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
