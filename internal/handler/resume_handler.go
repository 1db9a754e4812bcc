package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// ResumeHandler exposes candidate resume upload and retrieval.
type ResumeHandler struct {
	service service.ResumeService
	logger  zerolog.Logger
}

// NewResumeHandler constructs the handler.
func NewResumeHandler(service service.ResumeService, logger zerolog.Logger) *ResumeHandler {
	return &ResumeHandler{
		service: service,
		logger:  logger.With().Str("component", "resume_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *ResumeHandler) Register(router fiber.Router) {
	router.Post("/:slug/resumes", h.upload)
	router.Get("/:slug/resumes/:candidateId", h.get)
}

func (h *ResumeHandler) upload(c *fiber.Ctx) error {
	candidateID := strings.TrimSpace(c.FormValue("candidate_id"))
	if candidateID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "candidate_id required")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "file required")
	}

	response, err := h.service.Upload(requestContext(c), slugParam(c), candidateID, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "resume uploaded", response)
}

func (h *ResumeHandler) get(c *fiber.Ctx) error {
	candidateID := strings.TrimSpace(c.Params("candidateId"))
	if candidateID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "candidate id required")
	}

	response, err := h.service.GetByCandidate(requestContext(c), slugParam(c), candidateID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "resume retrieved", response)
}

func (h *ResumeHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrInterviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "interview not found")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "resume not found")
	case errors.Is(err, service.ErrResumeTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, "resume too large")
	case errors.Is(err, service.ErrResumeTypeNotAllowed):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, "resume must be a PDF")
	case errors.Is(err, service.ErrStoreUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "storage unavailable")
	default:
		h.logger.Error().Err(err).Msg("resume operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
