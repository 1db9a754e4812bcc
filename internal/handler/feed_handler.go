package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/codeview-ai/codeview-api/internal/service"
	"github.com/codeview-ai/codeview-api/internal/utils"
)

// FeedHandler upgrades dashboard connections to a live session event stream.
type FeedHandler struct {
	interviews service.InterviewService
	feed       service.FeedService
	logger     zerolog.Logger
}

// NewFeedHandler constructs the handler.
func NewFeedHandler(interviews service.InterviewService, feed service.FeedService, logger zerolog.Logger) *FeedHandler {
	return &FeedHandler{
		interviews: interviews,
		feed:       feed,
		logger:     logger.With().Str("component", "feed_handler").Logger(),
	}
}

// Register wires the websocket upgrade into the router group.
func (h *FeedHandler) Register(router fiber.Router) {
	router.Use("/:slug/feed", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		interview, err := h.interviews.GetBySlug(requestContext(c), slugParam(c))
		if err != nil {
			if errors.Is(err, service.ErrInterviewNotFound) {
				return utils.SendError(c, fiber.StatusNotFound, "interview not found")
			}
			h.logger.Error().Err(err).Msg("feed interview lookup failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}

		c.Locals("interview_id", interview.ID)
		return c.Next()
	})

	router.Get("/:slug/feed", websocket.New(h.handleConnection))
}

func (h *FeedHandler) handleConnection(conn *websocket.Conn) {
	interviewID, ok := conn.Locals("interview_id").(uint)
	if !ok {
		_ = conn.Close()
		return
	}

	events, cleanup := h.feed.Subscribe(interviewID)
	defer cleanup()

	h.logger.Info().Uint("interview_id", interviewID).Msg("feed websocket connected")
	defer h.logger.Info().Uint("interview_id", interviewID).Msg("feed websocket disconnected")

	// reader goroutine detects client disconnects; the stream is one-way
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug().Err(err).Msg("failed to write feed event")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
