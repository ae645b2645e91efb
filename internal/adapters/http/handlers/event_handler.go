package handlers

import (
	"errors"
	"time"

	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles score event endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// AppendEventRequest represents event submission body
type AppendEventRequest struct {
	MembNo     string    `json:"memb_no"`
	Kind       string    `json:"kind"`
	Magnitude  float64   `json:"magnitude"`
	OccurredAt time.Time `json:"occurred_at"`
	Metadata   string    `json:"metadata"`
}

// Append handles event submission from internal engines
// @Summary Append score event
// @Description Append an immutable score event to a member's timeline (service callers only)
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AppendEventRequest true "Event data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /events [post]
func (h *EventHandler) Append(c *fiber.Ctx) error {
	var req AppendEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	// Validate required fields
	if req.MembNo == "" {
		return response.BadRequest(c, "Member number is required")
	}
	if req.Kind == "" {
		return response.BadRequest(c, "Event kind is required")
	}
	if req.OccurredAt.IsZero() {
		return response.BadRequest(c, "Occurred-at timestamp is required")
	}

	input := &services.AppendEventInput{
		MembNo:     req.MembNo,
		Kind:       req.Kind,
		Magnitude:  req.Magnitude,
		OccurredAt: req.OccurredAt,
		Metadata:   req.Metadata,
	}

	event, err := h.eventService.Append(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownEventKind):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Unknown event kind")
		case errors.Is(err, domain.ErrMagnitudeOutOfRange):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Magnitude outside allowed range for kind")
		case errors.Is(err, domain.ErrEventInFuture):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Event timestamp is in the future")
		case errors.Is(err, domain.ErrEventMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to append event")
		}
	}

	return response.Created(c, "Event appended successfully", event)
}

// History returns a member's full event timeline
// @Summary Get event history
// @Description Get a member's event timeline, oldest first, optionally filtered by kind and since
// @Tags Events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Param kind query string false "Filter by event kind"
// @Param since query string false "Filter by RFC3339 timestamp"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{memb_no}/events [get]
func (h *EventHandler) History(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only view your own events")
	}

	kind := c.Query("kind")

	var since time.Time
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return response.BadRequest(c, "Invalid since timestamp (want RFC3339)")
		}
		since = parsed
	}

	events, err := h.eventService.History(c.Context(), membNo, kind, since)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownEventKind):
			return response.BadRequest(c, "Unknown event kind filter")
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to get events")
		}
	}

	return response.Success(c, "Events retrieved successfully", events)
}
