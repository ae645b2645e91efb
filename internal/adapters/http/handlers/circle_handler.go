package handlers

import (
	"errors"
	"strconv"

	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/pkg/pagination"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// CircleHandler exposes the read-only circle catalog owned by the circle
// engine, so clients can browse circles next to their eligibility.
type CircleHandler struct {
	circleRepo repositories.CircleRepository
}

// NewCircleHandler creates a new circle handler
func NewCircleHandler(circleRepo repositories.CircleRepository) *CircleHandler {
	return &CircleHandler{circleRepo: circleRepo}
}

// List lists circles with pagination
// @Summary List circles
// @Description List circles with pagination
// @Tags Circles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /circles [get]
func (h *CircleHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	circles, total, err := h.circleRepo.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list circles")
	}

	return response.Success(c, "Circles retrieved successfully",
		pagination.NewResponse(circles, params, total))
}

// Get returns one circle with its current member count
// @Summary Get circle
// @Description Get a circle with its current active member count
// @Tags Circles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Circle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /circles/{id} [get]
func (h *CircleHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid circle ID")
	}

	circle, err := h.circleRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Circle not found")
		}
		return response.InternalServerError(c, "Failed to get circle")
	}

	count, err := h.circleRepo.ActiveMemberCount(c.Context(), circle.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to get circle")
	}

	return response.Success(c, "Circle retrieved successfully", fiber.Map{
		"circle":         circle,
		"active_members": count,
	})
}
