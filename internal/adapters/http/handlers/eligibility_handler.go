package handlers

import (
	"errors"
	"strconv"

	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EligibilityHandler handles circle join eligibility endpoints
type EligibilityHandler struct {
	eligibilityService *services.EligibilityService
}

// NewEligibilityHandler creates a new eligibility handler
func NewEligibilityHandler(eligibilityService *services.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibilityService: eligibilityService}
}

// CanJoin evaluates whether a member may join a circle
// @Summary Check circle eligibility
// @Description Check whether a member may join a circle, returning every failing reason
// @Tags Eligibility
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Param circle_id path int true "Circle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{memb_no}/eligibility/{circle_id} [get]
func (h *EligibilityHandler) CanJoin(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only check your own eligibility")
	}

	circleID, err := strconv.ParseUint(c.Params("circle_id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid circle ID")
	}

	result, err := h.eligibilityService.CanJoin(c.Context(), membNo, uint(circleID))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, services.ErrCircleNotFound):
			return response.NotFound(c, "Circle not found")
		default:
			return response.InternalServerError(c, "Failed to check eligibility")
		}
	}

	return response.Success(c, "Eligibility checked successfully", result)
}
