package handlers

import (
	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles administrative maintenance endpoints
type AdminHandler struct {
	sweepService *services.SweepService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(sweepService *services.SweepService) *AdminHandler {
	return &AdminHandler{sweepService: sweepService}
}

// RunSweep triggers one maintenance sweep immediately
// @Summary Run maintenance sweep
// @Description Expire lapsed vouches and purge expired refresh tokens now (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/sweep [post]
func (h *AdminHandler) RunSweep(c *fiber.Ctx) error {
	expired, err := h.sweepService.RunNow(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Sweep failed")
	}

	return response.Success(c, "Sweep completed successfully", fiber.Map{
		"vouches_expired": expired,
	})
}
