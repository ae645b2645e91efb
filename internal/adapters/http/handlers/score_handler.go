package handlers

import (
	"errors"

	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/scoring"
	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ScoreHandler handles score and tier endpoints
type ScoreHandler struct {
	scoreService *services.ScoreService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scoreService *services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

// GetScore returns a member's current score with factor breakdown
// @Summary Get member score
// @Description Get a member's XnScore with full factor breakdown, tier and benefits
// @Tags Score
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /members/{memb_no}/score [get]
func (h *ScoreHandler) GetScore(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	// Members see their own score; elevated roles see anyone's.
	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only view your own score")
	}

	detail, err := h.scoreService.GetScore(c.Context(), membNo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrStaleData):
			return response.Error(c, fiber.StatusServiceUnavailable, "Score temporarily unavailable")
		default:
			return response.InternalServerError(c, "Failed to get score")
		}
	}

	return response.Success(c, "Score retrieved successfully", detail)
}

// Recompute forces a fresh score computation
// @Summary Recompute member score
// @Description Force a full recomputation of a member's score (admin)
// @Tags Score
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{memb_no}/score/recompute [post]
func (h *ScoreHandler) Recompute(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	detail, err := h.scoreService.Recompute(c.Context(), membNo)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to recompute score")
		}
	}

	return response.Success(c, "Score recomputed successfully", detail)
}

// tierInfo is one row of the tier sheet
type tierInfo struct {
	Tier     int                 `json:"tier"`
	Name     string              `json:"name"`
	MinScore float64             `json:"min_score"`
	Benefits domain.TierBenefits `json:"benefits"`
}

// GetTiers returns the full tier sheet with thresholds and benefits
// @Summary Get tier sheet
// @Description Get all tiers with their score thresholds and benefits
// @Tags Score
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /tiers [get]
func (h *ScoreHandler) GetTiers(c *fiber.Ctx) error {
	thresholds := h.scoreService.Thresholds()

	tiers := make([]tierInfo, 0, 6)
	for t := domain.TierElite; t <= domain.TierCritical; t++ {
		tiers = append(tiers, tierInfo{
			Tier:     int(t),
			Name:     t.Name(),
			MinScore: scoring.ScoreFloor(t, thresholds),
			Benefits: scoring.BenefitsFor(t),
		})
	}

	return response.Success(c, "Tiers retrieved successfully", tiers)
}

// canAccessMember reports whether the caller may read membNo's data
func canAccessMember(c *fiber.Ctx, membNo string) bool {
	role, _ := c.Locals("role").(string)
	if role == "ADMIN" || role == "SERVICE" {
		return true
	}
	own, _ := c.Locals("membNo").(string)
	return own == membNo
}
