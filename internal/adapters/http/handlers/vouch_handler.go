package handlers

import (
	"errors"

	"tanda-xntrust/internal/core/domain"
	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// VouchHandler handles vouch and endorsement endpoints
type VouchHandler struct {
	vouchService *services.VouchService
}

// NewVouchHandler creates a new vouch handler
func NewVouchHandler(vouchService *services.VouchService) *VouchHandler {
	return &VouchHandler{vouchService: vouchService}
}

// IssueVouchRequest represents vouch creation body
type IssueVouchRequest struct {
	RecipientNo string  `json:"recipient_no"`
	Points      float64 `json:"points"`
}

// EndorseRequest represents endorsement creation body
type EndorseRequest struct {
	ToNo     string `json:"to_no"`
	CircleID uint   `json:"circle_id"`
	Message  string `json:"message"`
}

// Issue handles vouch creation
// @Summary Issue a vouch
// @Description Issue a time-bounded score vouch for another member (elder tiers only)
// @Tags Vouches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IssueVouchRequest true "Vouch data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vouches [post]
func (h *VouchHandler) Issue(c *fiber.Ctx) error {
	var req IssueVouchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.RecipientNo == "" {
		return response.BadRequest(c, "Recipient number is required")
	}
	if req.Points <= 0 {
		return response.BadRequest(c, "Points must be positive")
	}

	voucherNo, ok := c.Locals("membNo").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.IssueVouchInput{
		VoucherNo:   voucherNo,
		RecipientNo: req.RecipientNo,
		Points:      req.Points,
	}

	vouch, err := h.vouchService.Issue(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfVouch):
			return response.BadRequest(c, "You cannot vouch for yourself")
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrNotAnElder):
			return response.Forbidden(c, "Your tier does not permit vouching")
		case errors.Is(err, domain.ErrVouchPointsTooHigh):
			return response.BadRequest(c, "Points exceed your per-vouch limit")
		case errors.Is(err, domain.ErrVouchQuotaExceeded):
			return response.Conflict(c, "You have reached your concurrent vouch limit")
		case errors.Is(err, domain.ErrVouchCapReached):
			return response.Conflict(c, "Recipient's active vouch points cap reached")
		default:
			return response.InternalServerError(c, "Failed to issue vouch")
		}
	}

	return response.Created(c, "Vouch issued successfully", vouch)
}

// Revoke handles vouch revocation
// @Summary Revoke a vouch
// @Description Revoke an active vouch (issuing elder or admin only)
// @Tags Vouches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vouch ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /vouches/{id} [delete]
func (h *VouchHandler) Revoke(c *fiber.Ctx) error {
	vouchID := c.Params("id")

	actorNo, ok := c.Locals("membNo").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)

	err := h.vouchService.Revoke(c.Context(), vouchID, actorNo, role == "ADMIN")
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVouchNotFound):
			return response.NotFound(c, "Vouch not found")
		case errors.Is(err, domain.ErrVouchRevokeForbidden):
			return response.Forbidden(c, "Only the issuing elder or an admin may revoke")
		case errors.Is(err, domain.ErrVouchNotActive):
			return response.Conflict(c, "Vouch is not active")
		default:
			return response.InternalServerError(c, "Failed to revoke vouch")
		}
	}

	return response.Success(c, "Vouch revoked successfully", nil)
}

// ListByMember returns every vouch a member is party to
// @Summary List member vouches
// @Description List vouches given and received by a member
// @Tags Vouches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{memb_no}/vouches [get]
func (h *VouchHandler) ListByMember(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only view your own vouches")
	}

	vouches, err := h.vouchService.ListByMember(c.Context(), membNo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to list vouches")
		}
	}

	return response.Success(c, "Vouches retrieved successfully", vouches)
}

// Endorse handles endorsement creation
// @Summary Endorse a member
// @Description Endorse a fellow circle member (requires 30 days shared tenure)
// @Tags Vouches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EndorseRequest true "Endorsement data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /endorsements [post]
func (h *VouchHandler) Endorse(c *fiber.Ctx) error {
	var req EndorseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ToNo == "" {
		return response.BadRequest(c, "Recipient number is required")
	}
	if req.CircleID == 0 {
		return response.BadRequest(c, "Circle ID is required")
	}
	if len(req.Message) > 500 {
		return response.BadRequest(c, "Message must be at most 500 characters")
	}

	fromNo, ok := c.Locals("membNo").(string)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	input := &services.EndorseInput{
		FromNo:   fromNo,
		ToNo:     req.ToNo,
		CircleID: req.CircleID,
		Message:  req.Message,
	}

	endorsement, err := h.vouchService.Endorse(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfEndorsement):
			return response.BadRequest(c, "You cannot endorse yourself")
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrNoSharedCircleTenure):
			return response.Forbidden(c, "You need 30 days of shared circle tenure to endorse")
		case errors.Is(err, domain.ErrDuplicateEndorsement):
			return response.Conflict(c, "You already endorsed this member in this circle")
		default:
			return response.InternalServerError(c, "Failed to create endorsement")
		}
	}

	return response.Created(c, "Endorsement created successfully", endorsement)
}
