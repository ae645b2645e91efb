package handlers

import (
	"errors"
	"strings"

	"tanda-xntrust/internal/core/services"
	"tanda-xntrust/internal/pkg/pagination"
	"tanda-xntrust/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles member registry endpoints
type MemberHandler struct {
	memberService *services.MemberService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// CreateMemberRequest represents member creation body
type CreateMemberRequest struct {
	MembNo   string `json:"memb_no"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// SetActiveRequest represents activation toggle body
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// Create handles member registration
// @Summary Create member
// @Description Register a new member record (admin or service callers)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateMemberRequest true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /members [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req CreateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.MembNo == "" {
		return response.BadRequest(c, "Member number is required")
	}
	if req.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}

	input := &services.CreateMemberInput{
		MembNo:   strings.TrimSpace(req.MembNo),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    strings.TrimSpace(req.Phone),
	}

	member, err := h.memberService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNumberTaken):
			return response.Conflict(c, "Member number already exists")
		default:
			return response.InternalServerError(c, "Failed to create member")
		}
	}

	return response.Created(c, "Member created successfully", member)
}

// Get returns a member record
// @Summary Get member
// @Description Get a member record with cached score and tier
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{memb_no} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only view your own profile")
	}

	member, err := h.memberService.GetByMembNo(c.Context(), membNo)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to get member")
		}
	}

	return response.Success(c, "Member retrieved successfully", member)
}

// List lists members with pagination
// @Summary List members
// @Description List member records with pagination (admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /admin/members [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	members, total, err := h.memberService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list members")
	}

	return response.Success(c, "Members retrieved successfully",
		pagination.NewResponse(members, params, total))
}

// SetActive activates or deactivates a member
// @Summary Set member active flag
// @Description Activate or deactivate a member (admin)
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Param body body SetActiveRequest true "Active flag"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/members/{memb_no}/active [patch]
func (h *MemberHandler) SetActive(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.memberService.SetActive(c.Context(), membNo, req.Active); err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to update member")
		}
	}

	return response.Success(c, "Member updated successfully", nil)
}

// RecentEvents returns a member's recent events, paginated
// @Summary Get recent events
// @Description Get a member's newest events first, paginated
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memb_no path string true "Member number"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /members/{memb_no}/events/recent [get]
func (h *MemberHandler) RecentEvents(c *fiber.Ctx) error {
	membNo := c.Params("memb_no")

	if !canAccessMember(c, membNo) {
		return response.Forbidden(c, "You can only view your own events")
	}

	params := pagination.GetParams(c)

	events, total, err := h.memberService.RecentEvents(c.Context(), membNo, params.Offset, params.Limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownMember):
			return response.NotFound(c, "Member not found")
		default:
			return response.InternalServerError(c, "Failed to get events")
		}
	}

	return response.Success(c, "Events retrieved successfully",
		pagination.NewResponse(events, params, total))
}
