package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

type ModifyRequestService interface {
	RequestModification(ctx context.Context, actor models.Actor, turnID uint, newScheduledAt time.Time, reason string) (*models.TurnModifyRequest, error)
	ReviewModification(ctx context.Context, actor models.Actor, requestID uint, approved bool, rejectionReason string) (*models.TurnModifyRequest, error)
	ListPendingRequests(ctx context.Context, actor models.Actor) ([]models.TurnModifyRequest, error)
	ListMyRequests(ctx context.Context, actor models.Actor) ([]models.TurnModifyRequest, error)
}

// ModifyRequestController handles patient reschedule requests and their review by the doctor.
type ModifyRequestController struct {
	requests ModifyRequestService
	log      *zap.Logger
}

func NewModifyRequestController(requests ModifyRequestService, log *zap.Logger) *ModifyRequestController {
	return &ModifyRequestController{requests: requests, log: log}
}

type ModifyTurnRequest struct {
	NewScheduledAt time.Time `json:"new_scheduled_at" validate:"required"`
	Reason         string    `json:"reason" validate:"omitempty,max=1000"`
}

type ReviewRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason" validate:"omitempty,max=1000"`
}

// RequestModification godoc
// @Summary Ask the doctor to move a reserved turn
// @Tags modify-requests
// @Accept json
// @Produce json
// @Param id path int true "Turn ID"
// @Param request body ModifyTurnRequest true "New time"
// @Success 201 {object} models.TurnModifyRequest
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /turns/{id}/modify-requests [post]
func (h *ModifyRequestController) RequestModification(c *fiber.Ctx) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req ModifyTurnRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	created, err := h.requests.RequestModification(c.UserContext(), actor(c), turnID, req.NewScheduledAt, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// ReviewModification godoc
// @Summary Approve or reject a pending modification request
// @Tags modify-requests
// @Accept json
// @Produce json
// @Param id path int true "Request ID"
// @Param review body ReviewRequest true "Decision"
// @Success 200 {object} models.TurnModifyRequest
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /modify-requests/{id}/review [post]
func (h *ModifyRequestController) ReviewModification(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req ReviewRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	reviewed, err := h.requests.ReviewModification(c.UserContext(), actor(c), requestID, req.Approved, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(reviewed)
}

// ListRequests returns the pending queue for doctors and the caller's own requests for patients.
func (h *ModifyRequestController) ListRequests(c *fiber.Ctx) error {
	a := actor(c)
	var (
		list []models.TurnModifyRequest
		err  error
	)
	if a.IsDoctor() {
		list, err = h.requests.ListPendingRequests(c.UserContext(), a)
	} else {
		list, err = h.requests.ListMyRequests(c.UserContext(), a)
	}
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list)
}
