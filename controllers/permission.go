package controllers

import (
	"github.com/gofiber/fiber/v2"
)

type DoctorReviewRequest struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason" validate:"omitempty,max=1000"`
}

// ListPendingDoctors godoc
// @Summary List doctor accounts waiting for approval
// @Tags admin
// @Produce json
// @Success 200 {array} models.User
// @Failure 403 {object} utils.ErrorResponse
// @Router /admin/doctors/pending [get]
func (h *DoctorController) ListPendingDoctors(c *fiber.Ctx) error {
	doctors, err := h.doctors.ListPendingDoctors(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doctors)
}

// ReviewDoctor godoc
// @Summary Approve or reject a pending doctor
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Doctor ID"
// @Param review body DoctorReviewRequest true "Decision"
// @Success 200 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /admin/doctors/{id}/review [post]
func (h *DoctorController) ReviewDoctor(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req DoctorReviewRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	doctor, err := h.doctors.ReviewDoctor(c.UserContext(), actor(c), doctorID, req.Approved, req.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doctor)
}
