package controllers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/services"
	"go.uber.org/zap"
)

type DoctorService interface {
	GetDoctor(ctx context.Context, doctorID uint) (*models.User, error)
	ListDoctors(ctx context.Context, specialty string) ([]models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, doctorID uint, in services.ProfileUpdate) (*models.DoctorProfile, error)
	ListPendingDoctors(ctx context.Context, actor models.Actor) ([]models.User, error)
	ReviewDoctor(ctx context.Context, actor models.Actor, doctorID uint, approved bool, reason string) (*models.User, error)
}

// DoctorController serves the doctor directory and each doctor's working hours.
type DoctorController struct {
	doctors DoctorService
	log     *zap.Logger
}

func NewDoctorController(doctors DoctorService, log *zap.Logger) *DoctorController {
	return &DoctorController{doctors: doctors, log: log}
}

type TimeRangeRequest struct {
	Start string `json:"start" validate:"required,hhmm"`
	End   string `json:"end" validate:"required,hhmm"`
}

type UpdateProfileRequest struct {
	Specialty            *string                       `json:"specialty" validate:"omitempty,min=1,max=100"`
	SlotDurationMin      *int                          `json:"slot_duration_min" validate:"omitempty,min=5,max=180"`
	AvailabilitySchedule map[string][]TimeRangeRequest `json:"availability_schedule" validate:"omitempty,dive,dive"`
}

func (r UpdateProfileRequest) toUpdate() services.ProfileUpdate {
	in := services.ProfileUpdate{Specialty: r.Specialty, SlotDurationMin: r.SlotDurationMin}
	if r.AvailabilitySchedule != nil {
		in.AvailabilitySchedule = models.WeeklySchedule{}
		for day, ranges := range r.AvailabilitySchedule {
			key := strings.ToLower(strings.TrimSpace(day))
			for _, tr := range ranges {
				in.AvailabilitySchedule[key] = append(in.AvailabilitySchedule[key], models.TimeRange{Start: tr.Start, End: tr.End})
			}
		}
	}
	return in
}

// ListDoctors godoc
// @Summary List active doctors
// @Tags doctors
// @Produce json
// @Param specialty query string false "Specialty filter"
// @Success 200 {array} models.User
// @Router /doctors [get]
func (h *DoctorController) ListDoctors(c *fiber.Ctx) error {
	doctors, err := h.doctors.ListDoctors(c.UserContext(), c.Query("specialty"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doctors)
}

func (h *DoctorController) GetDoctor(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	doctor, err := h.doctors.GetDoctor(c.UserContext(), doctorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(doctor)
}

// UpdateProfile godoc
// @Summary Update specialty, slot duration or weekly working hours
// @Tags doctors
// @Accept json
// @Produce json
// @Param id path int true "Doctor ID"
// @Param profile body UpdateProfileRequest true "Profile"
// @Success 200 {object} models.DoctorProfile
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /doctors/{id}/profile [patch]
func (h *DoctorController) UpdateProfile(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	profile, err := h.doctors.UpdateProfile(c.UserContext(), actor(c), doctorID, req.toUpdate())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(profile)
}
