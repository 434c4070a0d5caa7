package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

type BadgeService interface {
	DoctorStatistics(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error)
	PatientStatistics(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error)
	ListBadges(ctx context.Context, userID uint) ([]models.Badge, error)
}

// UserLookup resolves the role of the user whose statistics are requested.
type UserLookup interface {
	GetDoctor(ctx context.Context, doctorID uint) (*models.User, error)
}

type BadgeController struct {
	badges  BadgeService
	doctors UserLookup
	log     *zap.Logger
}

func NewBadgeController(badges BadgeService, doctors UserLookup, log *zap.Logger) *BadgeController {
	return &BadgeController{badges: badges, doctors: doctors, log: log}
}

// ListBadges godoc
// @Summary List the badges a user has earned
// @Tags badges
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {array} models.Badge
// @Router /users/{id}/badges [get]
func (h *BadgeController) ListBadges(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	badges, err := h.badges.ListBadges(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(badges)
}

// DoctorStatistics returns the badge counters and progress of a doctor.
func (h *BadgeController) DoctorStatistics(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	if _, err := h.doctors.GetDoctor(c.UserContext(), doctorID); err != nil {
		return respondError(c, h.log, err)
	}
	stats, err := h.badges.DoctorStatistics(c.UserContext(), doctorID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}

// MyStatistics returns the caller's own counters.
func (h *BadgeController) MyStatistics(c *fiber.Ctx) error {
	a := actor(c)
	if a.IsDoctor() {
		stats, err := h.badges.DoctorStatistics(c.UserContext(), a.ID)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(stats)
	}
	stats, err := h.badges.PatientStatistics(c.UserContext(), a.ID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(stats)
}
