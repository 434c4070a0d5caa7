package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
)

const defaultListDays = 14

type TurnService interface {
	CreateTurn(ctx context.Context, actor models.Actor, doctorID uint, scheduledAt time.Time) (*models.Turn, error)
	GenerateTurns(ctx context.Context, actor models.Actor, doctorID uint, from, to time.Time) ([]models.Turn, error)
	ReserveTurn(ctx context.Context, actor models.Actor, turnID, patientID uint) (*models.Turn, error)
	CancelTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error)
	CompleteTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error)
	MarkNoShow(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error)
	AddDocumentation(ctx context.Context, actor models.Actor, turnID uint, notes string) (*models.Turn, error)
	GetTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error)
	ListDoctorTurns(ctx context.Context, actor models.Actor, doctorID uint, from, to time.Time) ([]models.Turn, error)
	ListAvailableTurns(ctx context.Context, doctorID uint, from, to time.Time) ([]models.Turn, error)
	ListPatientTurns(ctx context.Context, actor models.Actor, patientID uint, from, to time.Time) ([]models.Turn, error)
}

// TurnController exposes the turn lifecycle.
type TurnController struct {
	turns TurnService
	log   *zap.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewTurnController(turns TurnService, log *zap.Logger, loc *time.Location) *TurnController {
	if loc == nil {
		loc = time.UTC
	}
	return &TurnController{turns: turns, log: log, loc: loc, now: time.Now}
}

type CreateTurnRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
}

type GenerateTurnsRequest struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required,gtfield=From"`
}

type ReserveTurnRequest struct {
	PatientID uint `json:"patient_id"`
}

type DocumentationRequest struct {
	Notes string `json:"notes" validate:"required,max=20000"`
}

// CreateTurn godoc
// @Summary Open an available turn
// @Tags turns
// @Accept json
// @Produce json
// @Param id path int true "Doctor ID"
// @Param turn body CreateTurnRequest true "Turn"
// @Success 201 {object} models.Turn
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /doctors/{id}/turns [post]
func (h *TurnController) CreateTurn(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req CreateTurnRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	turn, err := h.turns.CreateTurn(c.UserContext(), actor(c), doctorID, req.ScheduledAt)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(turn)
}

// GenerateTurns godoc
// @Summary Open turns for every free slot of the weekly availability
// @Tags turns
// @Accept json
// @Produce json
// @Param id path int true "Doctor ID"
// @Param range body GenerateTurnsRequest true "Range"
// @Success 201 {array} models.Turn
// @Failure 400 {object} utils.ErrorResponse
// @Router /doctors/{id}/turns/generate [post]
func (h *TurnController) GenerateTurns(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req GenerateTurnsRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	turns, err := h.turns.GenerateTurns(c.UserContext(), actor(c), doctorID, req.From, req.To)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(turns)
}

// ListDoctorTurns returns every turn of the doctor in the range.
func (h *TurnController) ListDoctorTurns(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	from, to, err := queryRange(c, h.loc, h.now(), defaultListDays)
	if err != nil {
		return respondError(c, h.log, err)
	}
	turns, err := h.turns.ListDoctorTurns(c.UserContext(), actor(c), doctorID, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turns)
}

// ListAvailableTurns godoc
// @Summary List the open turns of a doctor
// @Tags turns
// @Produce json
// @Param id path int true "Doctor ID"
// @Param from query string false "RFC3339 or YYYY-MM-DD"
// @Param to query string false "RFC3339 or YYYY-MM-DD"
// @Success 200 {array} models.Turn
// @Router /doctors/{id}/turns/available [get]
func (h *TurnController) ListAvailableTurns(c *fiber.Ctx) error {
	doctorID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	from, to, err := queryRange(c, h.loc, h.now(), defaultListDays)
	if err != nil {
		return respondError(c, h.log, err)
	}
	turns, err := h.turns.ListAvailableTurns(c.UserContext(), doctorID, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turns)
}

func (h *TurnController) ListMyTurns(c *fiber.Ctx) error {
	a := actor(c)
	from, to, err := queryRange(c, h.loc, h.now(), defaultListDays)
	if err != nil {
		return respondError(c, h.log, err)
	}
	if a.IsDoctor() {
		turns, err := h.turns.ListDoctorTurns(c.UserContext(), a, a.ID, from, to)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(turns)
	}
	turns, err := h.turns.ListPatientTurns(c.UserContext(), a, a.ID, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turns)
}

func (h *TurnController) GetTurn(c *fiber.Ctx) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	turn, err := h.turns.GetTurn(c.UserContext(), actor(c), turnID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turn)
}

// ReserveTurn godoc
// @Summary Reserve an available turn
// @Description Patients reserve for themselves; admins must name the patient
// @Tags turns
// @Accept json
// @Produce json
// @Param id path int true "Turn ID"
// @Success 200 {object} models.Turn
// @Failure 404 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /turns/{id}/reserve [post]
func (h *TurnController) ReserveTurn(c *fiber.Ctx) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	a := actor(c)
	patientID := a.ID
	if len(c.Body()) > 0 {
		var req ReserveTurnRequest
		if err := bind(c, &req); err != nil {
			return respondError(c, h.log, err)
		}
		if req.PatientID != 0 {
			patientID = req.PatientID
		}
	}
	turn, err := h.turns.ReserveTurn(c.UserContext(), a, turnID, patientID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turn)
}

// CancelTurn godoc
// @Summary Cancel a turn
// @Tags turns
// @Produce json
// @Param id path int true "Turn ID"
// @Success 200 {object} models.Turn
// @Failure 403 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /turns/{id}/cancel [post]
func (h *TurnController) CancelTurn(c *fiber.Ctx) error {
	return h.transition(c, h.turns.CancelTurn)
}

func (h *TurnController) CompleteTurn(c *fiber.Ctx) error {
	return h.transition(c, h.turns.CompleteTurn)
}

func (h *TurnController) MarkNoShow(c *fiber.Ctx) error {
	return h.transition(c, h.turns.MarkNoShow)
}

func (h *TurnController) transition(c *fiber.Ctx, fn func(context.Context, models.Actor, uint) (*models.Turn, error)) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	turn, err := fn(c.UserContext(), actor(c), turnID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turn)
}

// AddDocumentation stores the clinical notes of a completed turn.
func (h *TurnController) AddDocumentation(c *fiber.Ctx) error {
	turnID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.log, err)
	}
	var req DocumentationRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	turn, err := h.turns.AddDocumentation(c.UserContext(), actor(c), turnID, req.Notes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(turn)
}
