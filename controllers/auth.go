package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/services"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	VerifyEmail(ctx context.Context, email, code string) (*models.User, error)
	Me(ctx context.Context, actor models.Actor) (*models.User, error)
}

type AuthController struct {
	auth AuthService
	log  *zap.Logger
}

func NewAuthController(auth AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

type RegisterRequest struct {
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"required,password"`
	DNI             string     `json:"dni" validate:"required,dni"`
	Name            string     `json:"name" validate:"required,max=100"`
	Surname         string     `json:"surname" validate:"required,max=100"`
	Phone           string     `json:"phone" validate:"omitempty,max=32"`
	Birthdate       *time.Time `json:"birthdate"`
	Gender          string     `json:"gender" validate:"omitempty,max=16"`
	Role            string     `json:"role" validate:"required"`
	MedicalLicense  string     `json:"medical_license" validate:"omitempty,max=64"`
	Specialty       string     `json:"specialty" validate:"omitempty,max=100"`
	SlotDurationMin int        `json:"slot_duration_min" validate:"omitempty,min=5,max=180"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// Register godoc
// @Summary Register a patient or a doctor
// @Description Doctors start PENDING until an admin approves them
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /auth/register [post]
func (h *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		return respondError(c, h.log, apperrors.Validation("role must be PATIENT or DOCTOR"))
	}

	user, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		Email:           req.Email,
		Password:        req.Password,
		DNI:             req.DNI,
		Name:            req.Name,
		Surname:         req.Surname,
		Phone:           req.Phone,
		Birthdate:       req.Birthdate,
		Gender:          req.Gender,
		Role:            role,
		MedicalLicense:  req.MedicalLicense,
		Specialty:       req.Specialty,
		SlotDurationMin: req.SlotDurationMin,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Router /auth/login [post]
func (h *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	token, user, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// VerifyEmail confirms the address with the code emailed at registration.
func (h *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	if err := bind(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	user, err := h.auth.VerifyEmail(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

func (h *AuthController) Me(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), actor(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}
