package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const otpTTL = 15 * time.Minute

type RegisterInput struct {
	Email           string
	Password        string
	DNI             string
	Name            string
	Surname         string
	Phone           string
	Birthdate       *time.Time
	Gender          string
	Role            models.Role
	MedicalLicense  string
	Specialty       string
	SlotDurationMin int
}

// VerificationMailer sends the email verification code.
type VerificationMailer interface {
	SendVerificationCode(user *models.User, code string) error
}

type AuthService struct {
	users     repositories.UserRepository
	mailer    VerificationMailer
	events    events.Publisher
	log       *zap.Logger
	jwtSecret []byte
	jwtTTL    time.Duration
	now       Clock
}

func NewAuthService(users repositories.UserRepository, mailer VerificationMailer, publisher events.Publisher, log *zap.Logger, jwtSecret string, jwtTTL time.Duration, clock Clock) *AuthService {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		mailer:    mailer,
		events:    publisher,
		log:       log,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    jwtTTL,
		now:       clock,
	}
}

// Register creates a patient (ACTIVE) or a doctor (PENDING admin approval) and emails a verification code.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch in.Role {
	case models.RolePatient, models.RoleDoctor:
	case models.RoleAdmin:
		return nil, apperrors.Forbidden("admin accounts cannot be self-registered")
	default:
		return nil, apperrors.Validation("role must be PATIENT or DOCTOR")
	}

	user := &models.User{
		Email:     email,
		DNI:       strings.TrimSpace(in.DNI),
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		Phone:     strings.TrimSpace(in.Phone),
		Birthdate: in.Birthdate,
		Gender:    in.Gender,
		Role:      in.Role,
		Status:    models.UserActive,
	}
	if in.Role == models.RoleDoctor {
		if strings.TrimSpace(in.MedicalLicense) == "" || strings.TrimSpace(in.Specialty) == "" {
			return nil, apperrors.Validation("doctors must provide a medical license and a specialty")
		}
		slot := in.SlotDurationMin
		if slot == 0 {
			slot = models.DefaultSlotDurationMin
		}
		if slot < models.MinSlotDurationMin || slot > models.MaxSlotDurationMin {
			return nil, apperrors.Validation("slot duration must be between %d and %d minutes", models.MinSlotDurationMin, models.MaxSlotDurationMin)
		}
		user.Status = models.UserPending
		user.DoctorProfile = &models.DoctorProfile{
			MedicalLicense:       strings.TrimSpace(in.MedicalLicense),
			Specialty:            strings.TrimSpace(in.Specialty),
			SlotDurationMin:      slot,
			AvailabilitySchedule: models.WeeklySchedule{},
		}
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email is already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	code, err := utils.GenerateOTP()
	if err != nil {
		return nil, err
	}
	expires := s.now().Add(otpTTL)
	user.OTP = code
	user.OTPExpiresAt = &expires

	if err := s.users.Create(ctx, user); err != nil {
		return nil, duplicateAs(err, "email, dni or medical license is already registered")
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("role", string(user.Role)))

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(user, code); err != nil {
			s.log.Warn("failed to send verification code", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		s.events.Publish(ctx, events.Event{Type: events.UserRegistered, UserID: user.ID, ActorID: user.ID})
	}
	return user, nil
}

// Login checks the credentials and returns a signed bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Unauthorized("invalid email or password")
	}
	switch user.Status {
	case models.UserRejected, models.UserInactive:
		return "", nil, apperrors.Forbidden("account is %s", strings.ToLower(string(user.Status)))
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":    user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"exp":   s.now().Add(s.jwtTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// VerifyEmail confirms the address with the code sent at registration.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	if user.EmailVerified {
		return user, nil
	}
	if user.OTP == "" || user.OTP != strings.TrimSpace(code) {
		return nil, apperrors.Validation("invalid verification code")
	}
	if user.OTPExpiresAt == nil || s.now().After(*user.OTPExpiresAt) {
		return nil, apperrors.Validation("verification code expired")
	}
	user.EmailVerified = true
	user.OTP = ""
	user.OTPExpiresAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Me(ctx context.Context, actor models.Actor) (*models.User, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return user, nil
}
