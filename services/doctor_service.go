package services

import (
	"context"
	"strings"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"go.uber.org/zap"
)

type ProfileUpdate struct {
	Specialty            *string
	SlotDurationMin      *int
	AvailabilitySchedule models.WeeklySchedule
}

// DoctorService manages doctor profiles and their admin approval.
type DoctorService struct {
	users  repositories.UserRepository
	events events.Publisher
	log    *zap.Logger
}

func NewDoctorService(users repositories.UserRepository, publisher events.Publisher, log *zap.Logger) *DoctorService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DoctorService{users: users, events: publisher, log: log}
}

func (s *DoctorService) GetDoctor(ctx context.Context, doctorID uint) (*models.User, error) {
	doctor, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, notFoundAs(err, "doctor")
	}
	if doctor.Role != models.RoleDoctor {
		return nil, apperrors.NotFound("doctor not found")
	}
	return doctor, nil
}

func (s *DoctorService) ListDoctors(ctx context.Context, specialty string) ([]models.User, error) {
	return s.users.ListDoctors(ctx, specialty)
}

// UpdateProfile changes specialty, slot duration or weekly availability of the calling doctor.
func (s *DoctorService) UpdateProfile(ctx context.Context, actor models.Actor, doctorID uint, in ProfileUpdate) (*models.DoctorProfile, error) {
	if !actor.ActsAsDoctor(doctorID) {
		return nil, apperrors.Forbidden("only the doctor can edit their profile")
	}
	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	profile := doctor.DoctorProfile
	if profile == nil {
		return nil, apperrors.NotFound("doctor profile not found")
	}

	if in.Specialty != nil {
		specialty := strings.TrimSpace(*in.Specialty)
		if specialty == "" {
			return nil, apperrors.Validation("specialty cannot be empty")
		}
		profile.Specialty = specialty
	}
	if in.SlotDurationMin != nil {
		slot := *in.SlotDurationMin
		if slot < models.MinSlotDurationMin || slot > models.MaxSlotDurationMin {
			return nil, apperrors.Validation("slot duration must be between %d and %d minutes", models.MinSlotDurationMin, models.MaxSlotDurationMin)
		}
		profile.SlotDurationMin = slot
	}
	if in.AvailabilitySchedule != nil {
		if err := in.AvailabilitySchedule.Validate(); err != nil {
			return nil, apperrors.Validation("invalid availability schedule: %v", err)
		}
		profile.AvailabilitySchedule = in.AvailabilitySchedule
	}

	if err := s.users.UpdateDoctorProfile(ctx, profile); err != nil {
		return nil, duplicateAs(err, "medical license is already registered")
	}
	s.log.Info("doctor profile updated", zap.Uint("doctor_id", doctorID))
	return profile, nil
}

func (s *DoctorService) ListPendingDoctors(ctx context.Context, actor models.Actor) ([]models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}
	return s.users.ListByRoleAndStatus(ctx, models.RoleDoctor, models.UserPending)
}

// ReviewDoctor activates or rejects a PENDING doctor account.
func (s *DoctorService) ReviewDoctor(ctx context.Context, actor models.Actor, doctorID uint, approved bool, reason string) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("admin role required")
	}
	reason = strings.TrimSpace(reason)
	if !approved && reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}
	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.Status != models.UserPending {
		return nil, apperrors.InvalidState("doctor account is already %s", strings.ToLower(string(doctor.Status)))
	}

	e := events.Event{ActorID: actor.ID, UserID: doctor.ID}
	if approved {
		doctor.Status = models.UserActive
		e.Type = events.DoctorApproved
	} else {
		doctor.Status = models.UserRejected
		e.Type = events.DoctorRejected
		e.Reason = reason
	}
	if err := s.users.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.log.Info("doctor reviewed", zap.Uint("doctor_id", doctor.ID), zap.String("status", string(doctor.Status)))
	if s.events != nil {
		s.events.Publish(ctx, e)
	}
	return doctor, nil
}
