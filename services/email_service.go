package services

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
)

// Sender delivers one HTML email.
type Sender interface {
	Send(to, subject, body string) error
}

// EmailService renders transactional emails. A nil sender disables delivery.
type EmailService struct {
	sender Sender
	users  repositories.UserRepository
	log    *zap.Logger
	loc    *time.Location
}

func NewEmailService(sender Sender, users repositories.UserRepository, log *zap.Logger, loc *time.Location) *EmailService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailService{sender: sender, users: users, log: log, loc: loc}
}

func (s *EmailService) send(to *models.User, subject, body string) error {
	if s.sender == nil {
		s.log.Debug("email delivery disabled", zap.String("subject", subject))
		return nil
	}
	if to == nil || to.Email == "" {
		return nil
	}
	return s.sender.Send(to.Email, subject, body)
}

func (s *EmailService) participants(ctx context.Context, e events.Event) (doctor, patient *models.User, err error) {
	if doctor, err = s.users.FindByID(ctx, e.DoctorID); err != nil {
		return nil, nil, fmt.Errorf("load doctor %d: %w", e.DoctorID, err)
	}
	if patient, err = s.users.FindByID(ctx, e.PatientID); err != nil {
		return nil, nil, fmt.Errorf("load patient %d: %w", e.PatientID, err)
	}
	return doctor, patient, nil
}

func (s *EmailService) at(t time.Time) string {
	return utils.FormatLocal(t, s.loc)
}

func turnDetails(doctor *models.User, when string) string {
	specialty := ""
	if doctor.DoctorProfile != nil {
		specialty = doctor.DoctorProfile.Specialty
	}
	return fmt.Sprintf(`
		<ul>
			<li><strong>Doctor:</strong> %s</li>
			<li><strong>Specialty:</strong> %s</li>
			<li><strong>Date:</strong> %s</li>
		</ul>`, html.EscapeString(doctor.FullName()), html.EscapeString(specialty), when)
}

func (s *EmailService) SendAppointmentConfirmation(doctor, patient *models.User, at time.Time) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your turn is confirmed.</p>%s
		<p>If you cannot attend, please cancel it so another patient can take it.</p>`,
		html.EscapeString(patient.Name), turnDetails(doctor, s.at(at)))
	return s.send(patient, "Turn confirmed", body)
}

func (s *EmailService) SendAppointmentCancellation(doctor, recipient *models.User, at time.Time) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>The following turn was cancelled.</p>%s`,
		html.EscapeString(recipient.Name), turnDetails(doctor, s.at(at)))
	return s.send(recipient, "Turn cancelled", body)
}

func (s *EmailService) SendModificationApproved(doctor, patient *models.User, previous, next time.Time) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your turn on %s was moved.</p>%s`,
		html.EscapeString(patient.Name), s.at(previous), turnDetails(doctor, s.at(next)))
	return s.send(patient, "Turn rescheduled", body)
}

func (s *EmailService) SendReminder(doctor, patient *models.User, at time.Time) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming turn.</p>%s
		<p>Please arrive on time.</p>`,
		html.EscapeString(patient.Name), turnDetails(doctor, s.at(at)))
	return s.send(patient, "Reminder: upcoming turn", body)
}

func (s *EmailService) SendVerificationCode(user *models.User, code string) error {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>`,
		html.EscapeString(user.Name), code, int(otpTTL/time.Minute))
	return s.send(user, "Verify your email", body)
}

// HandleEvent sends the emails tied to booking events.
func (s *EmailService) HandleEvent(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.TurnReserved, events.TurnCancelled, events.ModifyApproved, events.TurnReminderDue:
	default:
		return nil
	}
	doctor, patient, err := s.participants(ctx, e)
	if err != nil {
		return err
	}
	switch e.Type {
	case events.TurnReserved:
		return s.SendAppointmentConfirmation(doctor, patient, e.ScheduledAt)
	case events.TurnCancelled:
		recipient := patient
		if e.ActorID == e.PatientID {
			recipient = doctor
		}
		return s.SendAppointmentCancellation(doctor, recipient, e.ScheduledAt)
	case events.ModifyApproved:
		return s.SendModificationApproved(doctor, patient, e.PreviousScheduledAt, e.ScheduledAt)
	case events.TurnReminderDue:
		return s.SendReminder(doctor, patient, e.ScheduledAt)
	}
	return nil
}

func (s *EmailService) Register(bus *events.Bus) {
	bus.Subscribe("email", s.HandleEvent,
		events.TurnReserved,
		events.TurnCancelled,
		events.ModifyApproved,
		events.TurnReminderDue,
	)
}
