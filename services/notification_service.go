package services

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
)

type NotificationService struct {
	repo repositories.NotificationRepository
	log  *zap.Logger
	loc  *time.Location
}

func NewNotificationService(repo repositories.NotificationRepository, log *zap.Logger, loc *time.Location) *NotificationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &NotificationService{repo: repo, log: log, loc: loc}
}

// Notify stores an in-app notification. Failures are logged and swallowed.
func (s *NotificationService) Notify(ctx context.Context, userID uint, kind models.NotificationType, relatedEntityID uint, message string) {
	if userID == 0 {
		return
	}
	n := &models.Notification{
		UserID:          userID,
		Type:            kind,
		RelatedEntityID: relatedEntityID,
		Message:         message,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.log.Error("failed to store notification",
			zap.Uint("user_id", userID),
			zap.String("type", string(kind)),
			zap.Error(err),
		)
	}
}

func (s *NotificationService) at(t time.Time) string {
	return utils.FormatLocal(t, s.loc)
}

func otherParty(e events.Event) uint {
	if e.ActorID == e.DoctorID {
		return e.PatientID
	}
	return e.DoctorID
}

// HandleEvent notifies the users affected by a booking event.
func (s *NotificationService) HandleEvent(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.TurnReserved:
		s.Notify(ctx, e.DoctorID, models.NotifyTurnReserved, e.TurnID,
			fmt.Sprintf("A patient reserved your turn on %s", s.at(e.ScheduledAt)))
	case events.TurnCancelled:
		s.Notify(ctx, otherParty(e), models.NotifyTurnCancelled, e.TurnID,
			fmt.Sprintf("The turn on %s was cancelled", s.at(e.ScheduledAt)))
	case events.TurnCompleted:
		s.Notify(ctx, e.PatientID, models.NotifyTurnCompleted, e.TurnID,
			fmt.Sprintf("Your turn on %s is complete, you can now rate your doctor", s.at(e.ScheduledAt)))
	case events.TurnNoShow:
		s.Notify(ctx, e.PatientID, models.NotifyTurnNoShow, e.TurnID,
			fmt.Sprintf("You were marked absent for the turn on %s", s.at(e.ScheduledAt)))
	case events.ModifyRequested:
		s.Notify(ctx, e.DoctorID, models.NotifyModifyRequested, e.RequestID,
			fmt.Sprintf("A patient asked to move the turn on %s to %s", s.at(e.PreviousScheduledAt), s.at(e.ScheduledAt)))
	case events.ModifyApproved:
		s.Notify(ctx, e.PatientID, models.NotifyModifyApproved, e.RequestID,
			fmt.Sprintf("Your turn was moved to %s", s.at(e.ScheduledAt)))
	case events.ModifyRejected:
		s.Notify(ctx, e.PatientID, models.NotifyModifyRejected, e.RequestID,
			fmt.Sprintf("Your request to move the turn on %s was rejected: %s", s.at(e.ScheduledAt), e.Reason))
	case events.RatingSubmitted:
		s.Notify(ctx, e.RatedID, models.NotifyRatingReceived, e.RatingID,
			fmt.Sprintf("You received a %d-star rating", e.Score))
	case events.DoctorApproved:
		s.Notify(ctx, e.UserID, models.NotifyAccountApproved, e.UserID, "Your doctor account was approved")
	case events.DoctorRejected:
		s.Notify(ctx, e.UserID, models.NotifyAccountRejected, e.UserID,
			fmt.Sprintf("Your doctor account was rejected: %s", e.Reason))
	case events.TurnReminderDue:
		s.Notify(ctx, e.PatientID, models.NotifyTurnReminder, e.TurnID,
			fmt.Sprintf("Reminder: you have a turn on %s", s.at(e.ScheduledAt)))
	}
	return nil
}

func (s *NotificationService) Register(bus *events.Bus) {
	bus.Subscribe("notifications", s.HandleEvent)
}

func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, actor.ID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, notificationID uint) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	return s.repo.MarkAllRead(ctx, actor.ID)
}
