package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationsForCancellationGoToTheOtherParty(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop(), time.UTC)
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.TurnCancelled, ActorID: 2, DoctorID: 1, PatientID: 2, TurnID: 9, ScheduledAt: march10,
	}))
	require.Len(t, repo.notifications, 1)
	n := repo.notifications[0]
	assert.Equal(t, uint(1), n.UserID)
	assert.Equal(t, models.NotifyTurnCancelled, n.Type)
	assert.Equal(t, uint(9), n.RelatedEntityID)
	assert.Contains(t, n.Message, "Mon 10 Mar 2025 10:00")
}

func TestNotifySwallowsFailures(t *testing.T) {
	repo := &fakeNotificationRepo{fail: errors.New("db down")}
	svc := NewNotificationService(repo, zap.NewNop(), time.UTC)

	assert.NotPanics(t, func() {
		svc.Notify(context.Background(), 1, models.NotifyTurnReserved, 1, "x")
	})
	assert.NoError(t, svc.HandleEvent(context.Background(), events.Event{Type: events.TurnReserved, DoctorID: 1}))
}

func TestMarkRead(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, zap.NewNop(), time.UTC)
	ctx := context.Background()
	owner := models.Actor{ID: 1, Role: models.RolePatient}
	svc.Notify(ctx, owner.ID, models.NotifyTurnReminder, 3, "soon")
	svc.Notify(ctx, owner.ID, models.NotifyTurnReminder, 4, "later")

	err := svc.MarkRead(ctx, models.Actor{ID: 2, Role: models.RolePatient}, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, owner, 1))
	unread, err := svc.List(ctx, owner, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, uint(4), unread[0].RelatedEntityID)

	n, err := svc.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEmailsOnBookingEvents(t *testing.T) {
	users := newFakeUserRepo()
	doctor := users.add(models.User{Email: "doc@clinic.test", Name: "Ana", Surname: "Ruiz", Role: models.RoleDoctor,
		DoctorProfile: &models.DoctorProfile{Specialty: "cardiology"}})
	patient := users.add(models.User{Email: "juan@mail.test", Name: "Juan <b>", Role: models.RolePatient})
	sender := &fakeSender{}
	svc := NewEmailService(sender, users, zap.NewNop(), time.UTC)
	ctx := context.Background()
	base := events.Event{DoctorID: doctor.ID, PatientID: patient.ID, ScheduledAt: march10}

	reserved := base
	reserved.Type = events.TurnReserved
	require.NoError(t, svc.HandleEvent(ctx, reserved))

	cancelled := base
	cancelled.Type = events.TurnCancelled
	cancelled.ActorID = patient.ID
	require.NoError(t, svc.HandleEvent(ctx, cancelled))

	approved := base
	approved.Type = events.ModifyApproved
	approved.PreviousScheduledAt = march10
	approved.ScheduledAt = march11
	require.NoError(t, svc.HandleEvent(ctx, approved))

	rated := base
	rated.Type = events.RatingSubmitted
	require.NoError(t, svc.HandleEvent(ctx, rated))

	require.Len(t, sender.sent, 3)
	assert.Equal(t, "juan@mail.test", sender.sent[0].to)
	assert.Equal(t, "Turn confirmed", sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "Juan &lt;b&gt;")
	assert.Contains(t, sender.sent[0].body, "cardiology")
	assert.Equal(t, "doc@clinic.test", sender.sent[1].to, "the doctor hears about a patient cancellation")
	assert.Equal(t, "Turn rescheduled", sender.sent[2].subject)
	assert.Contains(t, sender.sent[2].body, "Tue 11 Mar 2025 10:00")
}

func TestEmailDisabledWithoutSender(t *testing.T) {
	users := newFakeUserRepo()
	doctor := users.add(models.User{Email: "doc@clinic.test", Role: models.RoleDoctor})
	patient := users.add(models.User{Email: "p@mail.test", Role: models.RolePatient})
	svc := NewEmailService(nil, users, zap.NewNop(), time.UTC)

	err := svc.HandleEvent(context.Background(), events.Event{Type: events.TurnReserved, DoctorID: doctor.ID, PatientID: patient.ID})
	assert.NoError(t, err)
}
