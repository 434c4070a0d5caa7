package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBadgeFixture() (*BadgeService, *fakeStatsRepo, *fakeBadgeRepo, *time.Time) {
	stats := newFakeStatsRepo()
	badges := newFakeBadgeRepo()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc := NewBadgeService(&fakeTx{serial: true}, stats, badges, zap.NewNop(), func() time.Time { return now })
	return svc, stats, badges, &now
}

func TestCompletionsAreCountedExactlyUnderInterleaving(t *testing.T) {
	svc, _, _, _ := newBadgeFixture()
	ctx := context.Background()
	const n = 40

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordTurnCompleted(ctx, models.RolePatient, 7))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordTurnCancelled(ctx, models.RolePatient, 7, false))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.RecordFileUploaded(ctx, 7))
		}()
	}
	wg.Wait()

	st, err := svc.PatientStatistics(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, n, st.TotalTurnsCompleted)
	assert.Equal(t, n, st.TotalTurnsCancelled)
	assert.Equal(t, n, st.TotalFilesUploaded)
	assert.Equal(t, 0, st.TotalNoShows)
}

func TestStatisticsAreCreatedLazily(t *testing.T) {
	svc, stats, _, _ := newBadgeFixture()
	ctx := context.Background()

	empty, err := svc.DoctorStatistics(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalTurnsCompleted)
	assert.Empty(t, stats.doctors)

	require.NoError(t, svc.RecordTurnCompleted(ctx, models.RoleDoctor, 3))
	st, err := svc.DoctorStatistics(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalTurnsCompleted)
	assert.Equal(t, 1, st.Attendance.Hits)
	assert.Contains(t, st.Progress, models.BadgeDoctorReliable)
}

func TestNoShowIsDistinctFromCancellation(t *testing.T) {
	svc, _, _, _ := newBadgeFixture()
	ctx := context.Background()

	require.NoError(t, svc.RecordTurnNoShow(ctx, models.RolePatient, 9))
	require.NoError(t, svc.RecordTurnNoShow(ctx, models.RoleDoctor, 4))

	patient, err := svc.PatientStatistics(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 1, patient.TotalNoShows)
	assert.Equal(t, 0, patient.TotalTurnsCancelled)
	assert.Equal(t, 1, patient.Attendance.Events)
	assert.Equal(t, 0, patient.Attendance.Hits)

	doctor, err := svc.DoctorStatistics(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, doctor.TotalNoShows)
	assert.Equal(t, 0, doctor.Attendance.Events)
}

func TestBadgeIsEarnedLostAndReEarned(t *testing.T) {
	svc, _, badges, now := newBadgeFixture()
	ctx := context.Background()
	const doctorID = 5

	for i := 0; i < 8; i++ {
		require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, doctorID, 5, []string{"punctuality"}))
	}
	badge, ok := badges.find(doctorID, models.BadgeDoctorAlwaysPunctual)
	require.True(t, ok)
	assert.True(t, badge.IsActive)
	firstEarned := *badge.EarnedAt

	// Fill the window with two misses; hits stay at 8 until the window is full.
	*now = now.Add(time.Hour)
	require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, doctorID, 3, nil))
	require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, doctorID, 3, nil))
	badge, _ = badges.find(doctorID, models.BadgeDoctorAlwaysPunctual)
	assert.True(t, badge.IsActive)

	require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, doctorID, 3, nil))
	badge, _ = badges.find(doctorID, models.BadgeDoctorAlwaysPunctual)
	assert.False(t, badge.IsActive)
	assert.Equal(t, firstEarned, *badge.EarnedAt, "earnedAt is kept while inactive")

	*now = now.Add(time.Hour)
	require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, doctorID, 5, []string{"punctuality"}))
	badge, _ = badges.find(doctorID, models.BadgeDoctorAlwaysPunctual)
	assert.True(t, badge.IsActive)
	assert.True(t, badge.EarnedAt.After(firstEarned))
}

func TestTopRatedNeedsVolumeAndAverage(t *testing.T) {
	svc, _, badges, _ := newBadgeFixture()
	ctx := context.Background()

	for i := 0; i < 9; i++ {
		require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, 2, 5, nil))
	}
	_, ok := badges.find(2, models.BadgeDoctorTopRated)
	assert.False(t, ok)

	require.NoError(t, svc.RecordRatingReceived(ctx, models.RoleDoctor, 2, 4, nil))
	badge, ok := badges.find(2, models.BadgeDoctorTopRated)
	require.True(t, ok)
	assert.True(t, badge.IsActive)

	st, err := svc.DoctorStatistics(ctx, 2)
	require.NoError(t, err)
	assert.InDelta(t, 4.9, st.AverageScore(), 0.001)
	assert.Equal(t, 100.0, st.Progress[models.BadgeDoctorTopRated])
}

func TestDocumentationWindow(t *testing.T) {
	svc, _, _, _ := newBadgeFixture()
	ctx := context.Background()

	require.NoError(t, svc.RecordDocumentationAdded(ctx, 1, 45))
	require.NoError(t, svc.RecordDocumentationAdded(ctx, 1, 12))

	st, err := svc.DoctorStatistics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalDocumentedTurns)
	assert.Equal(t, 57, st.TotalDocumentationWords)
	assert.Equal(t, 1, st.Documentation.Hits)
	assert.Equal(t, 2, st.Documentation.Events)
}

func TestHandleEventRoutesToBothParticipants(t *testing.T) {
	svc, _, _, _ := newBadgeFixture()
	ctx := context.Background()
	base := events.Event{DoctorID: 10, PatientID: 20, TurnID: 1}

	completed := base
	completed.Type = events.TurnCompleted
	require.NoError(t, svc.HandleEvent(ctx, completed))

	cancelled := base
	cancelled.Type = events.TurnCancelled
	cancelled.ActorID = 20
	require.NoError(t, svc.HandleEvent(ctx, cancelled))

	rating := base
	rating.Type = events.RatingSubmitted
	rating.RaterID = 20
	rating.RatedID = 10
	rating.Score = 5
	rating.Subcategories = []string{"communication"}
	require.NoError(t, svc.HandleEvent(ctx, rating))

	doctor, err := svc.DoctorStatistics(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, doctor.TotalTurnsCompleted)
	assert.Equal(t, 1, doctor.TotalTurnsCancelled)
	assert.Equal(t, 1, doctor.Attendance.Events, "the patient cancelled, the doctor keeps attendance")
	assert.Equal(t, 1, doctor.Communication.Hits)
	assert.Equal(t, 1, doctor.TotalRatingsReceived)

	patient, err := svc.PatientStatistics(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, patient.TotalTurnsCompleted)
	assert.Equal(t, 1, patient.TotalTurnsCancelled)
	assert.Equal(t, 2, patient.Attendance.Events)
	assert.Equal(t, 1, patient.Attendance.Hits)
	assert.Equal(t, 1, patient.TotalRatingsGiven)

	list, err := svc.ListBadges(ctx, 20)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPatientBadges(t *testing.T) {
	svc, _, badges, _ := newBadgeFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordFileUploaded(ctx, 30))
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.RecordTurnCompleted(ctx, models.RolePatient, 30))
	}

	documented, ok := badges.find(30, models.BadgePatientDocumented)
	require.True(t, ok)
	assert.True(t, documented.IsActive)
	constant, ok := badges.find(30, models.BadgePatientConstant)
	require.True(t, ok)
	assert.True(t, constant.IsActive)
	_, ok = badges.find(30, models.BadgePatientCommitted)
	assert.False(t, ok, "five attended turns are below the committed threshold")
}
