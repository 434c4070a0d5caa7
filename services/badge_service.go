package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"go.uber.org/zap"
)

// BadgeService accumulates per-user statistics and derives badges from them.
// Every Record* call is one read-modify-write of the user's statistics row in its own transaction.
type BadgeService struct {
	tx     repositories.Transactor
	stats  repositories.StatisticsRepository
	badges repositories.BadgeRepository
	log    *zap.Logger
	now    Clock
}

func NewBadgeService(tx repositories.Transactor, stats repositories.StatisticsRepository, badges repositories.BadgeRepository, log *zap.Logger, clock Clock) *BadgeService {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BadgeService{tx: tx, stats: stats, badges: badges, log: log, now: clock}
}

func (s *BadgeService) mutateDoctor(ctx context.Context, doctorID uint, fn func(*models.DoctorBadgeStatistics)) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		st, err := s.stats.LockDoctor(ctx, doctorID)
		if err != nil {
			return err
		}
		fn(st)
		st.Progress = make(models.BadgeProgress, len(models.DoctorBadgeCriteria))
		for badge, progress := range models.DoctorBadgeCriteria {
			st.Progress[badge] = progress(st)
		}
		if err := s.stats.SaveDoctor(ctx, st); err != nil {
			return err
		}
		return s.applyBadges(ctx, doctorID, st.Progress)
	})
}

func (s *BadgeService) mutatePatient(ctx context.Context, patientID uint, fn func(*models.PatientBadgeStatistics)) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		st, err := s.stats.LockPatient(ctx, patientID)
		if err != nil {
			return err
		}
		fn(st)
		st.Progress = make(models.BadgeProgress, len(models.PatientBadgeCriteria))
		for badge, progress := range models.PatientBadgeCriteria {
			st.Progress[badge] = progress(st)
		}
		if err := s.stats.SavePatient(ctx, st); err != nil {
			return err
		}
		return s.applyBadges(ctx, patientID, st.Progress)
	})
}

// applyBadges upserts the badges whose state changed. Badge rows are created on first earn and never deleted.
func (s *BadgeService) applyBadges(ctx context.Context, userID uint, progress models.BadgeProgress) error {
	current, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	byType := make(map[models.BadgeType]*models.Badge, len(current))
	for i := range current {
		byType[current[i].BadgeType] = &current[i]
	}

	types := make([]models.BadgeType, 0, len(progress))
	for badge := range progress {
		types = append(types, badge)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	now := s.now()
	for _, badgeType := range types {
		met := progress[badgeType] >= 100
		badge, ok := byType[badgeType]
		if !ok {
			if !met {
				continue
			}
			badge = &models.Badge{UserID: userID, BadgeType: badgeType}
		}
		wasActive := badge.IsActive
		badge.Evaluate(met, now)
		if err := s.badges.Save(ctx, badge); err != nil {
			return err
		}
		if wasActive != met {
			s.log.Info("badge state changed",
				zap.Uint("user_id", userID),
				zap.String("badge", string(badgeType)),
				zap.Bool("active", met),
			)
		}
	}
	return nil
}

func (s *BadgeService) RecordTurnCompleted(ctx context.Context, role models.Role, userID uint) error {
	if role == models.RoleDoctor {
		return s.mutateDoctor(ctx, userID, func(st *models.DoctorBadgeStatistics) {
			st.TotalTurnsCompleted++
			st.Attendance.Record(true, models.DoctorAttendanceWindow)
		})
	}
	return s.mutatePatient(ctx, userID, func(st *models.PatientBadgeStatistics) {
		st.TotalTurnsCompleted++
		st.Attendance.Record(true, models.PatientAttendanceWindow)
	})
}

// RecordTurnCancelled counts a cancelled reservation. Attendance only drops for the side that cancelled.
func (s *BadgeService) RecordTurnCancelled(ctx context.Context, role models.Role, userID uint, cancelledByUser bool) error {
	if role == models.RoleDoctor {
		return s.mutateDoctor(ctx, userID, func(st *models.DoctorBadgeStatistics) {
			st.TotalTurnsCancelled++
			if cancelledByUser {
				st.Attendance.Record(false, models.DoctorAttendanceWindow)
			}
		})
	}
	return s.mutatePatient(ctx, userID, func(st *models.PatientBadgeStatistics) {
		st.TotalTurnsCancelled++
		if cancelledByUser {
			st.Attendance.Record(false, models.PatientAttendanceWindow)
		}
	})
}

// RecordTurnNoShow counts a missed turn. The doctor's attendance is untouched.
func (s *BadgeService) RecordTurnNoShow(ctx context.Context, role models.Role, userID uint) error {
	if role == models.RoleDoctor {
		return s.mutateDoctor(ctx, userID, func(st *models.DoctorBadgeStatistics) {
			st.TotalNoShows++
		})
	}
	return s.mutatePatient(ctx, userID, func(st *models.PatientBadgeStatistics) {
		st.TotalNoShows++
		st.Attendance.Record(false, models.PatientAttendanceWindow)
	})
}

func (s *BadgeService) RecordRatingGiven(ctx context.Context, role models.Role, userID uint, subcategories []string) error {
	if role != models.RolePatient {
		return nil
	}
	return s.mutatePatient(ctx, userID, func(st *models.PatientBadgeStatistics) {
		st.TotalRatingsGiven++
	})
}

// RecordRatingReceived feeds the score and the tag windows of the rated user.
// A rating without a tag counts as a miss for that tag's window.
func (s *BadgeService) RecordRatingReceived(ctx context.Context, role models.Role, userID uint, score int, subcategories []string) error {
	tags := models.NormalizeTags(subcategories)
	if role == models.RoleDoctor {
		return s.mutateDoctor(ctx, userID, func(st *models.DoctorBadgeStatistics) {
			st.TotalRatingsReceived++
			st.RatingScoreSum += score
			st.Punctuality.Record(models.HasTag(tags, models.TagPunctuality), models.PunctualityWindow)
			st.Communication.Record(models.HasTag(tags, models.TagCommunication), models.CommunicationWindow)
			st.Empathy.Record(models.HasTag(tags, models.TagEmpathy), models.EmpathyWindow)
		})
	}
	return s.mutatePatient(ctx, userID, func(st *models.PatientBadgeStatistics) {
		st.TotalRatingsReceived++
		st.RatingScoreSum += score
		st.Punctuality.Record(models.HasTag(tags, models.TagPunctuality), models.PunctualityWindow)
	})
}

func (s *BadgeService) RecordDocumentationAdded(ctx context.Context, doctorID uint, wordCount int) error {
	return s.mutateDoctor(ctx, doctorID, func(st *models.DoctorBadgeStatistics) {
		st.TotalDocumentedTurns++
		st.TotalDocumentationWords += wordCount
		st.Documentation.Record(wordCount >= models.DetailedDocumentationWords, models.DocumentationWindow)
	})
}

func (s *BadgeService) RecordFileUploaded(ctx context.Context, patientID uint) error {
	return s.mutatePatient(ctx, patientID, func(st *models.PatientBadgeStatistics) {
		st.TotalFilesUploaded++
	})
}

func roleOf(e events.Event, userID uint) models.Role {
	if userID == e.DoctorID {
		return models.RoleDoctor
	}
	return models.RolePatient
}

// HandleEvent translates booking events into statistics updates for both participants.
func (s *BadgeService) HandleEvent(ctx context.Context, e events.Event) error {
	switch e.Type {
	case events.TurnCompleted:
		return errors.Join(
			s.RecordTurnCompleted(ctx, models.RoleDoctor, e.DoctorID),
			s.RecordTurnCompleted(ctx, models.RolePatient, e.PatientID),
		)
	case events.TurnCancelled:
		return errors.Join(
			s.RecordTurnCancelled(ctx, models.RoleDoctor, e.DoctorID, e.ActorID == e.DoctorID),
			s.RecordTurnCancelled(ctx, models.RolePatient, e.PatientID, e.ActorID == e.PatientID),
		)
	case events.TurnNoShow:
		return errors.Join(
			s.RecordTurnNoShow(ctx, models.RoleDoctor, e.DoctorID),
			s.RecordTurnNoShow(ctx, models.RolePatient, e.PatientID),
		)
	case events.RatingSubmitted:
		return errors.Join(
			s.RecordRatingGiven(ctx, roleOf(e, e.RaterID), e.RaterID, e.Subcategories),
			s.RecordRatingReceived(ctx, roleOf(e, e.RatedID), e.RatedID, e.Score, e.Subcategories),
		)
	case events.DocumentationAdded:
		return s.RecordDocumentationAdded(ctx, e.DoctorID, e.WordCount)
	case events.FileUploaded:
		return s.RecordFileUploaded(ctx, e.PatientID)
	}
	return nil
}

// Register subscribes the engine to the events that move statistics.
func (s *BadgeService) Register(bus *events.Bus) {
	bus.Subscribe("badges", s.HandleEvent,
		events.TurnCompleted,
		events.TurnCancelled,
		events.TurnNoShow,
		events.RatingSubmitted,
		events.DocumentationAdded,
		events.FileUploaded,
	)
}

// DoctorStatistics returns zeroed statistics for doctors without any recorded event.
func (s *BadgeService) DoctorStatistics(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error) {
	st, err := s.stats.FindDoctor(ctx, doctorID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.DoctorBadgeStatistics{DoctorID: doctorID, Progress: models.BadgeProgress{}}, nil
	}
	return st, err
}

func (s *BadgeService) PatientStatistics(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error) {
	st, err := s.stats.FindPatient(ctx, patientID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.PatientBadgeStatistics{PatientID: patientID, Progress: models.BadgeProgress{}}, nil
	}
	return st, err
}

func (s *BadgeService) ListBadges(ctx context.Context, userID uint) ([]models.Badge, error) {
	return s.badges.ListByUser(ctx, userID)
}
