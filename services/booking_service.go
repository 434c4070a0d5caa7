package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"github.com/meinhoongagan/medical-turns/events"
	"github.com/meinhoongagan/medical-turns/models"
	"github.com/meinhoongagan/medical-turns/repositories"
	"github.com/meinhoongagan/medical-turns/utils"
	"go.uber.org/zap"
)

const (
	defaultReservationLockTTL = 10 * time.Second
	maxGenerationRange        = 31 * 24 * time.Hour
)

type BookingDeps struct {
	Transactor repositories.Transactor
	Turns      repositories.TurnRepository
	Requests   repositories.ModifyRequestRepository
	Ratings    repositories.RatingRepository
	Users      repositories.UserRepository
	Locker     Locker
	Events     events.Publisher
	Log        *zap.Logger
	Clock      Clock
	Location   *time.Location
	LockTTL    time.Duration
}

// BookingService owns the turn lifecycle and the modification-request workflow.
type BookingService struct {
	tx       repositories.Transactor
	turns    repositories.TurnRepository
	requests repositories.ModifyRequestRepository
	ratings  repositories.RatingRepository
	users    repositories.UserRepository
	locker   Locker
	events   events.Publisher
	log      *zap.Logger
	now      Clock
	loc      *time.Location
	lockTTL  time.Duration
}

func NewBookingService(d BookingDeps) *BookingService {
	s := &BookingService{
		tx:       d.Transactor,
		turns:    d.Turns,
		requests: d.Requests,
		ratings:  d.Ratings,
		users:    d.Users,
		locker:   d.Locker,
		events:   d.Events,
		log:      d.Log,
		now:      d.Clock,
		loc:      d.Location,
		lockTTL:  d.LockTTL,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultReservationLockTTL
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func slotTaken(at time.Time) error {
	return apperrors.Conflict("doctor already has a turn at %s", at.UTC().Format(time.RFC3339))
}

func statusName(s models.TurnStatus) string {
	return strings.ToLower(string(s))
}

func (s *BookingService) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, e)
}

func (s *BookingService) activeDoctor(ctx context.Context, doctorID uint) (*models.User, error) {
	doctor, err := s.users.FindByID(ctx, doctorID)
	if err != nil {
		return nil, notFoundAs(err, "doctor")
	}
	if doctor.Role != models.RoleDoctor {
		return nil, apperrors.NotFound("doctor not found")
	}
	if !doctor.IsActive() {
		return nil, apperrors.Forbidden("doctor account is %s", strings.ToLower(string(doctor.Status)))
	}
	return doctor, nil
}

func (s *BookingService) withinHours(doctor *models.User, at time.Time) error {
	if doctor.DoctorProfile == nil || !doctor.DoctorProfile.AvailabilitySchedule.Covers(at.In(s.loc)) {
		return apperrors.Validation("%s is outside the doctor's working hours", utils.FormatLocal(at, s.loc))
	}
	return nil
}

// CreateTurn opens an AVAILABLE turn for the calling doctor.
func (s *BookingService) CreateTurn(ctx context.Context, actor models.Actor, doctorID uint, scheduledAt time.Time) (*models.Turn, error) {
	if !actor.ActsAsDoctor(doctorID) {
		return nil, apperrors.Forbidden("only the doctor can open their own turns")
	}
	if scheduledAt.IsZero() {
		return nil, apperrors.Validation("scheduled_at is required")
	}
	at := normalizeTime(scheduledAt)
	if !at.After(s.now()) {
		return nil, apperrors.Validation("turn must be scheduled in the future")
	}
	doctor, err := s.activeDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if err := s.withinHours(doctor, at); err != nil {
		return nil, err
	}

	turn := &models.Turn{DoctorID: doctorID, ScheduledAt: at, Status: models.TurnAvailable}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.turns.ExistsActiveAt(ctx, doctorID, at, 0)
		if err != nil {
			return err
		}
		if taken {
			return slotTaken(at)
		}
		if err := s.turns.Create(ctx, turn); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return slotTaken(at)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("turn created", zap.Uint("turn_id", turn.ID), zap.Uint("doctor_id", doctorID), zap.Time("scheduled_at", at))
	return turn, nil
}

// ReserveTurn books an AVAILABLE turn for the calling patient.
// Concurrent callers are serialized by a short redis lock and, authoritatively, by a conditional update.
func (s *BookingService) ReserveTurn(ctx context.Context, actor models.Actor, turnID, patientID uint) (*models.Turn, error) {
	if !actor.ActsAsPatient(patientID) {
		return nil, apperrors.Forbidden("turns can only be reserved by the patient themselves")
	}
	patient, err := s.users.FindByID(ctx, patientID)
	if err != nil {
		return nil, notFoundAs(err, "patient")
	}
	if !patient.IsActive() {
		return nil, apperrors.Forbidden("patient account is %s", strings.ToLower(string(patient.Status)))
	}

	key := fmt.Sprintf("turn:%d:reserve", turnID)
	acquired, token, err := s.locker.TryLock(ctx, key, s.lockTTL)
	switch {
	case err != nil:
		s.log.Warn("reservation lock unavailable, relying on database guard", zap.Uint("turn_id", turnID), zap.Error(err))
	case !acquired:
		return nil, apperrors.Conflict("turn is being reserved by another patient")
	default:
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				s.log.Warn("failed to release reservation lock", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	var turn *models.Turn
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByID(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		switch t.Status {
		case models.TurnAvailable:
		case models.TurnReserved:
			return apperrors.InvalidState("turn is already reserved")
		default:
			return apperrors.InvalidState("turn is already %s", statusName(t.Status))
		}
		if !t.ScheduledAt.After(s.now()) {
			return apperrors.InvalidState("turn has already started")
		}

		reserved, err := s.turns.Reserve(ctx, turnID, patientID)
		if err != nil {
			return err
		}
		if !reserved {
			return apperrors.Conflict("turn was reserved by another patient")
		}
		t.Status = models.TurnReserved
		t.PatientID = &patientID
		turn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("turn reserved", zap.Uint("turn_id", turn.ID), zap.Uint("patient_id", patientID))
	s.publish(ctx, events.Event{
		Type:        events.TurnReserved,
		ActorID:     actor.ID,
		TurnID:      turn.ID,
		DoctorID:    turn.DoctorID,
		PatientID:   patientID,
		ScheduledAt: turn.ScheduledAt,
	})
	return turn, nil
}

// CancelTurn cancels an open or reserved turn and voids its pending modification request.
func (s *BookingService) CancelTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error) {
	var (
		turn        *models.Turn
		wasReserved bool
		voided      int64
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByIDForUpdate(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		if !actor.ActsAsDoctor(t.DoctorID) && !(t.PatientID != nil && actor.ActsAsPatient(*t.PatientID)) {
			return apperrors.Forbidden("only the turn's doctor or patient can cancel it")
		}
		wasReserved = t.Status == models.TurnReserved
		if err := t.TransitionTo(models.TurnCancelled); err != nil {
			return err
		}
		by := actor.ID
		t.CancelledBy = &by
		if err := s.turns.Update(ctx, t); err != nil {
			return err
		}
		voided, err = s.requests.VoidPendingByTurn(ctx, t.ID)
		if err != nil {
			return err
		}
		turn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("turn cancelled",
		zap.Uint("turn_id", turn.ID),
		zap.Uint("cancelled_by", actor.ID),
		zap.Int64("voided_requests", voided),
	)
	if wasReserved {
		s.publish(ctx, events.Event{
			Type:        events.TurnCancelled,
			ActorID:     actor.ID,
			TurnID:      turn.ID,
			DoctorID:    turn.DoctorID,
			PatientID:   *turn.PatientID,
			ScheduledAt: turn.ScheduledAt,
		})
	}
	return turn, nil
}

// CompleteTurn marks a reserved turn whose time has passed as attended.
// Admins may complete turns on behalf of the system.
func (s *BookingService) CompleteTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error) {
	var turn *models.Turn
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByIDForUpdate(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		if !actor.ActsAsDoctor(t.DoctorID) && !actor.IsAdmin() {
			return apperrors.Forbidden("only the turn's doctor can complete it")
		}
		if t.Status != models.TurnReserved {
			return t.TransitionTo(models.TurnCompleted)
		}
		now := s.now()
		if t.ScheduledAt.After(now) {
			return apperrors.InvalidState("turn has not started yet")
		}
		if err := t.TransitionTo(models.TurnCompleted); err != nil {
			return err
		}
		t.CompletedAt = &now
		if err := s.turns.Update(ctx, t); err != nil {
			return err
		}
		turn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("turn completed", zap.Uint("turn_id", turn.ID))
	s.publish(ctx, events.Event{
		Type:        events.TurnCompleted,
		ActorID:     actor.ID,
		TurnID:      turn.ID,
		DoctorID:    turn.DoctorID,
		PatientID:   *turn.PatientID,
		ScheduledAt: turn.ScheduledAt,
	})
	return turn, nil
}

// MarkNoShow closes a reserved turn the patient did not attend.
// The turn ends CANCELLED with NoShow set; only the patient's attendance is penalized.
func (s *BookingService) MarkNoShow(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error) {
	var turn *models.Turn
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByIDForUpdate(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		if !actor.ActsAsDoctor(t.DoctorID) && !actor.IsAdmin() {
			return apperrors.Forbidden("only the turn's doctor can report a no-show")
		}
		if t.Status != models.TurnReserved {
			return apperrors.InvalidState("only reserved turns can be marked as no-show, turn is %s", statusName(t.Status))
		}
		if t.ScheduledAt.After(s.now()) {
			return apperrors.InvalidState("turn has not started yet")
		}
		if err := t.TransitionTo(models.TurnCancelled); err != nil {
			return err
		}
		by := actor.ID
		t.NoShow = true
		t.CancelledBy = &by
		if err := s.turns.Update(ctx, t); err != nil {
			return err
		}
		if _, err := s.requests.VoidPendingByTurn(ctx, t.ID); err != nil {
			return err
		}
		turn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("turn marked as no-show", zap.Uint("turn_id", turn.ID))
	s.publish(ctx, events.Event{
		Type:        events.TurnNoShow,
		ActorID:     actor.ID,
		TurnID:      turn.ID,
		DoctorID:    turn.DoctorID,
		PatientID:   *turn.PatientID,
		ScheduledAt: turn.ScheduledAt,
	})
	return turn, nil
}

// RequestModification files a PENDING proposal to move a reserved turn.
func (s *BookingService) RequestModification(ctx context.Context, actor models.Actor, turnID uint, newScheduledAt time.Time, reason string) (*models.TurnModifyRequest, error) {
	if newScheduledAt.IsZero() {
		return nil, apperrors.Validation("requested_scheduled_at is required")
	}
	at := normalizeTime(newScheduledAt)
	if !at.After(s.now()) {
		return nil, apperrors.Validation("requested time must be in the future")
	}

	var req *models.TurnModifyRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByIDForUpdate(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		if !actor.IsPatient() || !t.HasPatient(actor.ID) {
			return apperrors.Forbidden("only the patient who reserved the turn can request a change")
		}
		if t.Status != models.TurnReserved {
			return apperrors.InvalidState("only reserved turns can be modified, turn is %s", statusName(t.Status))
		}
		if at.Equal(t.ScheduledAt) {
			return apperrors.Validation("requested time is the current time of the turn")
		}
		doctor, err := s.users.FindByID(ctx, t.DoctorID)
		if err != nil {
			return notFoundAs(err, "doctor")
		}
		if err := s.withinHours(doctor, at); err != nil {
			return err
		}

		_, err = s.requests.FindPendingByTurn(ctx, t.ID)
		switch {
		case err == nil:
			return apperrors.Conflict("turn already has a pending modification request")
		case !errors.Is(err, repositories.ErrNotFound):
			return err
		}
		taken, err := s.turns.ExistsActiveAt(ctx, t.DoctorID, at, t.ID)
		if err != nil {
			return err
		}
		if taken {
			return slotTaken(at)
		}

		req = &models.TurnModifyRequest{
			TurnID:               t.ID,
			PatientID:            *t.PatientID,
			DoctorID:             t.DoctorID,
			CurrentScheduledAt:   t.ScheduledAt,
			RequestedScheduledAt: at,
			Status:               models.ModifyPending,
			Reason:               strings.TrimSpace(reason),
		}
		return duplicateAs(s.requests.Create(ctx, req), "turn already has a pending modification request")
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("modification requested", zap.Uint("request_id", req.ID), zap.Uint("turn_id", turnID))
	s.publish(ctx, events.Event{
		Type:                events.ModifyRequested,
		ActorID:             actor.ID,
		RequestID:           req.ID,
		TurnID:              req.TurnID,
		DoctorID:            req.DoctorID,
		PatientID:           req.PatientID,
		ScheduledAt:         req.RequestedScheduledAt,
		PreviousScheduledAt: req.CurrentScheduledAt,
	})
	return req, nil
}

// ReviewModification approves or rejects a PENDING request. Approval moves the turn, which stays RESERVED.
func (s *BookingService) ReviewModification(ctx context.Context, actor models.Actor, requestID uint, approved bool, rejectionReason string) (*models.TurnModifyRequest, error) {
	rejectionReason = strings.TrimSpace(rejectionReason)
	if !approved && rejectionReason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}

	var req *models.TurnModifyRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := s.requests.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return notFoundAs(err, "modification request")
		}
		if !actor.ActsAsDoctor(r.DoctorID) {
			return apperrors.Forbidden("only the turn's doctor can review this request")
		}
		if !r.IsPending() {
			return apperrors.InvalidState("modification request is already %s", strings.ToLower(string(r.Status)))
		}
		now := s.now()
		r.ReviewedAt = &now

		var moved *models.Turn
		if approved {
			t, err := s.turns.FindByIDForUpdate(ctx, r.TurnID)
			if err != nil {
				return notFoundAs(err, "turn")
			}
			if t.Status != models.TurnReserved {
				return apperrors.InvalidState("turn is %s and can no longer be moved", statusName(t.Status))
			}
			if !r.RequestedScheduledAt.After(now) {
				return apperrors.InvalidState("requested time has already passed")
			}
			taken, err := s.turns.ExistsActiveAt(ctx, t.DoctorID, r.RequestedScheduledAt, t.ID)
			if err != nil {
				return err
			}
			if taken {
				return slotTaken(r.RequestedScheduledAt)
			}
			t.ScheduledAt = r.RequestedScheduledAt
			if err := s.turns.Update(ctx, t); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return slotTaken(r.RequestedScheduledAt)
				}
				return err
			}
			r.Status = models.ModifyApproved
			moved = t
		} else {
			r.Status = models.ModifyRejected
			r.RejectionReason = rejectionReason
		}
		if err := s.requests.Update(ctx, r); err != nil {
			return err
		}
		r.Turn = moved
		req = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	e := events.Event{
		ActorID:             actor.ID,
		RequestID:           req.ID,
		TurnID:              req.TurnID,
		DoctorID:            req.DoctorID,
		PatientID:           req.PatientID,
		ScheduledAt:         req.RequestedScheduledAt,
		PreviousScheduledAt: req.CurrentScheduledAt,
	}
	if approved {
		e.Type = events.ModifyApproved
	} else {
		e.Type = events.ModifyRejected
		e.Reason = req.RejectionReason
		e.ScheduledAt = req.CurrentScheduledAt
	}
	s.log.Info("modification reviewed", zap.Uint("request_id", req.ID), zap.String("status", string(req.Status)))
	s.publish(ctx, e)
	return req, nil
}

// SubmitRating records the caller's rating of the other participant of a completed turn.
func (s *BookingService) SubmitRating(ctx context.Context, actor models.Actor, turnID, ratedID uint, score int, subcategories []string, comment string) (*models.Rating, error) {
	if score < models.MinRatingScore || score > models.MaxRatingScore {
		return nil, apperrors.Validation("score must be between %d and %d", models.MinRatingScore, models.MaxRatingScore)
	}
	tags := models.NormalizeTags(subcategories)
	for _, tag := range tags {
		if !models.IsKnownTag(tag) {
			return nil, apperrors.Validation("unknown rating subcategory %q", tag)
		}
	}

	t, err := s.turns.FindByID(ctx, turnID)
	if err != nil {
		return nil, notFoundAs(err, "turn")
	}
	if !actor.ActsAsDoctor(t.DoctorID) && !(t.PatientID != nil && actor.ActsAsPatient(*t.PatientID)) {
		return nil, apperrors.Forbidden("only participants of the turn can rate it")
	}
	if t.Status != models.TurnCompleted {
		return nil, apperrors.InvalidState("only completed turns can be rated, turn is %s", statusName(t.Status))
	}
	counterpart, ok := t.Counterpart(actor.ID)
	if !ok || counterpart != ratedID {
		return nil, apperrors.Validation("the rated user must be the other participant of the turn")
	}

	rated, err := s.ratings.ExistsByTurnAndRater(ctx, turnID, actor.ID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, apperrors.Conflict("turn was already rated by this user")
	}
	rating := &models.Rating{
		TurnID:        turnID,
		RaterID:       actor.ID,
		RatedID:       ratedID,
		Score:         score,
		Subcategories: models.JoinTags(tags),
		Comment:       strings.TrimSpace(comment),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, duplicateAs(err, "turn was already rated by this user")
	}

	s.log.Info("rating submitted", zap.Uint("rating_id", rating.ID), zap.Uint("turn_id", turnID))
	s.publish(ctx, events.Event{
		Type:          events.RatingSubmitted,
		ActorID:       actor.ID,
		TurnID:        turnID,
		DoctorID:      t.DoctorID,
		PatientID:     *t.PatientID,
		RatingID:      rating.ID,
		RaterID:       actor.ID,
		RatedID:       ratedID,
		Score:         score,
		Subcategories: tags,
	})
	return rating, nil
}

// AddDocumentation stores the doctor's clinical notes of a completed turn. Notes are written once.
func (s *BookingService) AddDocumentation(ctx context.Context, actor models.Actor, turnID uint, notes string) (*models.Turn, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, apperrors.Validation("notes are required")
	}

	var turn *models.Turn
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		t, err := s.turns.FindByIDForUpdate(ctx, turnID)
		if err != nil {
			return notFoundAs(err, "turn")
		}
		if !actor.ActsAsDoctor(t.DoctorID) {
			return apperrors.Forbidden("only the turn's doctor can document it")
		}
		if t.Status != models.TurnCompleted {
			return apperrors.InvalidState("only completed turns can be documented, turn is %s", statusName(t.Status))
		}
		if t.Notes != "" {
			return apperrors.Conflict("turn is already documented")
		}
		t.Notes = notes
		if err := s.turns.Update(ctx, t); err != nil {
			return err
		}
		turn = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.DocumentationAdded,
		ActorID:   actor.ID,
		TurnID:    turn.ID,
		DoctorID:  turn.DoctorID,
		PatientID: *turn.PatientID,
		WordCount: countWords(notes),
	})
	return turn, nil
}

// GenerateTurns opens AVAILABLE turns for every free slot of the doctor's weekly schedule in [from, to).
// Slots are laid out in the service's time zone.
func (s *BookingService) GenerateTurns(ctx context.Context, actor models.Actor, doctorID uint, from, to time.Time) ([]models.Turn, error) {
	if !actor.ActsAsDoctor(doctorID) {
		return nil, apperrors.Forbidden("only the doctor can open their own turns")
	}
	if !to.After(from) {
		return nil, apperrors.Validation("to must be after from")
	}
	if to.Sub(from) > maxGenerationRange {
		return nil, apperrors.Validation("range cannot exceed 31 days")
	}
	doctor, err := s.activeDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	profile := doctor.DoctorProfile
	if profile == nil || len(profile.AvailabilitySchedule) == 0 {
		return nil, apperrors.Validation("doctor has no availability schedule")
	}
	if now := s.now(); from.Before(now) {
		from = now
	}
	if !to.After(from) {
		return nil, nil
	}

	var candidates []time.Time
	day, _ := utils.DayBounds(from, s.loc)
	for ; day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, slot := range profile.AvailabilitySchedule.SlotsOn(day, profile.SlotDuration()) {
			if !slot.Before(from) && slot.Before(to) {
				candidates = append(candidates, normalizeTime(slot))
			}
		}
	}

	var created []models.Turn
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.turns.ListByDoctor(ctx, doctorID, from, to,
			models.TurnAvailable, models.TurnReserved, models.TurnCompleted)
		if err != nil {
			return err
		}
		taken := make(map[int64]bool, len(existing))
		for _, t := range existing {
			taken[t.ScheduledAt.Unix()] = true
		}
		for _, at := range candidates {
			if taken[at.Unix()] {
				continue
			}
			turn := models.Turn{DoctorID: doctorID, ScheduledAt: at, Status: models.TurnAvailable}
			if err := s.turns.Create(ctx, &turn); err != nil {
				if errors.Is(err, repositories.ErrDuplicate) {
					return slotTaken(at)
				}
				return err
			}
			taken[at.Unix()] = true
			created = append(created, turn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("turns generated", zap.Uint("doctor_id", doctorID), zap.Int("count", len(created)))
	return created, nil
}

func (s *BookingService) GetTurn(ctx context.Context, actor models.Actor, turnID uint) (*models.Turn, error) {
	t, err := s.turns.FindByID(ctx, turnID)
	if err != nil {
		return nil, notFoundAs(err, "turn")
	}
	if t.Status == models.TurnAvailable || actor.IsAdmin() || t.Participant(actor.ID) {
		return t, nil
	}
	return nil, apperrors.Forbidden("turn belongs to another patient")
}

func validRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperrors.Validation("from and to are required")
	}
	if !to.After(from) {
		return apperrors.Validation("to must be after from")
	}
	return nil
}

// ListDoctorTurns returns every turn of the doctor in [from, to), earliest first.
func (s *BookingService) ListDoctorTurns(ctx context.Context, actor models.Actor, doctorID uint, from, to time.Time) ([]models.Turn, error) {
	if !actor.ActsAsDoctor(doctorID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the doctor can list all of their turns")
	}
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	return s.turns.ListByDoctor(ctx, doctorID, from, to)
}

// ListAvailableTurns returns the future open turns of a doctor in [from, to).
func (s *BookingService) ListAvailableTurns(ctx context.Context, doctorID uint, from, to time.Time) ([]models.Turn, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	if now := s.now(); from.Before(now) {
		from = now
	}
	if !to.After(from) {
		return []models.Turn{}, nil
	}
	return s.turns.ListByDoctor(ctx, doctorID, from, to, models.TurnAvailable)
}

func (s *BookingService) ListPatientTurns(ctx context.Context, actor models.Actor, patientID uint, from, to time.Time) ([]models.Turn, error) {
	if !actor.ActsAsPatient(patientID) && !actor.IsAdmin() {
		return nil, apperrors.Forbidden("only the patient can list their turns")
	}
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	return s.turns.ListByPatient(ctx, patientID, from, to)
}

func (s *BookingService) ListPendingRequests(ctx context.Context, actor models.Actor) ([]models.TurnModifyRequest, error) {
	if !actor.IsDoctor() {
		return nil, apperrors.Forbidden("only doctors review modification requests")
	}
	return s.requests.ListPendingByDoctor(ctx, actor.ID)
}

func (s *BookingService) ListMyRequests(ctx context.Context, actor models.Actor) ([]models.TurnModifyRequest, error) {
	if !actor.IsPatient() {
		return nil, apperrors.Forbidden("only patients file modification requests")
	}
	return s.requests.ListByPatient(ctx, actor.ID)
}

func (s *BookingService) ListRatingsReceived(ctx context.Context, userID uint) ([]models.Rating, error) {
	return s.ratings.ListByRated(ctx, userID)
}
