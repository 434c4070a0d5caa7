package models

import (
	"time"

	"github.com/meinhoongagan/medical-turns/apperrors"
	"gorm.io/gorm"
)

type TurnStatus string

const (
	TurnAvailable TurnStatus = "AVAILABLE"
	TurnReserved  TurnStatus = "RESERVED"
	TurnCompleted TurnStatus = "COMPLETED"
	TurnCancelled TurnStatus = "CANCELLED"
)

var turnTransitions = map[TurnStatus][]TurnStatus{
	TurnAvailable: {TurnReserved, TurnCancelled},
	TurnReserved:  {TurnCompleted, TurnCancelled},
}

// Turn is a bookable appointment slot of one doctor at one timestamp.
type Turn struct {
	gorm.Model
	DoctorID    uint       `json:"doctor_id" gorm:"not null;index"`
	Doctor      *User      `json:"doctor,omitempty" gorm:"foreignKey:DoctorID"`
	PatientID   *uint      `json:"patient_id" gorm:"index"`
	Patient     *User      `json:"patient,omitempty" gorm:"foreignKey:PatientID"`
	ScheduledAt time.Time  `json:"scheduled_at" gorm:"not null;index"`
	Status      TurnStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	NoShow      bool       `json:"no_show" gorm:"default:false"`
	CancelledBy *uint      `json:"cancelled_by,omitempty"`
	Notes       string     `json:"notes,omitempty" gorm:"type:text"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Turn) TableName() string {
	return "turns"
}

func (t *Turn) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TurnAvailable
	}
	return nil
}

func (s TurnStatus) Terminal() bool {
	return s == TurnCompleted || s == TurnCancelled
}

// CanTransitionTo reports whether the turn state machine allows moving from s to next.
func (s TurnStatus) CanTransitionTo(next TurnStatus) bool {
	for _, allowed := range turnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the turn to next in memory, or returns an InvalidState error.
func (t *Turn) TransitionTo(next TurnStatus) error {
	if t.Status.Terminal() {
		return apperrors.InvalidState("turn is already %s", lower(t.Status))
	}
	if !t.Status.CanTransitionTo(next) {
		return apperrors.InvalidState("turn cannot move from %s to %s", t.Status, next)
	}
	t.Status = next
	return nil
}

// Participant reports whether userID is the doctor or the assigned patient.
func (t *Turn) Participant(userID uint) bool {
	return t.DoctorID == userID || t.HasPatient(userID)
}

// Counterpart returns the other participant of a reserved turn.
func (t *Turn) Counterpart(userID uint) (uint, bool) {
	if t.PatientID == nil {
		return 0, false
	}
	switch userID {
	case t.DoctorID:
		return *t.PatientID, true
	case *t.PatientID:
		return t.DoctorID, true
	}
	return 0, false
}

func (t *Turn) HasPatient(patientID uint) bool {
	return t.PatientID != nil && *t.PatientID == patientID
}

func lower(s TurnStatus) string {
	switch s {
	case TurnAvailable:
		return "available"
	case TurnReserved:
		return "reserved"
	case TurnCompleted:
		return "completed"
	case TurnCancelled:
		return "cancelled"
	}
	return string(s)
}
