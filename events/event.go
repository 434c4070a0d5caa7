package events

import "time"

type Type string

const (
	TurnReserved       Type = "turn.reserved"
	TurnCancelled      Type = "turn.cancelled"
	TurnCompleted      Type = "turn.completed"
	TurnNoShow         Type = "turn.no_show"
	ModifyRequested    Type = "modify_request.created"
	ModifyApproved     Type = "modify_request.approved"
	ModifyRejected     Type = "modify_request.rejected"
	RatingSubmitted    Type = "rating.submitted"
	DocumentationAdded Type = "turn.documented"
	FileUploaded       Type = "patient_file.uploaded"
	DoctorApproved     Type = "doctor.approved"
	DoctorRejected     Type = "doctor.rejected"
	UserRegistered     Type = "user.registered"
	TurnReminderDue    Type = "turn.reminder_due"
)

// Event is a fact about a committed change. Only the fields relevant to its Type are set.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    uint      `json:"actor_id,omitempty"`

	TurnID              uint      `json:"turn_id,omitempty"`
	DoctorID            uint      `json:"doctor_id,omitempty"`
	PatientID           uint      `json:"patient_id,omitempty"`
	ScheduledAt         time.Time `json:"scheduled_at,omitempty"`
	PreviousScheduledAt time.Time `json:"previous_scheduled_at,omitempty"`

	RequestID uint   `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`

	RatingID      uint     `json:"rating_id,omitempty"`
	RaterID       uint     `json:"rater_id,omitempty"`
	RatedID       uint     `json:"rated_id,omitempty"`
	Score         int      `json:"score,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`

	WordCount int  `json:"word_count,omitempty"`
	FileID    uint `json:"file_id,omitempty"`
	UserID    uint `json:"user_id,omitempty"`
}
