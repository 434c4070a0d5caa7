package models

import (
	"time"

	"gorm.io/gorm"
)

type ModifyRequestStatus string

const (
	ModifyPending  ModifyRequestStatus = "PENDING"
	ModifyApproved ModifyRequestStatus = "APPROVED"
	ModifyRejected ModifyRequestStatus = "REJECTED"
)

// TurnModifyRequest is a patient proposal to move a reserved turn, resolved by the doctor.
// Cancelling the turn soft-deletes any pending request.
type TurnModifyRequest struct {
	gorm.Model
	TurnID               uint                `json:"turn_id" gorm:"not null;index"`
	Turn                 *Turn               `json:"turn,omitempty" gorm:"foreignKey:TurnID"`
	PatientID            uint                `json:"patient_id" gorm:"not null;index"`
	DoctorID             uint                `json:"doctor_id" gorm:"not null;index"`
	CurrentScheduledAt   time.Time           `json:"current_scheduled_at" gorm:"not null"`
	RequestedScheduledAt time.Time           `json:"requested_scheduled_at" gorm:"not null"`
	Status               ModifyRequestStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	Reason               string              `json:"reason,omitempty"`
	RejectionReason      string              `json:"rejection_reason,omitempty"`
	ReviewedAt           *time.Time          `json:"reviewed_at,omitempty"`
}

func (TurnModifyRequest) TableName() string {
	return "turn_modify_requests"
}

func (r *TurnModifyRequest) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = ModifyPending
	}
	return nil
}

func (r *TurnModifyRequest) IsPending() bool { return r.Status == ModifyPending }
