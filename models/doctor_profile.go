package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	DefaultSlotDurationMin = 15
	MinSlotDurationMin     = 5
	MaxSlotDurationMin     = 180
)

// DoctorProfile holds the doctor-specific data of a User with RoleDoctor.
type DoctorProfile struct {
	gorm.Model
	UserID               uint           `json:"user_id" gorm:"uniqueIndex;not null"`
	MedicalLicense       string         `json:"medical_license" gorm:"uniqueIndex;not null"`
	Specialty            string         `json:"specialty" gorm:"index"`
	SlotDurationMin      int            `json:"slot_duration_min" gorm:"not null;default:15"`
	AvailabilitySchedule WeeklySchedule `json:"availability_schedule" gorm:"type:jsonb"`
}

func (p *DoctorProfile) BeforeCreate(tx *gorm.DB) error {
	if p.SlotDurationMin == 0 {
		p.SlotDurationMin = DefaultSlotDurationMin
	}
	return nil
}

func (p *DoctorProfile) SlotDuration() time.Duration {
	if p.SlotDurationMin <= 0 {
		return DefaultSlotDurationMin * time.Minute
	}
	return time.Duration(p.SlotDurationMin) * time.Minute
}
