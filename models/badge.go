package models

import (
	"time"
)

type BadgeType string

const (
	BadgeDoctorAlwaysPunctual          BadgeType = "DOCTOR_ALWAYS_PUNCTUAL"
	BadgeDoctorExceptionalCommunicator BadgeType = "DOCTOR_EXCEPTIONAL_COMMUNICATOR"
	BadgeDoctorEmpathetic              BadgeType = "DOCTOR_EMPATHETIC"
	BadgeDoctorDetailedHistorian       BadgeType = "DOCTOR_DETAILED_HISTORIAN"
	BadgeDoctorTopRated                BadgeType = "DOCTOR_TOP_RATED"
	BadgeDoctorReliable                BadgeType = "DOCTOR_RELIABLE"

	BadgePatientPunctual      BadgeType = "PATIENT_PUNCTUAL"
	BadgePatientCommitted     BadgeType = "PATIENT_COMMITTED"
	BadgePatientConstant      BadgeType = "PATIENT_CONSTANT"
	BadgePatientCollaborative BadgeType = "PATIENT_COLLABORATIVE"
	BadgePatientDocumented    BadgeType = "PATIENT_DOCUMENTED"
)

// Badge is an achievement flag of one user, re-evaluated whenever its statistics change.
type Badge struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	UserID          uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_badge_user_type"`
	BadgeType       BadgeType  `json:"badge_type" gorm:"type:varchar(64);not null;uniqueIndex:idx_badge_user_type"`
	IsActive        bool       `json:"is_active"`
	EarnedAt        *time.Time `json:"earned_at,omitempty"`
	LastEvaluatedAt time.Time  `json:"last_evaluated_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Badge) TableName() string {
	return "badges"
}

// Evaluate applies a criterion outcome. EarnedAt is only refreshed when an inactive badge is earned again.
func (b *Badge) Evaluate(met bool, now time.Time) {
	if met && !b.IsActive {
		earned := now
		b.EarnedAt = &earned
	}
	b.IsActive = met
	b.LastEvaluatedAt = now
}

// DoctorBadgeCriteria is the static doctor badge table: badge → progress percentage.
var DoctorBadgeCriteria = map[BadgeType]func(*DoctorBadgeStatistics) float64{
	BadgeDoctorAlwaysPunctual: func(s *DoctorBadgeStatistics) float64 {
		return percent(s.Punctuality.Hits, 8)
	},
	BadgeDoctorExceptionalCommunicator: func(s *DoctorBadgeStatistics) float64 {
		return percent(s.Communication.Hits, 35)
	},
	BadgeDoctorEmpathetic: func(s *DoctorBadgeStatistics) float64 {
		return percent(s.Empathy.Hits, 35)
	},
	BadgeDoctorDetailedHistorian: func(s *DoctorBadgeStatistics) float64 {
		return percent(s.Documentation.Hits, 8)
	},
	BadgeDoctorTopRated: func(s *DoctorBadgeStatistics) float64 {
		return min(percent(s.TotalRatingsReceived, 10), percentF(s.AverageScore(), 4.5))
	},
	BadgeDoctorReliable: func(s *DoctorBadgeStatistics) float64 {
		return percent(s.Attendance.Hits, 45)
	},
}

// PatientBadgeCriteria is the static patient badge table.
var PatientBadgeCriteria = map[BadgeType]func(*PatientBadgeStatistics) float64{
	BadgePatientPunctual: func(s *PatientBadgeStatistics) float64 {
		return percent(s.Punctuality.Hits, 8)
	},
	BadgePatientCommitted: func(s *PatientBadgeStatistics) float64 {
		return percent(s.Attendance.Hits, 8)
	},
	BadgePatientConstant: func(s *PatientBadgeStatistics) float64 {
		return percent(s.TotalTurnsCompleted, 5)
	},
	BadgePatientCollaborative: func(s *PatientBadgeStatistics) float64 {
		return percent(s.TotalRatingsGiven, 5)
	},
	BadgePatientDocumented: func(s *PatientBadgeStatistics) float64 {
		return percent(s.TotalFilesUploaded, 3)
	},
}

func percent(value, threshold int) float64 {
	return percentF(float64(value), float64(threshold))
}

func percentF(value, threshold float64) float64 {
	if threshold <= 0 {
		return 100
	}
	p := value * 100 / threshold
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
