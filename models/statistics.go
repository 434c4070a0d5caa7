package models

import (
	"database/sql/driver"
	"time"
)

// BadgeProgress maps a badge to its completion percentage in [0, 100].
type BadgeProgress map[BadgeType]float64

func (p BadgeProgress) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	return jsonValue(p)
}

func (p *BadgeProgress) Scan(value any) error {
	return scanJSON(value, p)
}

type DoctorBadgeStatistics struct {
	ID                      uint           `json:"id" gorm:"primaryKey"`
	DoctorID                uint           `json:"doctor_id" gorm:"uniqueIndex;not null"`
	TotalTurnsCompleted     int            `json:"total_turns_completed"`
	TotalTurnsCancelled     int            `json:"total_turns_cancelled"`
	TotalNoShows            int            `json:"total_no_shows"`
	TotalRatingsReceived    int            `json:"total_ratings_received"`
	RatingScoreSum          int            `json:"rating_score_sum"`
	TotalDocumentedTurns    int            `json:"total_documented_turns"`
	TotalDocumentationWords int            `json:"total_documentation_words"`
	Punctuality             RollingCounter `json:"punctuality" gorm:"embedded;embeddedPrefix:punctuality_"`
	Communication           RollingCounter `json:"communication" gorm:"embedded;embeddedPrefix:communication_"`
	Empathy                 RollingCounter `json:"empathy" gorm:"embedded;embeddedPrefix:empathy_"`
	Documentation           RollingCounter `json:"documentation" gorm:"embedded;embeddedPrefix:documentation_"`
	Attendance              RollingCounter `json:"attendance" gorm:"embedded;embeddedPrefix:attendance_"`
	Progress                BadgeProgress  `json:"progress" gorm:"type:jsonb"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
}

func (DoctorBadgeStatistics) TableName() string {
	return "doctor_badge_statistics"
}

func (s *DoctorBadgeStatistics) AverageScore() float64 {
	if s.TotalRatingsReceived == 0 {
		return 0
	}
	return float64(s.RatingScoreSum) / float64(s.TotalRatingsReceived)
}

type PatientBadgeStatistics struct {
	ID                   uint           `json:"id" gorm:"primaryKey"`
	PatientID            uint           `json:"patient_id" gorm:"uniqueIndex;not null"`
	TotalTurnsCompleted  int            `json:"total_turns_completed"`
	TotalTurnsCancelled  int            `json:"total_turns_cancelled"`
	TotalNoShows         int            `json:"total_no_shows"`
	TotalRatingsGiven    int            `json:"total_ratings_given"`
	TotalRatingsReceived int            `json:"total_ratings_received"`
	RatingScoreSum       int            `json:"rating_score_sum"`
	TotalFilesUploaded   int            `json:"total_files_uploaded"`
	Punctuality          RollingCounter `json:"punctuality" gorm:"embedded;embeddedPrefix:punctuality_"`
	Attendance           RollingCounter `json:"attendance" gorm:"embedded;embeddedPrefix:attendance_"`
	Progress             BadgeProgress  `json:"progress" gorm:"type:jsonb"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

func (PatientBadgeStatistics) TableName() string {
	return "patient_badge_statistics"
}

func (s *PatientBadgeStatistics) AverageScore() float64 {
	if s.TotalRatingsReceived == 0 {
		return 0
	}
	return float64(s.RatingScoreSum) / float64(s.TotalRatingsReceived)
}
