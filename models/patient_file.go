package models

import "time"

// PatientFile is a medical document a patient uploaded to the file store.
type PatientFile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PatientID uint      `json:"patient_id" gorm:"not null;index"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	PublicID  string    `json:"public_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (PatientFile) TableName() string {
	return "patient_files"
}
