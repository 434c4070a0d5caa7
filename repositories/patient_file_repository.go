package repositories

import (
	"context"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
)

type PatientFileRepository interface {
	Create(ctx context.Context, file *models.PatientFile) error
	ListByPatient(ctx context.Context, patientID uint) ([]models.PatientFile, error)
}

type GormPatientFileRepository struct {
	db *gorm.DB
}

func NewPatientFileRepository(db *gorm.DB) *GormPatientFileRepository {
	return &GormPatientFileRepository{db: db}
}

func (r *GormPatientFileRepository) Create(ctx context.Context, file *models.PatientFile) error {
	return conn(ctx, r.db).Create(file).Error
}

func (r *GormPatientFileRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.PatientFile, error) {
	var files []models.PatientFile
	err := conn(ctx, r.db).Where("patient_id = ?", patientID).Order("created_at DESC").Find(&files).Error
	return files, err
}
