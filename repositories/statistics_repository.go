package repositories

import (
	"context"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatisticsRepository stores the per-user badge statistics aggregates.
// The Lock* methods must run inside a transaction; they create the row when missing.
type StatisticsRepository interface {
	LockDoctor(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error)
	SaveDoctor(ctx context.Context, stats *models.DoctorBadgeStatistics) error
	FindDoctor(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error)
	LockPatient(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error)
	SavePatient(ctx context.Context, stats *models.PatientBadgeStatistics) error
	FindPatient(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error)
}

type GormStatisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) *GormStatisticsRepository {
	return &GormStatisticsRepository{db: db}
}

func (r *GormStatisticsRepository) LockDoctor(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error) {
	tx := conn(ctx, r.db)
	seed := models.DoctorBadgeStatistics{DoctorID: doctorID, Progress: models.BadgeProgress{}}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "doctor_id"}}, DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, translate(err)
	}
	var stats models.DoctorBadgeStatistics
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_id = ?", doctorID).
		First(&stats).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

func (r *GormStatisticsRepository) SaveDoctor(ctx context.Context, stats *models.DoctorBadgeStatistics) error {
	return translate(conn(ctx, r.db).Save(stats).Error)
}

func (r *GormStatisticsRepository) FindDoctor(ctx context.Context, doctorID uint) (*models.DoctorBadgeStatistics, error) {
	var stats models.DoctorBadgeStatistics
	if err := conn(ctx, r.db).Where("doctor_id = ?", doctorID).First(&stats).Error; err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

func (r *GormStatisticsRepository) LockPatient(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error) {
	tx := conn(ctx, r.db)
	seed := models.PatientBadgeStatistics{PatientID: patientID, Progress: models.BadgeProgress{}}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "patient_id"}}, DoNothing: true}).
		Create(&seed).Error; err != nil {
		return nil, translate(err)
	}
	var stats models.PatientBadgeStatistics
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("patient_id = ?", patientID).
		First(&stats).Error
	if err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}

func (r *GormStatisticsRepository) SavePatient(ctx context.Context, stats *models.PatientBadgeStatistics) error {
	return translate(conn(ctx, r.db).Save(stats).Error)
}

func (r *GormStatisticsRepository) FindPatient(ctx context.Context, patientID uint) (*models.PatientBadgeStatistics, error) {
	var stats models.PatientBadgeStatistics
	if err := conn(ctx, r.db).Where("patient_id = ?", patientID).First(&stats).Error; err != nil {
		return nil, translate(err)
	}
	return &stats, nil
}
