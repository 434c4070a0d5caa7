package repositories

import (
	"context"
	"time"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TurnRepository interface {
	Create(ctx context.Context, turn *models.Turn) error
	FindByID(ctx context.Context, id uint) (*models.Turn, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Turn, error)
	ExistsActiveAt(ctx context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error)
	// Reserve assigns the patient only if the turn is still AVAILABLE; it reports whether a row changed.
	Reserve(ctx context.Context, turnID, patientID uint) (bool, error)
	Update(ctx context.Context, turn *models.Turn) error
	ListByDoctor(ctx context.Context, doctorID uint, from, to time.Time, statuses ...models.TurnStatus) ([]models.Turn, error)
	ListByPatient(ctx context.Context, patientID uint, from, to time.Time) ([]models.Turn, error)
	ListReservedBetween(ctx context.Context, from, to time.Time) ([]models.Turn, error)
}

type GormTurnRepository struct {
	db *gorm.DB
}

func NewTurnRepository(db *gorm.DB) *GormTurnRepository {
	return &GormTurnRepository{db: db}
}

func (r *GormTurnRepository) Create(ctx context.Context, turn *models.Turn) error {
	return translate(conn(ctx, r.db).Create(turn).Error)
}

func (r *GormTurnRepository) FindByID(ctx context.Context, id uint) (*models.Turn, error) {
	var turn models.Turn
	if err := conn(ctx, r.db).First(&turn, id).Error; err != nil {
		return nil, translate(err)
	}
	return &turn, nil
}

func (r *GormTurnRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Turn, error) {
	var turn models.Turn
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&turn, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &turn, nil
}

func (r *GormTurnRepository) ExistsActiveAt(ctx context.Context, doctorID uint, at time.Time, excludeID uint) (bool, error) {
	var count int64
	query := conn(ctx, r.db).Model(&models.Turn{}).
		Where("doctor_id = ? AND scheduled_at = ? AND status <> ?", doctorID, at, models.TurnCancelled)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormTurnRepository) Reserve(ctx context.Context, turnID, patientID uint) (bool, error) {
	result := conn(ctx, r.db).Model(&models.Turn{}).
		Where("id = ? AND status = ?", turnID, models.TurnAvailable).
		Updates(map[string]any{
			"status":     models.TurnReserved,
			"patient_id": patientID,
		})
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *GormTurnRepository) Update(ctx context.Context, turn *models.Turn) error {
	return translate(conn(ctx, r.db).Save(turn).Error)
}

// ListByDoctor returns turns with scheduled_at in [from, to), oldest first.
func (r *GormTurnRepository) ListByDoctor(ctx context.Context, doctorID uint, from, to time.Time, statuses ...models.TurnStatus) ([]models.Turn, error) {
	var turns []models.Turn
	query := conn(ctx, r.db).
		Where("doctor_id = ? AND scheduled_at >= ? AND scheduled_at < ?", doctorID, from, to)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("scheduled_at ASC").Find(&turns).Error; err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *GormTurnRepository) ListByPatient(ctx context.Context, patientID uint, from, to time.Time) ([]models.Turn, error) {
	var turns []models.Turn
	err := conn(ctx, r.db).Preload("Doctor").
		Where("patient_id = ? AND scheduled_at >= ? AND scheduled_at < ?", patientID, from, to).
		Order("scheduled_at ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (r *GormTurnRepository) ListReservedBetween(ctx context.Context, from, to time.Time) ([]models.Turn, error) {
	var turns []models.Turn
	err := conn(ctx, r.db).Preload("Doctor").Preload("Patient").
		Where("status = ? AND scheduled_at >= ? AND scheduled_at < ?", models.TurnReserved, from, to).
		Order("scheduled_at ASC").
		Find(&turns).Error
	if err != nil {
		return nil, err
	}
	return turns, nil
}
