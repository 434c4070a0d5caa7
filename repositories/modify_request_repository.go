package repositories

import (
	"context"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ModifyRequestRepository interface {
	Create(ctx context.Context, req *models.TurnModifyRequest) error
	FindByIDForUpdate(ctx context.Context, id uint) (*models.TurnModifyRequest, error)
	FindPendingByTurn(ctx context.Context, turnID uint) (*models.TurnModifyRequest, error)
	Update(ctx context.Context, req *models.TurnModifyRequest) error
	// VoidPendingByTurn soft-deletes pending requests of a turn and returns how many were voided.
	VoidPendingByTurn(ctx context.Context, turnID uint) (int64, error)
	ListPendingByDoctor(ctx context.Context, doctorID uint) ([]models.TurnModifyRequest, error)
	ListByPatient(ctx context.Context, patientID uint) ([]models.TurnModifyRequest, error)
}

type GormModifyRequestRepository struct {
	db *gorm.DB
}

func NewModifyRequestRepository(db *gorm.DB) *GormModifyRequestRepository {
	return &GormModifyRequestRepository{db: db}
}

func (r *GormModifyRequestRepository) Create(ctx context.Context, req *models.TurnModifyRequest) error {
	return translate(conn(ctx, r.db).Create(req).Error)
}

func (r *GormModifyRequestRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.TurnModifyRequest, error) {
	var req models.TurnModifyRequest
	err := conn(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *GormModifyRequestRepository) FindPendingByTurn(ctx context.Context, turnID uint) (*models.TurnModifyRequest, error) {
	var req models.TurnModifyRequest
	err := conn(ctx, r.db).
		Where("turn_id = ? AND status = ?", turnID, models.ModifyPending).
		First(&req).Error
	if err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *GormModifyRequestRepository) Update(ctx context.Context, req *models.TurnModifyRequest) error {
	return translate(conn(ctx, r.db).Omit(clause.Associations).Save(req).Error)
}

func (r *GormModifyRequestRepository) VoidPendingByTurn(ctx context.Context, turnID uint) (int64, error) {
	result := conn(ctx, r.db).
		Where("turn_id = ? AND status = ?", turnID, models.ModifyPending).
		Delete(&models.TurnModifyRequest{})
	return result.RowsAffected, result.Error
}

func (r *GormModifyRequestRepository) ListPendingByDoctor(ctx context.Context, doctorID uint) ([]models.TurnModifyRequest, error) {
	var reqs []models.TurnModifyRequest
	err := conn(ctx, r.db).Preload("Turn").
		Where("doctor_id = ? AND status = ?", doctorID, models.ModifyPending).
		Order("created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (r *GormModifyRequestRepository) ListByPatient(ctx context.Context, patientID uint) ([]models.TurnModifyRequest, error) {
	var reqs []models.TurnModifyRequest
	err := conn(ctx, r.db).
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}
