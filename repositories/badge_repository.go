package repositories

import (
	"context"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
)

type BadgeRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Badge, error)
	Save(ctx context.Context, badge *models.Badge) error
}

type GormBadgeRepository struct {
	db *gorm.DB
}

func NewBadgeRepository(db *gorm.DB) *GormBadgeRepository {
	return &GormBadgeRepository{db: db}
}

func (r *GormBadgeRepository) ListByUser(ctx context.Context, userID uint) ([]models.Badge, error) {
	var badges []models.Badge
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("badge_type ASC").Find(&badges).Error
	return badges, err
}

func (r *GormBadgeRepository) Save(ctx context.Context, badge *models.Badge) error {
	return translate(conn(ctx, r.db).Save(badge).Error)
}
