package repositories

import (
	"context"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ExistsByTurnAndRater(ctx context.Context, turnID, raterID uint) (bool, error)
	ListByRated(ctx context.Context, ratedID uint) ([]models.Rating, error)
	ListByTurn(ctx context.Context, turnID uint) ([]models.Rating, error)
}

type GormRatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *GormRatingRepository {
	return &GormRatingRepository{db: db}
}

func (r *GormRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	return translate(conn(ctx, r.db).Create(rating).Error)
}

func (r *GormRatingRepository) ExistsByTurnAndRater(ctx context.Context, turnID, raterID uint) (bool, error) {
	var count int64
	err := conn(ctx, r.db).Model(&models.Rating{}).
		Where("turn_id = ? AND rater_id = ?", turnID, raterID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormRatingRepository) ListByRated(ctx context.Context, ratedID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := conn(ctx, r.db).Where("rated_id = ?", ratedID).Order("created_at DESC").Find(&ratings).Error
	return ratings, err
}

func (r *GormRatingRepository) ListByTurn(ctx context.Context, turnID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := conn(ctx, r.db).Where("turn_id = ?", turnID).Order("created_at ASC").Find(&ratings).Error
	return ratings, err
}
