package repositories

import (
	"context"
	"strings"

	"github.com/meinhoongagan/medical-turns/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error
	ListByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) ([]models.User, error)
	ListDoctors(ctx context.Context, specialty string) ([]models.User, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create inserts the user together with its doctor profile, if any.
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(conn(ctx, r.db).Create(user).Error)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).Preload("DoctorProfile").First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := conn(ctx, r.db).Preload("DoctorProfile").
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return translate(conn(ctx, r.db).Omit("DoctorProfile").Save(user).Error)
}

func (r *GormUserRepository) UpdateDoctorProfile(ctx context.Context, profile *models.DoctorProfile) error {
	return translate(conn(ctx, r.db).Save(profile).Error)
}

func (r *GormUserRepository) ListByRoleAndStatus(ctx context.Context, role models.Role, status models.UserStatus) ([]models.User, error) {
	var users []models.User
	err := conn(ctx, r.db).Preload("DoctorProfile").
		Where("role = ? AND status = ?", role, status).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// ListDoctors returns active doctors, optionally filtered by specialty (case-insensitive).
func (r *GormUserRepository) ListDoctors(ctx context.Context, specialty string) ([]models.User, error) {
	var users []models.User
	query := conn(ctx, r.db).Preload("DoctorProfile").
		Where("role = ? AND status = ?", models.RoleDoctor, models.UserActive)
	if specialty = strings.TrimSpace(specialty); specialty != "" {
		query = query.Joins("JOIN doctor_profiles ON doctor_profiles.user_id = users.id").
			Where("LOWER(doctor_profiles.specialty) = ?", strings.ToLower(specialty))
	}
	err := query.Order("users.surname ASC, users.name ASC").Find(&users).Error
	return users, err
}
