package db

import (
	"fmt"

	"github.com/meinhoongagan/medical-turns/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// partialIndexes back the uniqueness invariants the booking service pre-checks.
var partialIndexes = []struct {
	name string
	sql  string
}{
	{
		name: "idx_turn_doctor_scheduled_active",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_turn_doctor_scheduled_active
			ON turns (doctor_id, scheduled_at)
			WHERE status <> 'CANCELLED' AND deleted_at IS NULL`,
	},
	{
		name: "idx_modify_request_pending_turn",
		sql: `CREATE UNIQUE INDEX IF NOT EXISTS idx_modify_request_pending_turn
			ON turn_modify_requests (turn_id)
			WHERE status = 'PENDING' AND deleted_at IS NULL`,
	},
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.DoctorProfile{},
		&models.Turn{},
		&models.TurnModifyRequest{},
		&models.Rating{},
		&models.Badge{},
		&models.DoctorBadgeStatistics{},
		&models.PatientBadgeStatistics{},
		&models.Notification{},
		&models.PatientFile{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, idx := range partialIndexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Info("Unique partial index ensured", zap.String("index", idx.name))
	}

	log.Info("Migrations applied successfully")
	return nil
}
