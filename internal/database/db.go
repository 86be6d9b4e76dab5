package database

import (
	"log"

	"portal/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.PasswordResetToken{},
		&model.Group{},
		&model.Task{},
		&model.TaskHistory{},
		&model.Company{},
		&model.Contact{},
		&model.DailyCall{},
		&model.Car{},
		&model.Rental{},
		&model.Event{},
		&model.Notification{},
		&model.Project{},
		&model.Sale{},
		&model.CommissionRule{},
		&model.MonthlyCommissionSummary{},
		&model.Payment{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
