package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей ядра расписания.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Company{},
		&Trainer{},
		&Tutor{},
		&Pet{},
		&Package{},
		&PackagePurchase{},
		&AvailabilityConfig{},
		&AvailabilityException{},
		&SessionTemplate{},
		&Session{},
		&Enrollment{},
		&Event{},
	)
}
