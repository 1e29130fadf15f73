package model

import "gorm.io/gorm"

// AutoMigrate выполняет миграцию всех сущностей доски объявлений.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Post{},
		&Claim{},
		&Event{},
	)
}
