package bootstrap

import (
	"log"

	"github.com/arenaworks/arena-api/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.LinkedAccount{},
		&model.UserProfile{},
		&model.EmailOptIn{},
		&model.UserStats{},
		&model.UserGameStats{},
		&model.PasswordReset{},
		&model.EmailVerification{},
		&model.Activity{},
		&model.Game{},
		&model.GameSchedule{},
		&model.GameApplication{},
	)
}

// SeedAdminUser creates the development admin account if it is missing.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@arena.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Email:        "admin@arena.local",
		PasswordHash: string(hashed),
		Role:         model.RoleAdmin,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.UserProfile{UserID: admin.ID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.UserStats{UserID: admin.ID, Level: 1}).Error; err != nil {
			return err
		}

		log.Println("admin user seeded (admin@arena.local)")
		return nil
	})
}
