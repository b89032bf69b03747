package config

import (
	"log"

	"gorm.io/gorm"

	"coop-passbook/internal/adapters/persistence/models"
	"coop-passbook/internal/pkg/password"
)

// SeedInitialData creates the default client and admin user when the
// database is empty. Safe to run on every boot.
func SeedInitialData(db *gorm.DB) error {
	var clientCount int64
	if err := db.Model(&models.Client{}).Count(&clientCount).Error; err != nil {
		return err
	}

	var client models.Client
	if clientCount == 0 {
		client = models.Client{
			Code:     "DEFAULT",
			Name:     "Default Cooperative Society",
			IsActive: true,
		}
		if err := db.Create(&client).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded default client")
	} else {
		if err := db.First(&client).Error; err != nil {
			return err
		}
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		hash, err := password.Hash(getEnv("ADMIN_PASSWORD", "changeme123"))
		if err != nil {
			return err
		}
		admin := models.User{
			ClientID: client.ID,
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: hash,
			Role:     "ADMIN",
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("✅ Seeded default admin user")
	}

	return nil
}
