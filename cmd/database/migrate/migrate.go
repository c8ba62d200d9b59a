package migration

import (
	"log"

	"kalorikollen/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	if err := db.AutoMigrate(&entities.LedgerRecord{}); err != nil {
		log.Printf("Error migrating ledger database: %v", err)
		return err
	}

	log.Println("Database migration complete")
	return nil
}
