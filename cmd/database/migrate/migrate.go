package migration

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/namph-hanoi/genai-image-extractor-backend/entities"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entities.UploadedImage{}); err != nil {
		log.Printf("Error migrating uploaded images table: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ExtractedReceipt{}); err != nil {
		log.Printf("Error migrating extracted receipts table: %v", err)
		return err
	}
	if err := db.AutoMigrate(&entities.ExtractedItem{}); err != nil {
		log.Printf("Error migrating extracted items table: %v", err)
		return err
	}

	fmt.Println("Database migration complete")
	return nil
}
