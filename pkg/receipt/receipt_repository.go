package receipt

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
	"github.com/namph-hanoi/genai-image-extractor-backend/entities"
)

type (
	ReceiptRepository interface {
		CreateImage(ctx context.Context, image *entities.UploadedImage) error
		CreateReceipt(ctx context.Context, receipt *entities.ExtractedReceipt) error
		CreateItems(ctx context.Context, items []*entities.ExtractedItem) error
		FindReceiptWithItems(ctx context.Context, id uint) (*entities.ExtractedReceipt, error)
		FindImageByID(ctx context.Context, id uint) (*entities.UploadedImage, error)
		UpdateReceipt(ctx context.Context, receipt *entities.ExtractedReceipt, items []*entities.ExtractedItem) error
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) CreateImage(ctx context.Context, image *entities.UploadedImage) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("%w: create uploaded image: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *receiptRepository) CreateReceipt(ctx context.Context, receipt *entities.ExtractedReceipt) error {
	if err := r.db.WithContext(ctx).Omit("Items", "UploadedImage").Create(receipt).Error; err != nil {
		return fmt.Errorf("%w: create extracted receipt: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *receiptRepository) CreateItems(ctx context.Context, items []*entities.ExtractedItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(items).Error; err != nil {
		return fmt.Errorf("%w: create extracted items: %v", domain.ErrPersistenceFailed, err)
	}
	return nil
}

func (r *receiptRepository) FindReceiptWithItems(ctx context.Context, id uint) (*entities.ExtractedReceipt, error) {
	var receipt entities.ExtractedReceipt
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindImageByID(ctx context.Context, id uint) (*entities.UploadedImage, error) {
	var image entities.UploadedImage
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// UpdateReceipt overwrites the receipt row and replaces its item rows
// wholesale. The two writes are separate operations; there is no surrounding
// transaction, matching the create path's partial-failure semantics.
func (r *receiptRepository) UpdateReceipt(ctx context.Context, receipt *entities.ExtractedReceipt, items []*entities.ExtractedItem) error {
	err := r.db.WithContext(ctx).Omit("Items", "UploadedImage").Save(receipt).Error
	if err != nil {
		return fmt.Errorf("%w: update extracted receipt: %v", domain.ErrPersistenceFailed, err)
	}

	err = r.db.WithContext(ctx).
		Where("\"receiptId\" = ?", receipt.ID).
		Delete(&entities.ExtractedItem{}).Error
	if err != nil {
		return fmt.Errorf("%w: delete extracted items: %v", domain.ErrPersistenceFailed, err)
	}

	return r.CreateItems(ctx, items)
}
