package entities

import "time"

// UploadedImage is one stored binary artifact. Rows are created once at
// upload time and never mutated afterwards except audit timestamps. An image
// may exist without a receipt when extraction fails after the upload step.
type UploadedImage struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`
	Path string `gorm:"not null" json:"path"`
	Timestamp
}

// ExtractedReceipt holds one structured receipt, valid or not. ExtractedItems
// carries a denormalized JSON snapshot of the item list for audit/display,
// separate from the normalized extracted_items rows.
//
// Column names (including the camel-cased FK) match the schema the original
// deployment migrated to, so existing data stays readable.
type ExtractedReceipt struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	ExtractedDate       time.Time `gorm:"column:extracted_date;not null" json:"extracted_date"`
	ExtractedCurrency   string    `gorm:"column:extracted_currency;not null" json:"extracted_currency"`
	ExtractedVendorName string    `gorm:"column:extracted_vendor_name;not null" json:"extracted_vendor_name"`
	ExtractedItems      string    `gorm:"column:extracted_items;type:json;not null" json:"extracted_items"`
	ExtractedTax        float64   `gorm:"column:extracted_tax;type:numeric;not null" json:"extracted_tax"`
	ExtractedTotal      float64   `gorm:"column:extracted_total;type:numeric;not null" json:"extracted_total"`
	IsValid             bool      `gorm:"column:is_valid;not null" json:"is_valid"`
	UploadedImageID     uint      `gorm:"column:uploadedImageId;uniqueIndex" json:"uploaded_image_id"`

	UploadedImage *UploadedImage   `gorm:"foreignKey:UploadedImageID" json:"-"`
	Items         []*ExtractedItem `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`
	Timestamp
}

// ExtractedItem is one line item, owned by exactly one receipt.
type ExtractedItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ReceiptID uint    `gorm:"column:receiptId" json:"receipt_id"`
	ItemName  string  `gorm:"not null" json:"item_name"`
	ItemCost  float64 `gorm:"type:numeric;not null" json:"item_cost"`
	Timestamp
}
