package domain

import (
	"errors"
	"mime/multipart"
)

var (
	MessageSuccessExtractReceipt = "receipt details extracted successfully"
	MessageSuccessUpdateReceipt  = "receipt updated successfully"
	MessageSuccessGetImage       = "image retrieved successfully"

	MessageFailedExtractReceipt = "failed to extract receipt details"
	MessageFailedUpdateReceipt  = "failed to update receipt"
	MessageFailedGetImage       = "failed to retrieve image"

	ErrReceiptNotFound    = errors.New("receipt not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrInvalidImageFormat = errors.New("invalid file type. Only .jpg, .jpeg, .png are allowed")
	ErrInvalidDate        = errors.New("date must be in YYYY/MM/DD format")
	ErrTotalsMismatch     = errors.New("receipt totals do not match within tolerance")
	ErrExtractionFailed   = errors.New("failed to extract receipt details")
	ErrPersistenceFailed  = errors.New("failed to persist receipt data")
)

type (
	// ReceiptItemPayload mirrors the {item_name, item_cost} pairs the model
	// is instructed to return and callers supply on update.
	ReceiptItemPayload struct {
		ItemName string  `json:"item_name" validate:"required"`
		ItemCost float64 `json:"item_cost" validate:"min=0"`
	}

	// ReceiptExtraction is the five-field structure parsed out of the model
	// response text.
	ReceiptExtraction struct {
		Date         string               `json:"date"`
		Vendor       string               `json:"vendor"`
		Currency     string               `json:"currency"`
		ReceiptItems []ReceiptItemPayload `json:"receipt_items"`
		Tax          float64              `json:"tax"`
		Total        float64              `json:"total"`
	}

	ExtractReceiptRequest struct {
		Image *multipart.FileHeader `json:"image" form:"image" validate:"required"`
	}

	UpdateReceiptRequest struct {
		ID           uint                 `json:"id" validate:"required,min=1"`
		Date         string               `json:"date" validate:"required"`
		Currency     string               `json:"currency" validate:"required,len=3,alpha,uppercase"`
		VendorName   string               `json:"vendor_name" validate:"required"`
		Total        float64              `json:"total" validate:"min=0"`
		Tax          float64              `json:"tax" validate:"min=0"`
		ReceiptItems []ReceiptItemPayload `json:"receipt_items" validate:"required,min=1,dive"`
	}

	ReceiptItemResponse struct {
		ID       uint    `json:"id"`
		ItemName string  `json:"item_name"`
		ItemCost float64 `json:"item_cost"`
	}

	ReceiptResponse struct {
		ID           uint                  `json:"id"`
		Date         string                `json:"date"`
		Currency     string                `json:"currency"`
		VendorName   string                `json:"vendor_name"`
		Tax          float64               `json:"tax"`
		Total        float64               `json:"total"`
		IsValid      bool                  `json:"is_valid"`
		ReceiptItems []ReceiptItemResponse `json:"receipt_items"`
		ImageURL     string                `json:"image_url"`
	}
)
