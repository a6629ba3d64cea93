package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
	"github.com/namph-hanoi/genai-image-extractor-backend/entities"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/utils/storage"
	"github.com/namph-hanoi/genai-image-extractor-backend/pkg/gemini"
)

type (
	ReceiptService interface {
		ExtractReceipt(ctx context.Context, req domain.ExtractReceiptRequest) (domain.ReceiptResponse, error)
		UpdateReceipt(ctx context.Context, req domain.UpdateReceiptRequest) (domain.ReceiptResponse, error)
		OpenImage(ctx context.Context, id uint) (*entities.UploadedImage, io.ReadCloser, error)
	}

	receiptService struct {
		receiptRepository ReceiptRepository
		extractor         gemini.Extractor
		store             storage.Storage
		log               zerolog.Logger
	}
)

func NewReceiptService(
	receiptRepository ReceiptRepository,
	extractor gemini.Extractor,
	store storage.Storage,
	log zerolog.Logger,
) ReceiptService {
	return &receiptService{
		receiptRepository: receiptRepository,
		extractor:         extractor,
		store:             store,
		log:               log,
	}
}

// ExtractReceipt runs the pipeline: store the image blob, persist the image
// row, call the model, validate the claimed arithmetic and persist the
// receipt with its items. Validity is a stored flag, not a rejection gate; an
// invalid receipt is still saved with is_valid=false.
//
// Failure at any stage stops the pipeline and surfaces as a single generic
// error; already-written rows are kept. An image without a receipt, or a
// receipt without items, are accepted partial states.
func (s *receiptService) ExtractReceipt(ctx context.Context, req domain.ExtractReceiptRequest) (domain.ReceiptResponse, error) {
	ext := strings.ToLower(filepath.Ext(req.Image.Filename))
	if !storage.Allowed(ext) {
		return domain.ReceiptResponse{}, domain.ErrInvalidImageFormat
	}

	file, err := req.Image.Open()
	if err != nil {
		s.log.Error().Err(err).Msg("opening uploaded file")
		return domain.ReceiptResponse{}, domain.ErrExtractionFailed
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		s.log.Error().Err(err).Msg("reading uploaded file")
		return domain.ReceiptResponse{}, domain.ErrExtractionFailed
	}

	base := strings.TrimSuffix(req.Image.Filename, ext)
	storedName := fmt.Sprintf("%s-%s%s", base, uuid.New().String(), ext)
	storedPath, err := s.store.Save(ctx, storedName, imageBytes)
	if err != nil {
		s.log.Error().Err(err).Str("file", storedName).Msg("storing image blob")
		return domain.ReceiptResponse{}, domain.ErrExtractionFailed
	}

	image := &entities.UploadedImage{
		Name: req.Image.Filename,
		Path: storedPath,
	}
	if err := s.receiptRepository.CreateImage(ctx, image); err != nil {
		// The blob already written to the store is not rolled back; an
		// orphaned file is an accepted outcome of this failure.
		s.log.Error().Err(err).Msg("persisting uploaded image")
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}

	extraction, err := s.extractor.ExtractReceiptDetails(ctx, imageBytes)
	if err != nil {
		// The image row is retained: an image with no receipt is a valid
		// model state.
		s.log.Error().Err(err).Uint("image_id", image.ID).Msg("extracting receipt details")
		return domain.ReceiptResponse{}, domain.ErrExtractionFailed
	}

	extractedDate, err := parseReceiptDate(extraction.Date)
	if err != nil {
		s.log.Error().Err(err).Str("date", extraction.Date).Msg("parsing extracted date")
		return domain.ReceiptResponse{}, domain.ErrExtractionFailed
	}

	totals := CalculateReceiptTotals(extraction.ReceiptItems, extraction.Tax, extraction.Total)
	isValid := ValidateReceiptTotals(totals, DefaultTolerance)

	receipt := &entities.ExtractedReceipt{
		ExtractedDate:       extractedDate,
		ExtractedCurrency:   extraction.Currency,
		ExtractedVendorName: extraction.Vendor,
		ExtractedItems:      itemsSnapshot(extraction.ReceiptItems),
		ExtractedTax:        extraction.Tax,
		ExtractedTotal:      extraction.Total,
		IsValid:             isValid,
		UploadedImageID:     image.ID,
	}
	if err := s.receiptRepository.CreateReceipt(ctx, receipt); err != nil {
		s.log.Error().Err(err).Uint("image_id", image.ID).Msg("persisting extracted receipt")
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}

	items := make([]*entities.ExtractedItem, 0, len(extraction.ReceiptItems))
	for _, item := range extraction.ReceiptItems {
		items = append(items, &entities.ExtractedItem{
			ReceiptID: receipt.ID,
			ItemName:  item.ItemName,
			ItemCost:  item.ItemCost,
		})
	}
	if err := s.receiptRepository.CreateItems(ctx, items); err != nil {
		// The receipt row persists with zero items; no rollback.
		s.log.Error().Err(err).Uint("receipt_id", receipt.ID).Msg("persisting extracted items")
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}
	receipt.Items = items

	return buildReceiptResponse(receipt), nil
}

// UpdateReceipt re-validates caller-supplied replacement data and overwrites
// the stored receipt only when the totals check passes. A rejected update
// leaves the stored record untouched. Last write wins on concurrent updates
// to the same receipt; there is no version check.
func (s *receiptService) UpdateReceipt(ctx context.Context, req domain.UpdateReceiptRequest) (domain.ReceiptResponse, error) {
	receipt, err := s.receiptRepository.FindReceiptWithItems(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ReceiptResponse{}, domain.ErrReceiptNotFound
		}
		s.log.Error().Err(err).Uint("receipt_id", req.ID).Msg("loading receipt")
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}

	totals := CalculateReceiptTotals(req.ReceiptItems, req.Tax, req.Total)
	if !ValidateReceiptTotals(totals, DefaultTolerance) {
		return domain.ReceiptResponse{}, fmt.Errorf(
			"%w: items total %.2f plus tax %.2f is %.2f, provided total is %.2f",
			domain.ErrTotalsMismatch, totals.ItemsTotal, req.Tax, totals.CalculatedTotal, totals.ProvidedTotal,
		)
	}

	extractedDate, err := parseReceiptDate(req.Date)
	if err != nil {
		return domain.ReceiptResponse{}, domain.ErrInvalidDate
	}

	receipt.ExtractedDate = extractedDate
	receipt.ExtractedCurrency = req.Currency
	receipt.ExtractedVendorName = req.VendorName
	receipt.ExtractedTax = req.Tax
	receipt.ExtractedTotal = req.Total
	receipt.ExtractedItems = itemsSnapshot(req.ReceiptItems)
	receipt.IsValid = true

	items := make([]*entities.ExtractedItem, 0, len(req.ReceiptItems))
	for _, item := range req.ReceiptItems {
		items = append(items, &entities.ExtractedItem{
			ReceiptID: receipt.ID,
			ItemName:  item.ItemName,
			ItemCost:  item.ItemCost,
		})
	}

	if err := s.receiptRepository.UpdateReceipt(ctx, receipt, items); err != nil {
		s.log.Error().Err(err).Uint("receipt_id", receipt.ID).Msg("updating receipt")
		return domain.ReceiptResponse{}, domain.ErrPersistenceFailed
	}
	receipt.Items = items

	return buildReceiptResponse(receipt), nil
}

func (s *receiptService) OpenImage(ctx context.Context, id uint) (*entities.UploadedImage, io.ReadCloser, error) {
	image, err := s.receiptRepository.FindImageByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrImageNotFound
		}
		s.log.Error().Err(err).Uint("image_id", id).Msg("loading image")
		return nil, nil, domain.ErrPersistenceFailed
	}

	reader, err := s.store.Open(ctx, image.Path)
	if err != nil {
		s.log.Error().Err(err).Str("path", image.Path).Msg("opening image blob")
		return nil, nil, domain.ErrImageNotFound
	}
	return image, reader, nil
}

const dateLayout = "2006/01/02"

func parseReceiptDate(value string) (time.Time, error) {
	if date, err := time.Parse(dateLayout, value); err == nil {
		return date, nil
	}
	return time.Parse("2006-01-02", value)
}

func itemsSnapshot(items []domain.ReceiptItemPayload) string {
	if items == nil {
		items = []domain.ReceiptItemPayload{}
	}
	snapshot, _ := json.Marshal(items)
	return string(snapshot)
}

func buildReceiptResponse(receipt *entities.ExtractedReceipt) domain.ReceiptResponse {
	items := make([]domain.ReceiptItemResponse, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		items = append(items, domain.ReceiptItemResponse{
			ID:       item.ID,
			ItemName: item.ItemName,
			ItemCost: item.ItemCost,
		})
	}

	return domain.ReceiptResponse{
		ID:           receipt.ID,
		Date:         receipt.ExtractedDate.Format(dateLayout),
		Currency:     receipt.ExtractedCurrency,
		VendorName:   receipt.ExtractedVendorName,
		Tax:          receipt.ExtractedTax,
		Total:        receipt.ExtractedTotal,
		IsValid:      receipt.IsValid,
		ReceiptItems: items,
		ImageURL:     fmt.Sprintf("/images/%d", receipt.UploadedImageID),
	}
}
