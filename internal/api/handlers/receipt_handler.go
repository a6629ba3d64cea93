package handlers

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/api/presenters"
	"github.com/namph-hanoi/genai-image-extractor-backend/pkg/receipt"
)

type (
	ReceiptHandler interface {
		ExtractReceiptDetails(c *fiber.Ctx) error
		UpdateReceipt(c *fiber.Ctx) error
		GetImage(c *fiber.Ctx) error
	}

	receiptHandler struct {
		receiptService receipt.ReceiptService
		validator      *validator.Validate
	}
)

func NewReceiptHandler(receiptService receipt.ReceiptService, validator *validator.Validate) ReceiptHandler {
	return &receiptHandler{
		receiptService: receiptService,
		validator:      validator,
	}
}

func (h *receiptHandler) ExtractReceiptDetails(c *fiber.Ctx) error {
	req := new(domain.ExtractReceiptRequest)

	file, err := c.FormFile("image")
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, errors.New("no file provided"))
	}
	req.Image = file

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	res, err := h.receiptService.ExtractReceipt(c.Context(), *req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImageFormat) {
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedExtractReceipt, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedExtractReceipt, domain.ErrExtractionFailed)
	}

	return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessExtractReceipt)
}

func (h *receiptHandler) UpdateReceipt(c *fiber.Ctx) error {
	req := new(domain.UpdateReceiptRequest)

	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateReceipt, err)
	}

	res, err := h.receiptService.UpdateReceipt(c.Context(), *req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReceiptNotFound):
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedUpdateReceipt, err)
		case errors.Is(err, domain.ErrTotalsMismatch), errors.Is(err, domain.ErrInvalidDate):
			return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedUpdateReceipt, err)
		default:
			return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedUpdateReceipt, domain.ErrPersistenceFailed)
		}
	}

	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessUpdateReceipt)
}

func (h *receiptHandler) GetImage(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetImage, domain.ErrParseID)
	}

	image, reader, err := h.receiptService.OpenImage(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrImageNotFound) {
			return presenters.ErrorResponse(c, fiber.StatusNotFound, domain.MessageFailedGetImage, err)
		}
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGetImage, domain.ErrPersistenceFailed)
	}

	c.Set(fiber.HeaderContentType, imageContentType(image.Name))
	return c.SendStream(reader)
}

func imageContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
