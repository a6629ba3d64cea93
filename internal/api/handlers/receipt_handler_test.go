package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
	"github.com/namph-hanoi/genai-image-extractor-backend/entities"
)

type fakeReceiptService struct {
	extractRes domain.ReceiptResponse
	extractErr error
	updateRes  domain.ReceiptResponse
	updateErr  error
	updateReq  *domain.UpdateReceiptRequest
}

func (f *fakeReceiptService) ExtractReceipt(_ context.Context, _ domain.ExtractReceiptRequest) (domain.ReceiptResponse, error) {
	return f.extractRes, f.extractErr
}

func (f *fakeReceiptService) UpdateReceipt(_ context.Context, req domain.UpdateReceiptRequest) (domain.ReceiptResponse, error) {
	f.updateReq = &req
	return f.updateRes, f.updateErr
}

func (f *fakeReceiptService) OpenImage(_ context.Context, id uint) (*entities.UploadedImage, io.ReadCloser, error) {
	if id != 1 {
		return nil, nil, domain.ErrImageNotFound
	}
	image := &entities.UploadedImage{ID: 1, Name: "receipt.jpg", Path: "upload/receipt.jpg"}
	return image, io.NopCloser(bytes.NewReader([]byte("image"))), nil
}

func newTestApp(service *fakeReceiptService) *fiber.App {
	app := fiber.New()
	handler := NewReceiptHandler(service, validator.New())
	app.Post("/extract-receipt-details", handler.ExtractReceiptDetails)
	app.Patch("/extract-receipt-details", handler.UpdateReceipt)
	app.Get("/images/:id", handler.GetImage)
	return app
}

func multipartImage(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image data"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestExtractReceiptDetails_Success(t *testing.T) {
	service := &fakeReceiptService{
		extractRes: domain.ReceiptResponse{ID: 1, VendorName: "STOP&SHOP", IsValid: true},
	}
	app := newTestApp(service)

	body, contentType := multipartImage(t, "receipt.jpg")
	req := httptest.NewRequest(http.MethodPost, "/extract-receipt-details", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var envelope struct {
		Status string                 `json:"status"`
		Data   domain.ReceiptResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, "STOP&SHOP", envelope.Data.VendorName)
}

func TestExtractReceiptDetails_MissingFile(t *testing.T) {
	app := newTestApp(&fakeReceiptService{})

	req := httptest.NewRequest(http.MethodPost, "/extract-receipt-details", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestExtractReceiptDetails_GenericFailureHidesCause(t *testing.T) {
	service := &fakeReceiptService{extractErr: domain.ErrExtractionFailed}
	app := newTestApp(service)

	body, contentType := multipartImage(t, "receipt.jpg")
	req := httptest.NewRequest(http.MethodPost, "/extract-receipt-details", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "gemini")
}

func TestExtractReceiptDetails_InvalidFormatIsBadRequest(t *testing.T) {
	service := &fakeReceiptService{extractErr: domain.ErrInvalidImageFormat}
	app := newTestApp(service)

	body, contentType := multipartImage(t, "receipt.txt")
	req := httptest.NewRequest(http.MethodPost, "/extract-receipt-details", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func updatePayload() map[string]interface{} {
	return map[string]interface{}{
		"id":          1,
		"date":        "2021/03/26",
		"currency":    "USD",
		"vendor_name": "STOP&SHOP",
		"total":       5.50,
		"tax":         0.50,
		"receipt_items": []map[string]interface{}{
			{"item_name": "a", "item_cost": 5.00},
		},
	}
}

func patchJSON(t *testing.T, app *fiber.App, payload map[string]interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, "/extract-receipt-details", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestUpdateReceipt_Success(t *testing.T) {
	service := &fakeReceiptService{
		updateRes: domain.ReceiptResponse{ID: 1, VendorName: "STOP&SHOP", IsValid: true},
	}
	app := newTestApp(service)

	resp := patchJSON(t, app, updatePayload())
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, service.updateReq)
	assert.Equal(t, uint(1), service.updateReq.ID)
}

func TestUpdateReceipt_NotFound(t *testing.T) {
	service := &fakeReceiptService{updateErr: domain.ErrReceiptNotFound}
	app := newTestApp(service)

	resp := patchJSON(t, app, updatePayload())
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpdateReceipt_ToleranceRejectionIsBadRequest(t *testing.T) {
	service := &fakeReceiptService{updateErr: domain.ErrTotalsMismatch}
	app := newTestApp(service)

	resp := patchJSON(t, app, updatePayload())
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateReceipt_DTOValidation(t *testing.T) {
	service := &fakeReceiptService{}
	app := newTestApp(service)

	lowercase := updatePayload()
	lowercase["currency"] = "usd"
	resp := patchJSON(t, app, lowercase)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	tooLong := updatePayload()
	tooLong["currency"] = "USDD"
	resp = patchJSON(t, app, tooLong)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	noItems := updatePayload()
	noItems["receipt_items"] = []map[string]interface{}{}
	resp = patchJSON(t, app, noItems)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	negativeTax := updatePayload()
	negativeTax["tax"] = -1.00
	resp = patchJSON(t, app, negativeTax)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assert.Nil(t, service.updateReq)
}

func TestGetImage_Success(t *testing.T) {
	app := newTestApp(&fakeReceiptService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/images/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get(fiber.HeaderContentType))
}

func TestGetImage_NotFound(t *testing.T) {
	app := newTestApp(&fakeReceiptService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/images/99", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetImage_BadID(t *testing.T) {
	app := newTestApp(&fakeReceiptService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/images/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
