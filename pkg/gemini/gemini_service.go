package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/namph-hanoi/genai-image-extractor-backend/domain"
)

const extractionPrompt = `Extract the texts in the uploaded image, convert and return the extracted into a json structure which is comprised of the following properties and formats:
- date (string of YYYY/MM/DD)
- vendor (string)
- currency (string 3-character currency code)
- receipt_items (array of items, each item has properties of item_name and item_cost in string and number respectively)
- tax (number)
- total (number)`

const extractionTimeout = 30 * time.Second

type (
	// Extractor turns raw receipt image bytes into a structured guess.
	Extractor interface {
		ExtractReceiptDetails(ctx context.Context, image []byte) (domain.ReceiptExtraction, error)
		Close() error
	}

	geminiExtractor struct {
		client *genai.Client
		model  *genai.GenerativeModel
		log    zerolog.Logger
	}
)

// NewExtractor builds the Gemini client once at process start; the returned
// value is passed into the receipt service rather than held as a global.
func NewExtractor(ctx context.Context, apiKey, modelName string, log zerolog.Logger) (Extractor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &geminiExtractor{
		client: client,
		model:  client.GenerativeModel(modelName),
		log:    log,
	}, nil
}

// ExtractReceiptDetails submits one multimodal request with the fixed prompt
// and the image bytes tagged as JPEG. Single attempt, no retry; the deadline
// bounds how long a caller can be held up by the model.
func (g *geminiExtractor) ExtractReceiptDetails(ctx context.Context, image []byte) (domain.ReceiptExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, extractionTimeout)
	defer cancel()

	resp, err := g.model.GenerateContent(ctx,
		genai.ImageData("jpeg", image),
		genai.Text(extractionPrompt),
	)
	if err != nil {
		g.log.Error().Err(err).Msg("gemini request failed")
		return domain.ReceiptExtraction{}, fmt.Errorf("%w: generate content: %v", domain.ErrExtractionFailed, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.ReceiptExtraction{}, fmt.Errorf("%w: empty model response", domain.ErrExtractionFailed)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return decodeReceiptJSON(sb.String())
}

func (g *geminiExtractor) Close() error {
	return g.client.Close()
}

// decodeReceiptJSON strips an optional ```json code fence from the response
// text and parses the five-field receipt structure. Stripping is a no-op when
// the fence is absent.
func decodeReceiptJSON(text string) (domain.ReceiptExtraction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var extraction domain.ReceiptExtraction
	if err := json.Unmarshal([]byte(text), &extraction); err != nil {
		return domain.ReceiptExtraction{}, fmt.Errorf("%w: parse model response: %v", domain.ErrExtractionFailed, err)
	}

	if extraction.Date == "" || extraction.Vendor == "" || extraction.Currency == "" {
		return domain.ReceiptExtraction{}, fmt.Errorf("%w: model response is missing required fields", domain.ErrExtractionFailed)
	}

	return extraction, nil
}
