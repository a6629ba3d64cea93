package config

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/namph-hanoi/genai-image-extractor-backend/internal/api/handlers"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/api/routes"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/middleware"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/utils"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/utils/storage"
	"github.com/namph-hanoi/genai-image-extractor-backend/pkg/gemini"
	"github.com/namph-hanoi/genai-image-extractor-backend/pkg/receipt"
)

func NewApp(db *gorm.DB, extractor gemini.Extractor, appLog zerolog.Logger) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// blob store: S3 when a bucket is configured, local disk otherwise
	var store storage.Storage
	if utils.GetConfig("AWS_S3_BUCKET") != "" {
		store, err = storage.NewAwsS3(context.Background())
	} else {
		store, err = storage.NewLocalStorage(utils.GetConfig("UPLOAD_DIR"))
	}
	if err != nil {
		return nil, err
	}

	// Repository
	receiptRepository := receipt.NewReceiptRepository(db)

	// Service
	receiptService := receipt.NewReceiptService(receiptRepository, extractor, store, appLog)

	// Handler
	receiptHandler := handlers.NewReceiptHandler(receiptService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		ReceiptHandler: receiptHandler,
		Middleware:     middlewares,
	}
	routesConfig.Setup()
	return app, nil
}
