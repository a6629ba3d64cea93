package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"

	"github.com/namph-hanoi/genai-image-extractor-backend/cmd/config"
	migration "github.com/namph-hanoi/genai-image-extractor-backend/cmd/database/migrate"
	"github.com/namph-hanoi/genai-image-extractor-backend/internal/utils"
	"github.com/namph-hanoi/genai-image-extractor-backend/pkg/gemini"
)

func main() {
	appLog := zerolog.New(os.Stderr).With().Timestamp().Logger()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		appLog.Fatal().Err(err).Msg("connecting to database")
	}

	if err := migration.Migrate(db); err != nil {
		appLog.Fatal().Err(err).Msg("running migrations")
	}

	extractor, err := gemini.NewExtractor(
		context.Background(),
		utils.GetConfig("GEMINI_API_KEY"),
		utils.GetConfig("GEMINI_MODEL"),
		appLog,
	)
	if err != nil {
		appLog.Fatal().Err(err).Msg("creating gemini extractor")
	}
	defer extractor.Close()

	app, err := config.NewApp(db, extractor, appLog)
	if err != nil {
		appLog.Fatal().Err(err).Msg("building application")
	}

	port := utils.GetConfig("PORT")
	if port == "" {
		port = "3000"
	}
	if err := app.Listen(":" + port); err != nil {
		appLog.Fatal().Err(err).Msg("server stopped")
	}
}
