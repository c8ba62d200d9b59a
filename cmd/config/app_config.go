package config

import (
	"os"
	"strconv"
	"time"

	"kalorikollen/internal/api/handlers"
	"kalorikollen/internal/api/routes"
	"kalorikollen/internal/middleware"
	"kalorikollen/internal/utils"
	"kalorikollen/internal/utils/mailing"
	"kalorikollen/internal/utils/storage"
	"kalorikollen/pkg/barcode"
	"kalorikollen/pkg/coach"
	"kalorikollen/pkg/estimator"
	"kalorikollen/pkg/gemini"
	"kalorikollen/pkg/jwt"
	"kalorikollen/pkg/ledger"
	"kalorikollen/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

const maxBodySize = 12 * 1024 * 1024

// NewLedgerService builds the ledger service and its outbound clients from
// configuration. It is shared by the HTTP API and the MCP server.
func NewLedgerService(provider store.Provider) ledger.LedgerService {
	geminiClient := gemini.NewClient(utils.GetConfig("GEMINI_API_KEY"), utils.GetConfig("GEMINI_MODEL"))

	var est estimator.Estimator
	switch name := utils.GetConfig("ESTIMATOR_PROVIDER"); name {
	case estimator.ProviderClaude:
		est = estimator.NewClaudeEstimator(utils.GetConfig("ANTHROPIC_API_KEY"), utils.GetConfig("ANTHROPIC_MODEL"))
	case estimator.ProviderGemini:
		est = estimator.NewGeminiEstimator(geminiClient)
	default:
		log.Warnf("unknown ESTIMATOR_PROVIDER %q, using %s", name, estimator.ProviderGemini)
		est = estimator.NewGeminiEstimator(geminiClient)
	}

	// A nil *AwsS3 must not reach the service as a non-nil interface.
	var photos ledger.PhotoUploader
	if s3 := storage.NewAwsS3(); s3 != nil {
		photos = s3
	}

	allowMealDelete, _ := strconv.ParseBool(utils.GetConfig("ALLOW_MEAL_DELETE"))

	return ledger.NewLedgerService(
		ledger.NewLedgerRepository(provider),
		est,
		barcode.NewOpenFoodFacts(utils.GetConfig("OPENFOODFACTS_URL")),
		coach.NewCoach(geminiClient),
		photos,
		allowMealDelete,
	)
}

func NewApp(ledgerService ledger.LedgerService) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         maxBodySize,
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
		TimeZone:   time.Local.String(),
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// Service
	jwtService, err := jwt.NewJWTService()
	if err != nil {
		return nil, err
	}

	// Handler
	deviceHandler := handlers.NewDeviceHandler(jwtService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService, validator, mailing.SendMail)

	// routes
	routesConfig := routes.Config{
		App:           app,
		DeviceHandler: deviceHandler,
		LedgerHandler: ledgerHandler,
		Middleware:    middlewares,
		JWTService:    jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
