package api

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/SundayYogurt/bursary_service/config"
	"github.com/SundayYogurt/bursary_service/infra/database"
	"github.com/SundayYogurt/bursary_service/infra/queue"
	"github.com/SundayYogurt/bursary_service/internal/api/rest/handlers"
	"github.com/SundayYogurt/bursary_service/internal/api/rest/middleware"
	"github.com/SundayYogurt/bursary_service/internal/clients/paystack"
	"github.com/SundayYogurt/bursary_service/internal/helper"
	"github.com/SundayYogurt/bursary_service/internal/helper/utils"
	"github.com/SundayYogurt/bursary_service/internal/interfaces"
	"github.com/SundayYogurt/bursary_service/internal/metrics"
	"github.com/SundayYogurt/bursary_service/internal/notify"
	"github.com/SundayYogurt/bursary_service/internal/repository"
	"github.com/SundayYogurt/bursary_service/internal/services"
	"github.com/SundayYogurt/bursary_service/pkg/cloudinary"
)

const (
	bodyLimit      = 6 * 1024 * 1024
	notifierBuffer = 256
	shutdownGrace  = 15 * time.Second
)

// Deps are the collaborators NewApp wires into handlers. Verifier and
// Uploader may be nil when the integration is not configured.
type Deps struct {
	Config   config.Config
	Repos    *repository.Repositories
	Notifier interfaces.Notifier
	Verifier interfaces.PaymentVerifier
	Uploader interfaces.Uploader
}

func errorHandler(ctx *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		log.WithField("path", ctx.Path()).Errorf("unhandled error: %v", err)
		return utils.ResponseError(ctx, code, "internal server error")
	}
	return utils.ResponseError(ctx, code, err.Error())
}

// NewApp assembles the fiber application without opening any connections.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler,
	})

	// ---------- CORS + metrics ----------
	origins := cfg.BaseURL
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		AllowCredentials: origins != "*", // fiber rejects credentials with a wildcard origin
	}))
	app.Use(middleware.Metrics())

	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	authHelper := helper.SetupAuth(cfg.AccessSecret, cfg.TokenTTL)

	// ---------- Services ----------
	authSvc := services.NewAuthService(d.Repos, authHelper, notifier, cfg.AdminNotifyEmail)
	appSvc := services.NewApplicationService(d.Repos, notifier, cfg.AdminNotifyEmail)
	assessmentSvc := services.NewAssessmentService(d.Repos)
	adminSvc := services.NewAdminService(d.Repos, notifier)
	cycleSvc := services.NewCycleService(d.Repos.Cycles)
	financeSvc := services.NewFinanceService(d.Repos, d.Verifier, notifier)
	reportSvc := services.NewReportService(d.Repos)

	limiter := middleware.NewIPLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	guards := middleware.NewGuards(authHelper, authSvc, limiter.Handler())

	// ---------- Handlers ----------
	handlers.NewAuthHandler(authSvc, authHelper.TTL, cfg.IsProd()).SetupRoutes(app, guards)
	handlers.NewApplyHandler(appSvc).SetupRoutes(app, guards)
	handlers.NewApplicationHandler(appSvc).SetupRoutes(app, guards)
	handlers.NewAssessmentHandler(assessmentSvc).SetupRoutes(app, guards)
	handlers.NewAdminUserHandler(adminSvc).SetupRoutes(app, guards)
	handlers.NewCycleHandler(cycleSvc).SetupRoutes(app, guards)
	handlers.NewFinanceHandler(financeSvc).SetupRoutes(app, guards)
	handlers.NewReportHandler(reportSvc).SetupRoutes(app, guards)
	handlers.NewUploadHandler(d.Uploader).SetupRoutes(app, guards)

	// ---------- Health + metrics ----------
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return app
}

func StartServer(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log.Printf("KafkaBroker=%q KafkaTopic=%q", cfg.KafkaBroker, cfg.KafkaTopic)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- DB ----------
	db, err := database.Open(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if err := database.SeedCycle(ctx, db, time.Now().UTC()); err != nil {
		return err
	}

	// ---------- Infra ----------
	var notifier interfaces.Notifier = notify.LogNotifier{}
	producer := queue.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic, cfg.KafkaUsername, cfg.KafkaPassword)
	var kafkaNotifier *notify.KafkaNotifier
	if producer != nil {
		defer producer.Close()
		kafkaNotifier = notify.NewKafkaNotifier(producer, notifierBuffer)
		kafkaNotifier.Start()
		notifier = kafkaNotifier
	} else {
		log.Warn("KAFKA_BROKER not set; notifications are logged only")
	}

	var uploader interfaces.Uploader
	if cld, err := cloudinary.New(cfg.CloudinaryUrl); err != nil {
		log.Warnf("cloudinary disabled: %v", err)
	} else {
		uploader = cloudinary.NewCloudinaryUploader(cld)
	}

	var verifier interfaces.PaymentVerifier
	if cfg.PaystackSecretKey != "" {
		verifier = paystack.New(cfg.PaystackSecretKey, cfg.PaystackBaseURL)
	} else {
		log.Warn("PAYSTACK_SECRET_KEY not set; donations cannot be verified")
	}

	app := NewApp(Deps{
		Config:   cfg,
		Repos:    repository.New(db),
		Notifier: notifier,
		Verifier: verifier,
		Uploader: uploader,
	})

	// ---------- Listen ----------
	errCh := make(chan error, 1)
	go func() {
		log.Println("listening on", cfg.ServerPort)
		errCh <- app.Listen(cfg.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
	if kafkaNotifier != nil {
		if err := kafkaNotifier.Close(shutdownCtx); err != nil {
			log.Errorf("notifier drain: %v", err)
		}
	}
	return nil
}
