package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/fbuehler/autopost-api/configs"
	"github.com/fbuehler/autopost-api/internal/api/handlers"
	"github.com/fbuehler/autopost-api/internal/api/middleware"
	job "github.com/fbuehler/autopost-api/internal/jobs"
	"github.com/fbuehler/autopost-api/internal/metrics"
	"github.com/fbuehler/autopost-api/internal/notifier"
	"github.com/fbuehler/autopost-api/internal/repository"
	"github.com/fbuehler/autopost-api/internal/service"
	"github.com/fbuehler/autopost-api/internal/uploadpost"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	if err := repository.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Source",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	accountRepo := repository.NewAccountRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	jobRepo := repository.NewScheduledJobRepository(db)

	uploadClient := uploadpost.NewClient(cfg.UploadPostAPIURL, cfg.UploadPostAPIKey)

	assetService, err := service.NewAssetService(*cfg)
	if err != nil {
		log.Fatalf("Failed to initialize asset storage: %v", err)
	}
	scheduleService := service.NewScheduleService(accountRepo)
	trackerService := service.NewTrackerService(videoRepo, accountRepo, jobRepo, scheduleService)
	inferenceService := service.NewInferenceService(*cfg)

	notify := notifier.NewLog()
	if cfg.BotToken != "" {
		tg, err := notifier.NewTelegram(cfg.BotToken)
		if err != nil {
			log.Printf("Warning: Telegram notifier unavailable, falling back to logs: %v", err)
		} else {
			notify = tg
		}
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	app.Get("/metrics", adaptor.HTTPHandler(collector.Handler()))

	jobChecker := job.NewJobCheckerJob(jobRepo, videoRepo, accountRepo, scheduleService,
		uploadClient, notify, collector, cfg.HistoryLimit)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)
	app.Use(authMiddleware.AuthMiddleware())

	upload := handlers.NewUploadHandler(uploadClient, assetService, scheduleService, trackerService, collector)
	app.Post("/upload-video", upload.UploadVideo)

	jobs := handlers.NewJobHandler(jobChecker)
	app.Post("/check-jobs", jobs.CheckJobs)

	account := handlers.NewAccountHandler(accountRepo)
	app.Post("/add-account", account.AddAccount)
	app.Patch("/update-account", account.UpdateAccount)
	app.Get("/list-accounts", account.ListAccounts)
	app.Delete("/delete-account", account.DeleteAccount)

	video := handlers.NewVideoHandler(videoRepo, jobRepo)
	app.Post("/add-video", video.AddVideo)
	app.Get("/list-videos", video.ListVideos)
	app.Post("/track-job", video.TrackJob)

	group := handlers.NewGroupHandler(groupRepo)
	app.Post("/create-group", group.CreateGroup)
	app.Get("/list-groups", group.ListGroups)
	app.Get("/get-group", group.GetGroup)
	app.Patch("/add-to-group", group.AddToGroup)
	app.Delete("/delete-group", group.DeleteGroup)
	app.Post("/add-group-video", group.AddGroupVideo)
	app.Get("/group-videos", group.GroupVideos)

	inference := handlers.NewInferenceHandler(inferenceService)
	app.Post("/inference", inference.Complete)
	app.Get("/models", inference.ListModels)

	c := cron.New()
	c.AddFunc("@every 00h05m00s", jobChecker.CheckJobs)
	c.Start()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
