package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"team-taskboard/handlers"
	"team-taskboard/logger"
	"team-taskboard/middleware"
	"team-taskboard/models"
	"team-taskboard/services"
	"team-taskboard/utils"
	"team-taskboard/workers"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	logger.Init()
	defer logger.Sync()

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024, // attachments
	})

	// Only Gateway requests allowed — no exceptions.
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Role, X-Team-ID, X-Service-Token",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.Board{},
		&models.List{},
		&models.Task{},
		&models.PointsHistoryEntry{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if os.Getenv("STORAGE_ACCOUNT_ID") != "" {
		if err := utils.InitStorage(); err != nil {
			log.Fatal("failed to init attachment storage:", err)
		}
	} else {
		log.Println("STORAGE_ACCOUNT_ID not set — attachment uploads disabled")
	}

	var rdb *redis.Client
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL:", err)
		}
		rdb = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set — leaderboard caching disabled")
	}

	guard := services.NewGuard()
	ledger := services.NewLedgerService(db, guard)
	teamService := services.NewTeamService(db, guard)
	boardService := services.NewBoardService(db, guard)
	taskService := services.NewTaskService(db, guard, ledger)
	leaderboardService := services.NewLeaderboardService(db, guard, rdb)

	handlers.SetupTeamRoutes(app, teamService)
	handlers.SetupBoardRoutes(app, boardService)
	handlers.SetupTaskRoutes(app, taskService)
	handlers.SetupPointsRoutes(app, ledger, leaderboardService, teamService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconcileInterval := 5 * time.Minute
	if v := os.Getenv("POINTS_RECONCILE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal("invalid POINTS_RECONCILE_INTERVAL:", err)
		}
		reconcileInterval = d
	}
	sched, err := services.StartPointsReconciler(db, reconcileInterval)
	if err != nil {
		log.Fatal("failed to start points reconciler:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	if identityURL := os.Getenv("IDENTITY_SERVICE_URL"); identityURL != "" {
		serviceToken := os.Getenv("TASKBOARD_SERVICE_TOKEN")
		syncWorker := workers.NewUserSyncWorker(db, identityURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("IDENTITY_SERVICE_URL not set — identity sync worker disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		if err := app.Listen(port); err != nil {
			log.Printf("server error: %v", err)
		}
	}()

	log.Printf("server running on http://localhost%s", port)

	<-ctx.Done()
	log.Println("shutting down server...")
	_ = app.Shutdown()
}
