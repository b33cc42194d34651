package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/evspresso/walter/audit"
	"github.com/evspresso/walter/config"
	"github.com/evspresso/walter/controller"
	"github.com/evspresso/walter/dao"
	"github.com/evspresso/walter/db"
	"github.com/evspresso/walter/discord"
	logger "github.com/evspresso/walter/logging"
	"github.com/evspresso/walter/mojang"
	"github.com/evspresso/walter/rcon"
	"github.com/evspresso/walter/router"
	"github.com/evspresso/walter/service"
	"github.com/evspresso/walter/util"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("paths.logDir"))
	defer logger.Sync()

	token := config.GetString("discord.token")
	if token == "" {
		logger.Fatal("Couldn't get Discord API token from env vars")
	}
	guildID := config.GetString("discord.guildID")
	if guildID == "" {
		logger.Fatal("Couldn't get Guild ID from env vars")
	}
	jwtSecret := config.GetString("auth.jwtSecret")
	if jwtSecret == "" {
		logger.Fatal("Couldn't get JWT secret from env vars")
	}

	// Initialize SQLite; closed last so every in-flight ledger write
	// commits before the process exits.
	if err := db.InitSQLite(); err != nil {
		logger.Fatal("Failed to initialize whitelist database", zap.Error(err))
	}
	defer db.CloseSQLite()

	// Redis is optional; it only caches Mojang lookups
	redisEnabled := config.GetBool("redis.enabled")
	if redisEnabled {
		if err := db.InitRedis(); err != nil {
			logger.Fatal("Failed to initialize Redis", zap.Error(err))
		}
		defer db.CloseRedis()
	}

	// Initialize EventBus
	eventBus := util.NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eventBus.Start(ctx)

	// Initialize services and utilities
	validationUtil := util.NewValidationUtil()
	cacheService := util.NewCacheService(redisEnabled)
	notificationService := util.NewNotificationService()

	var auditRepository audit.Repository
	if config.GetBool("elasticsearch.enabled") {
		esRepository, err := audit.NewElasticsearchRepository(config.GetString("elasticsearch.url"))
		if err != nil {
			logger.Fatal("Failed to initialize Elasticsearch audit repository", zap.Error(err))
		}
		auditRepository = esRepository
	} else {
		auditRepository = audit.NewLogRepository()
	}
	auditService := audit.NewService(auditRepository)

	// Initialize DAOs
	ledgerDAO := dao.NewLedgerDAO(db.SQLite)

	// Connect to the Minecraft server
	console, err := rcon.Connect(config.GetString("rcon.address"), config.GetString("rcon.secret"))
	if err != nil {
		logger.Fatal("Failed to connect to RCON", zap.Error(err))
	}

	mojangClient := mojang.NewClient(
		config.GetString("mojang.baseURL"),
		config.GetDuration("mojang.timeout"),
		cacheService,
	)

	// Initialize services
	whitelistService := service.NewWhitelistService(
		ledgerDAO,
		mojangClient,
		console,
		validationUtil,
		auditService,
		notificationService,
		eventBus,
	)

	// Initialize controllers
	whitelistController := controller.NewWhitelistController(whitelistService, auditService)

	// Start the Discord bot
	bot, err := discord.NewBot(token, guildID, whitelistService)
	if err != nil {
		logger.Fatal("Failed to create Discord bot", zap.Error(err))
	}
	if err := bot.Start(); err != nil {
		logger.Fatal("Failed to start Discord bot", zap.Error(err))
	}

	// Set up the ops API
	gin.SetMode(gin.ReleaseMode)
	engine := router.SetupRouter(
		whitelistController,
		jwtSecret,
		100,
		time.Minute, // 100 requests per minute
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engine,
	}

	// Start the ops API in a goroutine
	go func() {
		logger.Info("Starting ops API", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start ops API", zap.Error(err))
		}
	}()

	// Wait for a termination signal, then shut down in order: stop taking
	// new requests, then close the RCON session, then the deferred
	// database closes run.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down Walter...")

	bot.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops API forced to shutdown", zap.Error(err))
	}

	if err := console.Close(); err != nil {
		logger.Error("Error during RCON teardown", zap.Error(err))
	}

	logger.Info("Walter exiting")
}
