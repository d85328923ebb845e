package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fitlink/fitlink-backend/internal/config"
	"github.com/fitlink/fitlink-backend/internal/domain"
	"github.com/fitlink/fitlink-backend/internal/feed"
	"github.com/fitlink/fitlink-backend/internal/handler"
	"github.com/fitlink/fitlink-backend/internal/middleware"
	"github.com/fitlink/fitlink-backend/internal/repository"
	"github.com/fitlink/fitlink-backend/internal/routes"
	"github.com/fitlink/fitlink-backend/internal/service"
	"github.com/fitlink/fitlink-backend/internal/ws"
	pkgcache "github.com/fitlink/fitlink-backend/pkg/cache"
	"github.com/fitlink/fitlink-backend/pkg/jwt"
	pkglogger "github.com/fitlink/fitlink-backend/pkg/logger"
	pkgredis "github.com/fitlink/fitlink-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Fitlink Messaging API
// @version         1.0
// @description     Direct messaging backend for the Fitlink fitness community
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.Init(env)
	pkglogger.Infof("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	configPath := getConfigPath()
	pkglogger.Infof("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := db.AutoMigrate(
		&domain.Member{},
		&domain.MemberBlock{},
		&domain.Conversation{},
		&domain.Participant{},
		&domain.Message{},
	); err != nil {
		pkglogger.Warnf("Auto migration warning: %v", err)
	}

	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warnf("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else {
		pkglogger.Info("Connected to Redis")
	}

	cacheService := pkgcache.NewService(redisClient)
	if !cacheService.IsAvailable() {
		pkglogger.Warnf("Cache unavailable; gate verdicts will not be cached")
	}

	// Change feed: local dispatch plus Redis pub/sub fan-out across instances
	changeFeed := feed.NewFeed(redisClient)
	go changeFeed.Run()

	wsHub := ws.NewHub(changeFeed)
	go wsHub.Run()

	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessMinutes,
		cfg.JWT.RefreshMinutes,
	)

	memberRepo := repository.NewMemberRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	convRepo := repository.NewConversationRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	gateService := service.NewGateService(blockRepo, cacheService)
	blockService := service.NewBlockService(blockRepo, memberRepo, cacheService)
	resolverService := service.NewResolverService(convRepo, changeFeed)
	inboxService := service.NewInboxService(convRepo, msgRepo, memberRepo, blockRepo, changeFeed)
	threadService := service.NewThreadService(memberRepo, convRepo, msgRepo, gateService, resolverService, changeFeed)

	chatHandler := handler.NewChatHandler(inboxService, threadService)
	blockHandler := handler.NewBlockHandler(blockService)
	memberHandler := handler.NewMemberHandler(memberRepo)
	wsHandler := handler.NewWSHandler(wsHub, cfg.CORS.AllowedOrigins)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	allowOrigins := cfg.CORS.AllowedOrigins
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))
	router.Use(middleware.Metrics())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "fitlink-backend",
			"time":    time.Now().Unix(),
		})
	})

	routes.Setup(router, chatHandler, blockHandler, memberHandler, wsHandler, jwtManager)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		pkglogger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	pkglogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Errorf("Server forced to shutdown: %v", err)
	}

	wsHub.Stop()
	changeFeed.Stop()
	if redisClient != nil {
		_ = redisClient.Close()
	}
	pkglogger.Info("Server exited")
}

// initDB connects to MySQL via GORM
func initDB(cfg *config.Config) (*gorm.DB, error) {
	dsnCfg := mysqldriver.NewConfig()
	dsnCfg.User = cfg.Database.User
	dsnCfg.Passwd = cfg.Database.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port)
	dsnCfg.DBName = cfg.Database.Name
	dsnCfg.ParseTime = true
	dsnCfg.Loc = time.Local
	dsnCfg.Params = map[string]string{"charset": cfg.Database.Charset}
	dsn := dsnCfg.FormatDSN()

	logLevel := gormlogger.Silent
	if cfg.Server.Env == "local" || cfg.Server.Env == "development" {
		logLevel = gormlogger.Warn
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
