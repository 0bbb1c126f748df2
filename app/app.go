package app

import (
	"context"
	"log"
	"time"

	"library-management-api/config"
	"library-management-api/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// 简化别名，便于 handlers 调用
type Ctx = gin.Context
type H = gin.H

// App 聚合各依赖
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	Config Config
}

// Config 从环境变量读取
type Config struct {
	Port        string
	RedisAddr   string
	RedisPwd    string
	WebOrigin   string
	FrontendURL string
	TokenTTL    time.Duration // 0 = tokens only die by revocation
	SeedDB      bool
}

func MustNew() *App {
	cfg := loadConfig()

	// --- DB: Postgres ---
	dbConn := db.ConnectDB()

	// --- Redis ---
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis: %v", err)
	}

	// --- Gin ---
	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{Router: r, DB: dbConn, RDB: rdb, Config: cfg}
}

func (a *App) Close() { _ = a.RDB.Close() }

func loadConfig() Config {
	ttl := time.Duration(config.GetInt("TOKEN_TTL_SECONDS", 0)) * time.Second
	origin := config.Get("WEB_ORIGIN", "http://localhost:3000")
	return Config{
		Port:        config.Get("PORT", "8080"),
		RedisAddr:   config.Get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:    config.Get("REDIS_PASSWORD", ""),
		WebOrigin:   origin,
		FrontendURL: config.Get("FRONTEND_URL", origin),
		TokenTTL:    ttl,
		SeedDB:      config.GetBool("SEED_DB", false),
	}
}
