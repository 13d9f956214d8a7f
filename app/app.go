package app

import (
	"context"
	"os"
	"time"

	"gin_sqlite_equip_tool/cache"
	"gin_sqlite_equip_tool/config"
	"gin_sqlite_equip_tool/db"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
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
	Log    *zap.Logger
	Meta   *cache.MetaCache
	Config config.Config
}

func MustNew() *App {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}

	// --- DB: SQLite ---
	dbConn := db.ConnectDB(cfg.DBPath, logger)

	// --- Redis (optional meta cache) ---
	var rdb *redis.Client
	var meta *cache.MetaCache
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPwd, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, meta cache disabled", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			meta = cache.New(rdb, cfg.CacheTTL)
		}
	}

	// --- Gin ---
	r := gin.New()
	r.Use(RequestLogger(logger), gin.Recovery())
	useCORS(r, cfg.WebOrigin)
	if _, err := os.Stat("templates"); err == nil {
		r.LoadHTMLGlob("templates/*.html")
	}

	return &App{
		Router: r, DB: dbConn, RDB: rdb, Log: logger, Meta: meta, Config: cfg,
	}
}

func (a *App) Close() {
	if a.RDB != nil {
		_ = a.RDB.Close()
	}
	_ = a.Log.Sync()
}
