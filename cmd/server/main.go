package main

import (
	"log"
	"os"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stockapp_backend/internal/app/di"
	"stockapp_backend/internal/app/router"
	"stockapp_backend/internal/feature/stocks/adapters/eodstore"
	"stockapp_backend/internal/feature/stocks/transport/handler"
	"stockapp_backend/internal/feature/stocks/usecase"
	"stockapp_backend/internal/platform/cache"
	infradb "stockapp_backend/internal/platform/db"
	infraredis "stockapp_backend/internal/platform/redis"
	"stockapp_backend/internal/shared/ratelimiter"
)

func main() {
	// db（管理用インジェストで使用）
	db := infradb.OpenDB()

	// Redis（未接続なら共有キャッシュなしで継続）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(); err != nil {
		log.Println("[WARN] Redis unavailable. Running without shared cache.")
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Println("[ERROR] Failed to close Redis client:", err)
			}
		}()
	}

	// 上流フェッチャー（STOCK_PROVIDERで選択）
	fetcher := di.NewSymbolFetcher()

	// インプロセスのリクエストキャッシュ。CACHE_TTL未指定ならプロセス稼働中
	// ずっと保持する。
	var ttl time.Duration
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		} else {
			log.Printf("[WARN] invalid CACHE_TTL %q: %v", v, err)
		}
	}
	maxConcurrency := 0
	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		maxConcurrency, _ = strconv.Atoi(v)
	}

	requestCache := cache.NewRequestCache(ttl)
	stocksUC := usecase.NewStocksUsecase(fetcher, requestCache, maxConcurrency)

	// Redisキャッシュでラップ（インスタンス間で集約結果を共有）
	cachedStocks := cache.NewCachingStockRepository(rdb, ttl, stocksUC, "stocks")

	// インジェスト
	store := eodstore.NewEodRepository(db)
	limiter := ratelimiter.NewRateLimiter(5, time.Minute)
	ingestUC := usecase.NewIngestUsecase(fetcher, store, limiter)

	// Handler
	stocksH := handler.NewStockHandler(cachedStocks)
	ingestH := handler.NewIngestHandler(ingestUC)

	// ルータ生成
	r := router.NewRouter(stocksH, ingestH)

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		log.Println("[WARN] JWT_SECRET is not set. Admin endpoints will reject all requests.")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
