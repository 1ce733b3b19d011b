package main

import (
	"context"
	"log"
	"os"
	"time"

	"stockapp_backend/internal/app/di"
	"stockapp_backend/internal/feature/stocks/adapters/eodstore"
	"stockapp_backend/internal/feature/stocks/usecase"
	"stockapp_backend/internal/platform/db"
	"stockapp_backend/internal/shared/ratelimiter"
)

func main() {
	db := db.OpenDB()
	fetcher := di.NewSymbolFetcher()
	store := eodstore.NewEodRepository(db)
	limiter := ratelimiter.NewRateLimiter(5, time.Minute)
	uc := usecase.NewIngestUsecase(fetcher, store, limiter)

	symbols := usecase.SplitSymbols(os.Getenv("INGEST_SYMBOLS"))
	if len(symbols) == 0 {
		log.Fatal("INGEST_SYMBOLS is empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := uc.IngestAll(ctx, symbols); err != nil {
		log.Fatal(err)
	}
	log.Println("ingest ok")
}
