package usecase

import (
	"context"
	"log/slog"

	"stockapp_backend/internal/feature/stocks/domain/entity"
	"stockapp_backend/internal/shared/ratelimiter"
)

// EodStore は正規化済みEODレコードの永続化レイヤーを抽象化します。
type EodStore interface {
	// UpsertBatch はレコードを一括で挿入または更新します。
	UpsertBatch(ctx context.Context, records []entity.EodRecord) error
}

// IngestUsecase は上流プロバイダーからEOD履歴を取得し、ローカルストアへ
// 永続化するユースケースを定義します。クエリ経路はこのストアを参照しません。
type IngestUsecase struct {
	fetcher     SymbolFetcher
	store       EodStore
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(fetcher SymbolFetcher, store EodStore, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{fetcher: fetcher, store: store, rateLimiter: rateLimiter}
}

// ingestOne は1銘柄のEOD履歴を取得してストアへ一括upsertします。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string) (int, error) {
	records, err := iu.fetcher.FetchEod(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return len(records), iu.store.UpsertBatch(ctx, records)
}

// IngestAll は指定された全銘柄のEOD履歴を取得して永続化します。
// 上流のレートリミットを考慮してリクエスト間に待機を入れ、1銘柄の失敗では
// 処理を止めずにログへ出力して次へ進みます。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	for _, s := range symbols {
		iu.rateLimiter.WaitIfNeeded()
		n, err := iu.ingestOne(ctx, s)
		if err != nil {
			slog.Error("failed to ingest symbol", "symbol", s, "error", err)
			continue
		}
		slog.Info("ingested symbol", "symbol", s, "records", n)
	}
	return nil
}
