// Package usecase はEODデータ操作のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"stockapp_backend/internal/feature/stocks/domain"
	"stockapp_backend/internal/feature/stocks/domain/entity"
)

// DefaultMaxConcurrency は1リクエスト内の上流フェッチの並列上限です。
// 上流のレートリミットを圧迫しない程度に抑えています。
const DefaultMaxConcurrency = 8

// SymbolFetcher は1銘柄のEOD履歴を上流プロバイダーから取得します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type SymbolFetcher interface {
	// FetchEod は正規化済みレコードを返すか、*domain.FetchError で失敗します。
	FetchEod(ctx context.Context, symbol string) ([]entity.EodRecord, error)
}

// RequestCache は銘柄リストキーごとに集約結果をメモ化します。
// 同一キーの同時計算は1回に抑制され（シングルフライト）、失敗した計算は
// 保存されません。
type RequestCache interface {
	GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*entity.StockData, error)) (*entity.StockData, error)
}

// StocksUsecase はEOD集約のクエリファサードです。
type StocksUsecase struct {
	fetcher        SymbolFetcher
	cache          RequestCache
	maxConcurrency int
}

// NewStocksUsecase はStocksUsecaseの新しいインスタンスを生成します。
// maxConcurrencyが0以下の場合はDefaultMaxConcurrencyを使用します。
func NewStocksUsecase(fetcher SymbolFetcher, cache RequestCache, maxConcurrency int) *StocksUsecase {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &StocksUsecase{fetcher: fetcher, cache: cache, maxConcurrency: maxConcurrency}
}

// SplitSymbols はカンマ区切りの銘柄リストを正規化します。各要素は前後の
// 空白をトリムし、空要素は除去、重複は初出順を保って除去します。
// 大文字小文字と並び順はそのまま保持します。
func SplitSymbols(symbols string) []string {
	parts := strings.Split(symbols, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// GetEodData はカンマ区切りの銘柄リストを受け取り、正規化済みのEOD履歴を
// 1つの集約結果として返します。リストが空に正規化された場合は0件の結果を
// 返し、エラーにはしません。
//
// キャッシュキーは正規化後のリストを再連結した文字列です。大文字小文字や
// 並び順は正規化しないため、"AAPL,MSFT" と "aapl,msft" は別エントリです。
func (u *StocksUsecase) GetEodData(ctx context.Context, symbols string) (*entity.StockData, error) {
	syms := SplitSymbols(symbols)
	if len(syms) == 0 {
		return &entity.StockData{Data: []entity.EodRecord{}}, nil
	}

	key := strings.Join(syms, ",")
	return u.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*entity.StockData, error) {
		return u.aggregate(ctx, syms)
	})
}

// aggregate は銘柄ごとのフェッチを並列上限付きでファンアウトし、成功分を
// リクエスト順に連結します。レコード順は入力順の純関数で、フェッチの完了順
// には依存しません。全銘柄が失敗した場合のみ *domain.UpstreamUnavailableError
// を返します。
func (u *StocksUsecase) aggregate(ctx context.Context, syms []string) (*entity.StockData, error) {
	results := make([][]entity.EodRecord, len(syms))
	failures := make([]*domain.FetchError, len(syms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(syms), u.maxConcurrency))
	for i, s := range syms {
		g.Go(func() error {
			recs, err := u.fetcher.FetchEod(gctx, s)
			if err != nil {
				// 失敗は記録して継続する。nilを返すので兄弟フェッチは
				// キャンセルされない。
				failures[i] = asFetchError(s, err)
				return nil
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	var data []entity.EodRecord
	succeeded := 0
	failed := make([]*domain.FetchError, 0, len(syms))
	for i := range syms {
		if f := failures[i]; f != nil {
			slog.Warn("dropping symbol after upstream failure",
				"symbol", f.Symbol, "kind", string(f.Kind), "error", f.Err)
			failed = append(failed, f)
			continue
		}
		succeeded++
		data = append(data, results[i]...)
	}

	if succeeded == 0 {
		return nil, &domain.UpstreamUnavailableError{Failures: failed}
	}
	if data == nil {
		data = []entity.EodRecord{}
	}
	return &entity.StockData{
		Pagination: entity.Pagination{Count: len(data), Total: len(data)},
		Data:       data,
	}, nil
}

// asFetchError はフェッチャーが返したエラーをFetchErrorへ揃えます。
func asFetchError(symbol string, err error) *domain.FetchError {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
}
