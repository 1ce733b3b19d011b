// Package di provides dependency injection factories for creating application components.
package di

import (
	"os"

	"stockapp_backend/internal/feature/stocks/adapters/alphavantage"
	"stockapp_backend/internal/feature/stocks/adapters/marketstack"
	"stockapp_backend/internal/feature/stocks/usecase"
	infrahttp "stockapp_backend/internal/platform/http"
)

// NewSymbolFetcher は STOCK_PROVIDER 環境変数に応じた上流フェッチャーを生成します。
// 既定はAlpha Vantageの月次時系列です。
func NewSymbolFetcher() usecase.SymbolFetcher {
	switch os.Getenv("STOCK_PROVIDER") {
	case "marketstack":
		cfg := marketstack.LoadConfig()
		return marketstack.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	default:
		cfg := alphavantage.LoadConfig()
		return alphavantage.NewClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	}
}
