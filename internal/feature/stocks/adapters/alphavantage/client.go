package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"stockapp_backend/internal/feature/stocks/domain"
	"stockapp_backend/internal/feature/stocks/domain/entity"
	"stockapp_backend/internal/feature/stocks/usecase"
)

// Client はAlpha Vantageの月次時系列からEOD履歴を取得するSymbolFetcher実装です。
type Client struct {
	cfg    Config
	client *http.Client
}

// ClientがSymbolFetcherを実装していることをコンパイル時に検証します。
var _ usecase.SymbolFetcher = (*Client)(nil)

// NewClient は指定された設定とHTTPクライアントでClientの新しいインスタンスを生成します。
func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

// FetchEod はTIME_SERIES_MONTHLYエンドポイントを呼び出し、正規化済みの
// EodRecordスライスを返します。失敗はすべて *domain.FetchError として返します。
func (c *Client) FetchEod(ctx context.Context, symbol string) ([]entity.EodRecord, error) {
	q := url.Values{}
	// クエリパラメータを追加
	q.Set("function", "TIME_SERIES_MONTHLY")
	q.Set("symbol", symbol)
	q.Set("apikey", c.cfg.APIKey)

	u := fmt.Sprintf("%s?%s", c.cfg.BaseURL, q.Encode())

	// リクエストオブジェクトを作成
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
	}

	// リクエストを実行
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, &domain.FetchError{
			Kind:   domain.FetchTransport,
			Symbol: symbol,
			Err:    fmt.Errorf("alphavantage http %d", res.StatusCode),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
	}

	records, err := ParseMonthlySeries(symbol, body)
	if err != nil {
		return nil, classify(symbol, err)
	}
	return records, nil
}

// classify はアダプターのエラーをFetchErrorへ写像します。
func classify(symbol string, err error) *domain.FetchError {
	kind := domain.FetchParse
	if errors.Is(err, domain.ErrRateLimited) {
		kind = domain.FetchRateLimited
	}
	return &domain.FetchError{Kind: kind, Symbol: symbol, Err: err}
}

// monthlyResponse はTIME_SERIES_MONTHLYエンドポイントのJSONレスポンスです。
// 数値フィールドは文字列で届きます。
type monthlyResponse struct {
	Information string                `json:"Information"`
	Series      map[string]monthlyBar `json:"Monthly Time Series"`
}

type monthlyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// ParseMonthlySeries は月次時系列レスポンスを正規化済みレコードへ変換します。
// トップレベルの "Information" がレートリミット通知を含む場合は
// domain.ErrRateLimited を、スキーマ違反は *domain.ParseError を返します。
func ParseMonthlySeries(symbol string, body []byte) ([]entity.EodRecord, error) {
	var raw monthlyResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	// レートリミット時は "Information" のみを含むレスポンスが返る
	if strings.Contains(raw.Information, "API rate limit") {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, raw.Information)
	}
	if raw.Series == nil {
		return nil, &domain.ParseError{Err: errors.New(`missing "Monthly Time Series" object`)}
	}

	// 上流は新しい月から順に並べるため、日付降順で決定的な順序を再現する
	dates := make([]string, 0, len(raw.Series))
	for d := range raw.Series {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	records := make([]entity.EodRecord, 0, len(dates))
	for _, d := range dates {
		bar := raw.Series[d]

		// カレンダー日付をUTC深夜0時へ正規化
		day, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, &domain.ParseError{Field: "date", Value: d, Err: err}
		}

		open, err := parseFloatStrict("1. open", bar.Open)
		if err != nil {
			return nil, err
		}
		high, err := parseFloatStrict("2. high", bar.High)
		if err != nil {
			return nil, err
		}
		low, err := parseFloatStrict("3. low", bar.Low)
		if err != nil {
			return nil, err
		}
		cl, err := parseFloatStrict("4. close", bar.Close)
		if err != nil {
			return nil, err
		}
		vol, err := parseFloatStrict("5. volume", bar.Volume)
		if err != nil {
			return nil, err
		}

		records = append(records, entity.EodRecord{
			Symbol: symbol,
			Date:   day.UTC(),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  cl,
			Volume: vol,
		})
	}
	return records, nil
}

// parseFloatStrict は文字列数値を厳密にパースし、失敗を*domain.ParseErrorで返します。
func parseFloatStrict(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &domain.ParseError{Field: field, Value: s, Err: err}
	}
	return v, nil
}
