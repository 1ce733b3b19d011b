package marketstack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockapp_backend/internal/feature/stocks/domain"
	"stockapp_backend/internal/feature/stocks/domain/entity"
	"stockapp_backend/internal/feature/stocks/usecase"
)

// Client はmarketstackの /eod エンドポイントからEOD履歴を取得する
// SymbolFetcher実装です。
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

// FetchEod は /eod を呼び出し、正規化済みのEodRecordスライスを返します。
// 失敗はすべて *domain.FetchError として返します。
func (c *Client) FetchEod(ctx context.Context, symbol string) ([]entity.EodRecord, error) {
	q := url.Values{}
	q.Set("access_key", c.cfg.AccessKey)
	q.Set("symbols", symbol)

	u := fmt.Sprintf("%s/eod?%s", c.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
	}

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
			Err:    fmt.Errorf("marketstack http %d", res.StatusCode),
		}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.FetchTransport, Symbol: symbol, Err: err}
	}

	records, err := ParseEodPage(symbol, body)
	if err != nil {
		return nil, classify(symbol, err)
	}
	return records, nil
}

// classify はアダプターのエラーをFetchErrorへ写像します。
// 整形式のAPIエラーオブジェクト（レートリミット以外）は上流がサービスを
// 拒否したものとしてtransport扱いです。
func classify(symbol string, err error) *domain.FetchError {
	kind := domain.FetchTransport
	var pe *domain.ParseError
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		kind = domain.FetchRateLimited
	case errors.As(err, &pe):
		kind = domain.FetchParse
	}
	return &domain.FetchError{Kind: kind, Symbol: symbol, Err: err}
}

// eodResponse は /eod エンドポイントのJSONレスポンスです。
type eodResponse struct {
	Error      *apiError `json:"error"`
	Pagination struct {
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
		Count  int `json:"count"`
		Total  int `json:"total"`
	} `json:"pagination"`
	Data []eodRow `json:"data"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// eodRow は1件のEOD行です。数値はJSON数値、日付はISO-8601で届きます。
type eodRow struct {
	Symbol      string  `json:"symbol"`
	Exchange    string  `json:"exchange"`
	Date        string  `json:"date"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	AdjOpen     float64 `json:"adj_open"`
	AdjHigh     float64 `json:"adj_high"`
	AdjLow      float64 `json:"adj_low"`
	AdjClose    float64 `json:"adj_close"`
	AdjVolume   float64 `json:"adj_volume"`
	SplitFactor float64 `json:"split_factor"`
	Dividend    float64 `json:"dividend"`
}

// dateLayouts はmarketstackが返しうる日付表現です。
var dateLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	"2006-01-02",
}

// ParseEodPage はページネーション付きEOD配列レスポンスを正規化済みレコードへ
// 変換します。フィールドはリネームのみで、行の順序は上流のまま保持します。
func ParseEodPage(symbol string, body []byte) ([]entity.EodRecord, error) {
	var raw eodResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &domain.ParseError{Err: err}
	}

	if raw.Error != nil {
		if strings.HasSuffix(raw.Error.Code, "limit_reached") {
			return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, raw.Error.Message)
		}
		return nil, fmt.Errorf("marketstack api error %s: %s", raw.Error.Code, raw.Error.Message)
	}
	if raw.Data == nil {
		return nil, &domain.ParseError{Err: errors.New(`missing "data" array`)}
	}

	records := make([]entity.EodRecord, 0, len(raw.Data))
	for _, row := range raw.Data {
		day, err := parseDate(row.Date)
		if err != nil {
			return nil, &domain.ParseError{Field: "date", Value: row.Date, Err: err}
		}

		sym := row.Symbol
		if sym == "" {
			sym = symbol
		}

		records = append(records, entity.EodRecord{
			Symbol:      sym,
			Exchange:    row.Exchange,
			Date:        day.UTC(),
			Open:        row.Open,
			High:        row.High,
			Low:         row.Low,
			Close:       row.Close,
			Volume:      row.Volume,
			AdjOpen:     row.AdjOpen,
			AdjHigh:     row.AdjHigh,
			AdjLow:      row.AdjLow,
			AdjClose:    row.AdjClose,
			AdjVolume:   row.AdjVolume,
			SplitFactor: row.SplitFactor,
			Dividend:    row.Dividend,
		})
	}
	return records, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
