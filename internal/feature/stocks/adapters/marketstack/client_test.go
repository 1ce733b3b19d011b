package marketstack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stockapp_backend/internal/feature/stocks/domain"
)

func newTestClient(baseURL string) *Client {
	cfg := Config{
		AccessKey: "test-key",
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
	}
	return NewClient(cfg, &http.Client{})
}

func fetchKind(t *testing.T, err error) domain.FetchErrorKind {
	t.Helper()
	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *domain.FetchError, got %T: %v", err, err)
	}
	return fe.Kind
}

func TestClient_FetchEod_Success(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/eod" {
			t.Errorf("expected path /eod, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("access_key") != "test-key" {
			t.Errorf("expected access_key test-key, got %s", r.URL.Query().Get("access_key"))
		}
		if r.URL.Query().Get("symbols") != "AAPL" {
			t.Errorf("expected symbols AAPL, got %s", r.URL.Query().Get("symbols"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"pagination": {"limit": 100, "offset": 0, "count": 2, "total": 2},
			"data": [
				{
					"symbol": "AAPL",
					"exchange": "XNAS",
					"date": "2024-01-31T00:00:00+0000",
					"open": 150.0,
					"high": 155.0,
					"low": 149.0,
					"close": 154.5,
					"volume": 1000000.0,
					"adj_open": 149.5,
					"adj_high": 154.4,
					"adj_low": 148.6,
					"adj_close": 154.0,
					"adj_volume": 1000100.5,
					"split_factor": 1.0,
					"dividend": 0.24
				},
				{
					"symbol": "AAPL",
					"exchange": "XNAS",
					"date": "2024-01-30T00:00:00+0000",
					"open": 148.0,
					"high": 151.0,
					"low": 147.5,
					"close": 150.0,
					"volume": 900000.0
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	records, err := client.FetchEod(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	// 上流の配列順をそのまま保持する
	first := records[0]
	if first.Symbol != "AAPL" || first.Exchange != "XNAS" {
		t.Errorf("unexpected symbol/exchange: %s/%s", first.Symbol, first.Exchange)
	}
	if got := first.Date.UTC().Format(time.RFC3339); got != "2024-01-31T00:00:00Z" {
		t.Errorf("expected canonical date 2024-01-31T00:00:00Z, got %s", got)
	}
	if first.AdjClose != 154.0 {
		t.Errorf("expected adj_close 154.0, got %f", first.AdjClose)
	}
	if first.AdjVolume != 1000100.5 {
		t.Errorf("expected adj_volume 1000100.5, got %f", first.AdjVolume)
	}
	if first.SplitFactor != 1.0 {
		t.Errorf("expected split_factor 1.0, got %f", first.SplitFactor)
	}
	if first.Dividend != 0.24 {
		t.Errorf("expected dividend 0.24, got %f", first.Dividend)
	}
	if records[1].Close != 150.0 {
		t.Errorf("expected second close 150.0, got %f", records[1].Close)
	}
}

func TestClient_FetchEod_RateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"error": {"code": "usage_limit_reached", "message": "Your monthly API request volume has been reached."}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchEod(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kind := fetchKind(t, err); kind != domain.FetchRateLimited {
		t.Errorf("expected kind %s, got %s", domain.FetchRateLimited, kind)
	}
}

func TestClient_FetchEod_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"error": {"code": "invalid_access_key", "message": "You have not supplied a valid API Access Key."}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchEod(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// 整形式のAPIエラーは上流のサービス拒否としてtransport扱い
	if kind := fetchKind(t, err); kind != domain.FetchTransport {
		t.Errorf("expected kind %s, got %s", domain.FetchTransport, kind)
	}
}

func TestClient_FetchEod_MissingData(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"pagination": {"limit": 100, "offset": 0, "count": 0, "total": 0}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchEod(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kind := fetchKind(t, err); kind != domain.FetchParse {
		t.Errorf("expected kind %s, got %s", domain.FetchParse, kind)
	}
}

func TestClient_FetchEod_InvalidDate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"pagination": {"limit": 100, "offset": 0, "count": 1, "total": 1},
			"data": [{"symbol": "AAPL", "date": "not-a-date", "open": 1, "high": 1, "low": 1, "close": 1, "volume": 1}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchEod(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if kind := fetchKind(t, err); kind != domain.FetchParse {
		t.Errorf("expected kind %s, got %s", domain.FetchParse, kind)
	}
}

func TestClient_FetchEod_HTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.FetchEod(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	// HTTPステータスのみではレートリミットと断定せずtransport扱い
	if kind := fetchKind(t, err); kind != domain.FetchTransport {
		t.Errorf("expected kind %s, got %s", domain.FetchTransport, kind)
	}
}
