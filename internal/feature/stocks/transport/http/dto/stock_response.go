// Package dto defines HTTP response shapes for the stocks feature.
package dto

import (
	"time"

	"stockapp_backend/internal/feature/stocks/domain/entity"
)

// ErrorResponse is the JSON body for error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PaginationResponse mirrors entity.Pagination on the wire.
type PaginationResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// EodRecordResponse is one price observation on the wire. Date is always
// RFC3339 UTC (e.g. "2024-01-31T00:00:00Z") regardless of the upstream
// source format.
type EodRecordResponse struct {
	Symbol   string  `json:"symbol"`
	Exchange string  `json:"exchange,omitempty"`
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`

	AdjOpen   float64 `json:"adj_open,omitempty"`
	AdjHigh   float64 `json:"adj_high,omitempty"`
	AdjLow    float64 `json:"adj_low,omitempty"`
	AdjClose  float64 `json:"adj_close,omitempty"`
	AdjVolume float64 `json:"adj_volume,omitempty"`

	SplitFactor float64 `json:"split_factor,omitempty"`
	Dividend    float64 `json:"dividend,omitempty"`
}

// StockDataResponse is the body of GET /api/stocks/eod.
type StockDataResponse struct {
	Pagination PaginationResponse  `json:"pagination"`
	Data       []EodRecordResponse `json:"data"`
}

// FromStockData converts an aggregation result to its wire shape.
func FromStockData(sd *entity.StockData) StockDataResponse {
	out := StockDataResponse{
		Pagination: PaginationResponse{
			Limit:  sd.Pagination.Limit,
			Offset: sd.Pagination.Offset,
			Count:  sd.Pagination.Count,
			Total:  sd.Pagination.Total,
		},
		Data: make([]EodRecordResponse, 0, len(sd.Data)),
	}
	for _, r := range sd.Data {
		out.Data = append(out.Data, EodRecordResponse{
			Symbol:      r.Symbol,
			Exchange:    r.Exchange,
			Date:        r.Date.UTC().Format(time.RFC3339),
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
			AdjOpen:     r.AdjOpen,
			AdjHigh:     r.AdjHigh,
			AdjLow:      r.AdjLow,
			AdjClose:    r.AdjClose,
			AdjVolume:   r.AdjVolume,
			SplitFactor: r.SplitFactor,
			Dividend:    r.Dividend,
		})
	}
	return out
}

// IngestRequest is the body of POST /api/admin/ingest.
type IngestRequest struct {
	Symbols []string `json:"symbols" binding:"required,min=1"`
}
