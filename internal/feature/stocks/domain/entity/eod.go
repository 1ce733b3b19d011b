// Package entity defines the domain models for the stocks feature.
package entity

import "time"

// EodRecord is one end-of-day price observation for a single symbol,
// normalized from whatever shape the upstream provider returned.
// Date is always UTC regardless of the upstream date format.
type EodRecord struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange,omitempty"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	// Volume is float64 because some providers report fractional volume.
	Volume float64 `json:"volume"`

	AdjOpen   float64 `json:"adj_open,omitempty"`
	AdjHigh   float64 `json:"adj_high,omitempty"`
	AdjLow    float64 `json:"adj_low,omitempty"`
	AdjClose  float64 `json:"adj_close,omitempty"`
	AdjVolume float64 `json:"adj_volume,omitempty"`

	SplitFactor float64 `json:"split_factor,omitempty"`
	Dividend    float64 `json:"dividend,omitempty"`
}

// Pagination summarizes a result set. The aggregation core performs no
// server-side truncation, so Count == Total == len(Data) always holds.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// StockData is the top-level aggregation result. Records are grouped by the
// order symbols were requested, then by upstream order within a symbol.
type StockData struct {
	Pagination Pagination  `json:"pagination"`
	Data       []EodRecord `json:"data"`
}
