// Package eodstore persists normalized EOD records with gorm.
package eodstore

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stockapp_backend/internal/feature/stocks/domain/entity"
	"stockapp_backend/internal/feature/stocks/usecase"
)

type eodGorm struct {
	db *gorm.DB
}

var _ usecase.EodStore = (*eodGorm)(nil)

// NewEodRepository creates the gorm-backed EOD store.
func NewEodRepository(db *gorm.DB) *eodGorm {
	return &eodGorm{db: db}
}

// EodModel is the persistence shape of one (symbol, date) observation.
type EodModel struct {
	ID     uint      `gorm:"primaryKey"`
	Symbol string    `gorm:"size:32;not null;uniqueIndex:eod_sym_date,priority:1"`
	Date   time.Time `gorm:"not null;uniqueIndex:eod_sym_date,priority:2"`

	Exchange string  `gorm:"size:32"`
	Open     float64 `gorm:"not null"`
	High     float64 `gorm:"not null"`
	Low      float64 `gorm:"not null"`
	Close    float64 `gorm:"not null"`
	Volume   float64 `gorm:"not null;default:0"`

	AdjOpen     float64
	AdjHigh     float64
	AdjLow      float64
	AdjClose    float64
	AdjVolume   float64
	SplitFactor float64
	Dividend    float64
}

func (EodModel) TableName() string {
	return "eod_records"
}

func toModel(e entity.EodRecord) EodModel {
	return EodModel{
		Symbol:      e.Symbol,
		Date:        e.Date,
		Exchange:    e.Exchange,
		Open:        e.Open,
		High:        e.High,
		Low:         e.Low,
		Close:       e.Close,
		Volume:      e.Volume,
		AdjOpen:     e.AdjOpen,
		AdjHigh:     e.AdjHigh,
		AdjLow:      e.AdjLow,
		AdjClose:    e.AdjClose,
		AdjVolume:   e.AdjVolume,
		SplitFactor: e.SplitFactor,
		Dividend:    e.Dividend,
	}
}

func toEntity(m EodModel) entity.EodRecord {
	return entity.EodRecord{
		Symbol:      m.Symbol,
		Date:        m.Date,
		Exchange:    m.Exchange,
		Open:        m.Open,
		High:        m.High,
		Low:         m.Low,
		Close:       m.Close,
		Volume:      m.Volume,
		AdjOpen:     m.AdjOpen,
		AdjHigh:     m.AdjHigh,
		AdjLow:      m.AdjLow,
		AdjClose:    m.AdjClose,
		AdjVolume:   m.AdjVolume,
		SplitFactor: m.SplitFactor,
		Dividend:    m.Dividend,
	}
}

// UpsertBatch inserts records, updating the value columns when the
// (symbol, date) pair already exists.
func (r *eodGorm) UpsertBatch(ctx context.Context, records []entity.EodRecord) error {
	if len(records) == 0 {
		return nil
	}
	ms := make([]EodModel, 0, len(records))
	for _, e := range records {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"exchange", "open", "high", "low", "close", "volume",
			"adj_open", "adj_high", "adj_low", "adj_close", "adj_volume",
			"split_factor", "dividend",
		}),
	}).Create(&ms).Error
}

// Find returns the stored history for one symbol, newest first.
func (r *eodGorm) Find(ctx context.Context, symbol string, limit int) ([]entity.EodRecord, error) {
	var rows []EodModel
	q := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.EodRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
