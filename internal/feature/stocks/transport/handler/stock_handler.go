// Package handler はstocksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockapp_backend/internal/feature/stocks/domain"
	"stockapp_backend/internal/feature/stocks/domain/entity"
	"stockapp_backend/internal/feature/stocks/transport/http/dto"
)

// StocksUsecase はEOD集約のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type StocksUsecase interface {
	GetEodData(ctx context.Context, symbols string) (*entity.StockData, error)
}

// StockHandler はEODデータのHTTPリクエストを処理します。
type StockHandler struct {
	uc StocksUsecase
}

// NewStockHandler は指定されたusecaseでStockHandlerの新しいインスタンスを生成します。
func NewStockHandler(uc StocksUsecase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetEodDataHandler はカンマ区切りの銘柄リストを受け取り、正規化済みの
// EOD履歴をJSONで返します。一部の銘柄が上流で失敗しても結果から落とすだけで
// 正常応答し、全銘柄が失敗した場合のみ502を返します。
//
// エンドポイント例:
// GET /api/stocks/eod?symbols=AAPL,MSFT
func (h *StockHandler) GetEodDataHandler(c *gin.Context) {
	symbols := c.Query("symbols")

	data, err := h.uc.GetEodData(c.Request.Context(), symbols)
	if err != nil {
		var unavailable *domain.UpstreamUnavailableError
		if errors.As(err, &unavailable) {
			c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: unavailable.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FromStockData(data))
}
