package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockapp_backend/internal/feature/stocks/transport/http/dto"
)

// IngestUsecase はEOD履歴の取り込みユースケースインターフェースを定義します。
type IngestUsecase interface {
	IngestAll(ctx context.Context, symbols []string) error
}

// IngestHandler は管理用の取り込みトリガーを処理します。
type IngestHandler struct {
	uc IngestUsecase
}

// NewIngestHandler は指定されたusecaseでIngestHandlerの新しいインスタンスを生成します。
func NewIngestHandler(uc IngestUsecase) *IngestHandler {
	return &IngestHandler{uc: uc}
}

// TriggerHandler は指定された銘柄のEOD履歴取り込みを同期実行します。
// 銘柄単位の失敗はユースケース側でログに落として継続されます。
//
// エンドポイント例:
// POST /api/admin/ingest {"symbols": ["AAPL", "MSFT"]}
func (h *IngestHandler) TriggerHandler(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.uc.IngestAll(c.Request.Context(), req.Symbols); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "symbols": len(req.Symbols)})
}
