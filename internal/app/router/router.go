package router

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stockapp_backend/internal/feature/stocks/transport/handler"
	platformhandler "stockapp_backend/internal/platform/http/handler"
	jwtmw "stockapp_backend/internal/platform/jwt"
)

func NewRouter(stocks *handler.StockHandler, ingest *handler.IngestHandler) *gin.Engine {
	r := gin.Default()

	// グローバルCORS設定。ALLOWED_ORIGINS（カンマ区切り）が指定されていれば
	// そのオリジンのみ許可し、未指定なら全オリジンを許可する。
	corsCfg := cors.DefaultConfig()
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		corsCfg.AllowOrigins = strings.Split(origins, ",")
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = []string{"*"}
	r.Use(cors.New(corsCfg))

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	api := r.Group("/api")
	// EOD集約クエリ
	api.GET("/stocks/eod", stocks.GetEodDataHandler)

	// 認証必須の管理ルート
	admin := api.Group("/admin")
	admin.Use(jwtmw.AuthRequired())
	{
		admin.POST("/ingest", ingest.TriggerHandler)
	}

	return r
}
