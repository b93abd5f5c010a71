package app

import (
	"net/http"

	"github.com/xingbinice/wuxianyijin/internal/cityrate"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/contribution"
	"github.com/xingbinice/wuxianyijin/internal/salary"
	"github.com/xingbinice/wuxianyijin/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func registerModules(
	router *gin.Engine,
	services Services,
	rdb *redis.Client,
	cfg config.Config,
	storageReady bool,
) {
	// --- Handlers ---
	cityRateHandler := cityrate.NewHandler(services.CityRates, cfg.Upload.MaxBytes)
	salaryHandler := salary.NewHandler(services.Salaries, cfg.Upload.MaxBytes)
	contributionHandler := contribution.NewHandlerWithRedis(services.Contributions, rdb)

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":  "ok",
			"storage": storageReady,
			"cache":   rdb != nil,
		}, nil)
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		cityrate.RegisterRoutes(api, cityRateHandler)
		salary.RegisterRoutes(api, salaryHandler)
		contribution.RegisterRoutes(api, contributionHandler, rdb)
	}
}
