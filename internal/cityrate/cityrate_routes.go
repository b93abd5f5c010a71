package cityrate

import (
	"github.com/xingbinice/wuxianyijin/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	rates := r.Group("/city-rates")
	{
		rates.GET("", middleware.RateLimitByIP(5, 10), handler.GetAll)
		rates.POST("/upload", middleware.RateLimitByIP(0.5, 3), handler.Upload)
	}
}
