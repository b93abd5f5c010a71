package salary

import (
	"github.com/xingbinice/wuxianyijin/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	salaries := r.Group("/salaries")
	{
		salaries.GET("", middleware.RateLimitByIP(5, 10), handler.GetAll)
		salaries.POST("/upload", middleware.RateLimitByIP(0.5, 3), handler.Upload)
	}
}
