package contribution

import (
	"github.com/xingbinice/wuxianyijin/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	calculations := r.Group("/calculations")
	{
		if redisClient != nil {
			calculations.POST("", middleware.Idempotency(redisClient), handler.Calculate)
		} else {
			calculations.POST("", handler.Calculate)
		}
	}

	r.GET("/contribution-results", handler.GetResults)
}
