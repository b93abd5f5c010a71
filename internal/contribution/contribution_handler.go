package contribution

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/middleware"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func (h *Handler) Calculate(c *gin.Context) {
	lockKey := c.GetString(middleware.IdempotencyLockKey)
	cacheKey := c.GetString(middleware.IdempotencyCacheKey)

	if h.rdb != nil && lockKey != "" {
		defer h.rdb.Del(c.Request.Context(), lockKey)
	}

	resp, err := h.service.Calculate(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	if h.rdb != nil && cacheKey != "" {
		if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
			_ = h.rdb.Set(c.Request.Context(), cacheKey, payload, idempotencyTTL).Err()
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetResults(c *gin.Context) {
	var filter GetResultsFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid query parameters", err.Error())
		return
	}

	resp, err := h.service.GetResults(c.Request.Context(), filter.RunID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	start, end, meta := response.Paginate(len(resp), page, pageSize)

	response.Success(c, http.StatusOK, resp[start:end], &meta)
}
