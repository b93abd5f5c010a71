package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/middleware"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIdempotency(t *testing.T) {
	const (
		cacheKey = "idemp:/calculations:k1"
		lockKey  = cacheKey + ":lock"
	)

	newRouter := func(t *testing.T) (*gin.Engine, redismock.ClientMock, *int) {
		rdb, mock := redismock.NewClientMock()
		calls := 0

		r := gin.New()
		r.POST("/calculations", middleware.Idempotency(rdb), func(c *gin.Context) {
			calls++
			c.JSON(http.StatusCreated, gin.H{
				"cache": c.GetString(middleware.IdempotencyCacheKey),
				"lock":  c.GetString(middleware.IdempotencyLockKey),
			})
		})
		return r, mock, &calls
	}

	post := func(r *gin.Engine, key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/calculations", nil)
		if key != "" {
			req.Header.Set(middleware.IdempotencyHeader, key)
		}
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("no header passes through", func(t *testing.T) {
		r, mock, calls := newRouter(t)

		w := post(r, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stored response replayed", func(t *testing.T) {
		r, mock, calls := newRouter(t)
		mock.ExpectGet(cacheKey).SetVal(`{"count":2}`)

		w := post(r, "k1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true,"data":{"count":2}}`, w.Body.String())
		assert.Equal(t, 0, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate while running", func(t *testing.T) {
		r, mock, calls := newRouter(t)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

		w := post(r, "k1")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"CONFLICT"`)
		assert.Equal(t, 0, *calls)
	})

	t.Run("first request takes the lock", func(t *testing.T) {
		r, mock, calls := newRouter(t)
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)

		w := post(r, "k1")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"cache":"`+cacheKey+`","lock":"`+lockKey+`"}`, w.Body.String())
		assert.Equal(t, 1, *calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.POST("/upload", middleware.RateLimitByIP(1, 2), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestContextLogger(t *testing.T) {
	r := gin.New()
	r.Use(middleware.ContextLogger(zap.NewNop()))

	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = contextutil.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("incoming id propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-1")
		r.ServeHTTP(w, req)

		assert.Equal(t, "req-1", seen)
		assert.Equal(t, "req-1", w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("id generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(middleware.RequestIDHeader))
	})
}
