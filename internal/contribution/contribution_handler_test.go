package contribution_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/contribution"
	contributionerrors "github.com/xingbinice/wuxianyijin/internal/contribution/errors"
	"github.com/xingbinice/wuxianyijin/internal/middleware"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

type apiError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type apiMeta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Meta  *apiMeta        `json:"meta"`
	Error *apiError       `json:"error"`
}

func mustDecodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	err := json.Unmarshal(body, &env)
	assert.NoError(t, err)
	return env
}

type fakeContributionService struct {
	calculateFn  func(ctx context.Context) (contribution.CalculateResponse, error)
	getResultsFn func(ctx context.Context, runID string) ([]contribution.ContributionResultResponse, error)
}

func (f *fakeContributionService) Calculate(ctx context.Context) (contribution.CalculateResponse, error) {
	return f.calculateFn(ctx)
}

func (f *fakeContributionService) GetResults(ctx context.Context, runID string) ([]contribution.ContributionResultResponse, error) {
	return f.getResultsFn(ctx, runID)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func TestContributionHandler_Calculate(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		h := contribution.NewHandler(&fakeContributionService{
			calculateFn: func(ctx context.Context) (contribution.CalculateResponse, error) {
				return contribution.CalculateResponse{Message: "done", Count: 1, RunID: "r1"}, nil
			},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/calculations", nil)

		h.Calculate(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)

		var resp contribution.CalculateResponse
		assert.NoError(t, json.Unmarshal(env.Data, &resp))
		assert.Equal(t, 1, resp.Count)
	})

	t.Run("precondition failure", func(t *testing.T) {
		h := contribution.NewHandler(&fakeContributionService{
			calculateFn: func(ctx context.Context) (contribution.CalculateResponse, error) {
				return contribution.CalculateResponse{}, contribution.ErrNoCityRate
			},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/calculations", nil)

		h.Calculate(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
		assert.Equal(t, apperror.CodePreconditionFailure, env.Error.Code)
	})

	t.Run("idempotent response stored and lock released", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		resp := contribution.CalculateResponse{Message: "done", Count: 2, RunID: "r2"}
		h := contribution.NewHandlerWithRedis(&fakeContributionService{
			calculateFn: func(ctx context.Context) (contribution.CalculateResponse, error) { return resp, nil },
		}, rdb)

		payload, _ := json.Marshal(resp)
		mock.ExpectSet("idemp:/calculations:k1", payload, 24*time.Hour).SetVal("OK")
		mock.ExpectDel("idemp:/calculations:k1:lock").SetVal(1)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/calculations", nil)
		c.Set(middleware.IdempotencyCacheKey, "idemp:/calculations:k1")
		c.Set(middleware.IdempotencyLockKey, "idemp:/calculations:k1:lock")

		h.Calculate(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestContributionHandler_GetResults(t *testing.T) {
	results := make([]contribution.ContributionResultResponse, 0, 15)
	for i := 0; i < 15; i++ {
		results = append(results, contribution.ContributionResultResponse{EmployeeID: string(rune('A' + i))})
	}

	t.Run("paginated latest run", func(t *testing.T) {
		var gotRunID string
		h := contribution.NewHandler(&fakeContributionService{
			getResultsFn: func(ctx context.Context, runID string) ([]contribution.ContributionResultResponse, error) {
				gotRunID = runID
				return results, nil
			},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/contribution-results?page=2", nil)

		h.GetResults(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "", gotRunID)

		env := mustDecodeEnvelope(t, w.Body.Bytes())
		var page []contribution.ContributionResultResponse
		assert.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page, 5)
		assert.Equal(t, "K", page[0].EmployeeID)
		assert.Equal(t, int64(15), env.Meta.Total)
		assert.Equal(t, 2, env.Meta.Page)
	})

	t.Run("run id passed through", func(t *testing.T) {
		const runID = "0b6f7c1a-6f2d-4c9e-9a51-2b1d7f3e9c40"
		h := contribution.NewHandler(&fakeContributionService{
			getResultsFn: func(ctx context.Context, id string) ([]contribution.ContributionResultResponse, error) {
				assert.Equal(t, runID, id)
				return nil, contributionerrors.ErrNoResults
			},
		})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/contribution-results?run_id="+runID, nil)

		h.GetResults(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed run id rejected by binding", func(t *testing.T) {
		h := contribution.NewHandler(&fakeContributionService{})

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/contribution-results?run_id=abc", nil)

		h.GetResults(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := mustDecodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, apperror.CodeInvalidInput, env.Error.Code)
	})
}
