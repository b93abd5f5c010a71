package contribution_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/contribution"
	contributionerrors "github.com/xingbinice/wuxianyijin/internal/contribution/errors"
	contributionMock "github.com/xingbinice/wuxianyijin/internal/contribution/mock"
	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	kafkaMock "github.com/xingbinice/wuxianyijin/internal/messaging/kafka/mock"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type fakeCities struct {
	firstFn func(ctx context.Context) (*ingest.CityRate, error)
}

func (f *fakeCities) First(ctx context.Context) (*ingest.CityRate, error) {
	return f.firstFn(ctx)
}

type fakeSalaries struct {
	allFn func(ctx context.Context) ([]ingest.SalaryRecord, error)
}

func (f *fakeSalaries) All(ctx context.Context) ([]ingest.SalaryRecord, error) {
	return f.allFn(ctx)
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []bootstrap.AuditLog
}

func (a *recordingAudit) Log(_ context.Context, entry bootstrap.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

type serviceDeps struct {
	sqlMock   sqlmock.Sqlmock
	service   contribution.Service
	repo      *contributionMock.MockRepository
	outbox    *kafkaMock.MockOutboxRepository
	redismock redismock.ClientMock
	cities    *fakeCities
	salaries  *fakeSalaries
	audit     *recordingAudit
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	dbRedis, redisMock := redismock.NewClientMock()
	repo := contributionMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	deps := &serviceDeps{
		sqlMock:   sqlMock,
		repo:      repo,
		outbox:    outboxRepo,
		redismock: redisMock,
		cities: &fakeCities{firstFn: func(ctx context.Context) (*ingest.CityRate, error) {
			return shenzhen(), nil
		}},
		salaries: &fakeSalaries{allFn: func(ctx context.Context) ([]ingest.SalaryRecord, error) {
			return []ingest.SalaryRecord{
				salary("E1", "Alice", 10000),
				salary("E2", "Bob", 2000),
				salary("E1", "Alice", 12000),
			}, nil
		}},
		audit: &recordingAudit{},
	}

	deps.service = contribution.NewServiceWithOptions(
		gormDB,
		repo,
		deps.cities,
		deps.salaries,
		contribution.NewCalculator(contribution.DefaultRateSchedule()),
		contribution.Options{Outbox: outboxRepo, Redis: dbRedis, Audit: deps.audit},
	)
	return deps
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func TestContributionService_Calculate(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-1")

	t.Run("success", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		var stored []contribution.ContributionResult
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, results []contribution.ContributionResult) error {
				stored = results
				return nil
			})

		var queued kafka.OutboxEvent
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				queued = e
				return nil
			})

		deps.redismock.ExpectDel(contribution.LatestResultsCacheKey).SetVal(1)

		resp, err := deps.service.Calculate(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, "calculation finished for 2 employees", resp.Message)

		if assert.Len(t, resp.Results, 2) {
			alice := resp.Results[0]
			assert.Equal(t, "E1", alice.EmployeeID)
			assert.Equal(t, 11000.0, alice.AvgSalary)
			assert.Equal(t, 1925.0, alice.TotalPersonalFee)
			assert.Equal(t, 9075.0, alice.NetSalary)
			assert.Equal(t, 2024, alice.Year)

			bob := resp.Results[1]
			assert.Equal(t, "E2", bob.EmployeeID)
			assert.Equal(t, 2360.0, bob.ContributionBase)
			assert.Equal(t, resp.RunID, bob.RunID)
		}

		assert.Len(t, stored, 2)
		assert.Equal(t, events.ContributionCalculatedTopic, queued.Topic)
		assert.Equal(t, resp.RunID, queued.AggregateID)
		assert.Equal(t, "req-1", queued.RequestID)

		var payload events.ContributionCalculatedEvent
		assert.NoError(t, json.Unmarshal(queued.Payload, &payload))
		assert.Equal(t, 2, payload.Count)
		assert.Equal(t, "Shenzhen", payload.CityName)

		if assert.Len(t, deps.audit.entries, 1) {
			assert.Equal(t, "CONTRIBUTION_CALCULATED", deps.audit.entries[0].Action)
		}
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("caller cancellation does not abort the shared pass", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		callerCtx, cancel := context.WithCancel(ctx)
		cancel()

		var sourceErr error
		deps.cities.firstFn = func(ctx context.Context) (*ingest.CityRate, error) {
			sourceErr = ctx.Err()
			return shenzhen(), nil
		}

		var persistRequestID string
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ []contribution.ContributionResult) error {
				persistRequestID = contextutil.GetRequestID(ctx)
				return ctx.Err()
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(contribution.LatestResultsCacheKey).SetVal(1)

		resp, err := deps.service.Calculate(callerCtx)

		assert.NoError(t, err)
		assert.NoError(t, sourceErr)
		assert.Equal(t, "req-1", persistRequestID)
		assert.Equal(t, 2, resp.Count)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("no city rate", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.cities.firstFn = func(ctx context.Context) (*ingest.CityRate, error) { return nil, nil }

		_, err := deps.service.Calculate(ctx)

		assert.ErrorIs(t, err, contribution.ErrNoCityRate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("no salary records", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.salaries.allFn = func(ctx context.Context) ([]ingest.SalaryRecord, error) { return nil, nil }

		_, err := deps.service.Calculate(ctx)

		assert.ErrorIs(t, err, contributionerrors.ErrNoSalaryRecords)
		assert.Equal(t, 422, apperror.ToHTTP(err).Status)
	})

	t.Run("source failure returned as is", func(t *testing.T) {
		deps := setupServiceTest(t)
		sourceErr := apperror.StorageFailure(errors.New("timeout"), "timeout")
		deps.salaries.allFn = func(ctx context.Context) ([]ingest.SalaryRecord, error) { return nil, sourceErr }

		_, err := deps.service.Calculate(ctx)
		assert.Equal(t, sourceErr, err)
	})

	t.Run("persist failure rolls back and forwards the message", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).
			Return(&pgconn.PgError{Code: "23502", Message: `null value in column "employee_id"`})

		_, err := deps.service.Calculate(ctx)

		httpErr := apperror.ToHTTP(err)
		assert.Equal(t, apperror.CodeStorageFailure, httpErr.Code)
		assert.Equal(t, `null value in column "employee_id"`, httpErr.Message)
		assert.Empty(t, deps.audit.entries)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(gomock.Any(), gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("outbox insert failed"))

		_, err := deps.service.Calculate(ctx)

		assert.Equal(t, apperror.CodeStorageFailure, apperror.CodeOf(err))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := contribution.NewService(nil, nil, nil, nil, nil)

		_, err := svc.Calculate(ctx)

		assert.ErrorIs(t, err, apperror.ErrStorageNotConfigured)
		assert.Equal(t, 503, apperror.ToHTTP(err).Status)
	})
}

func TestContributionService_GetResults(t *testing.T) {
	ctx := context.Background()
	runID := uuid.New()

	t.Run("latest run from cache", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached, _ := json.Marshal([]contribution.ContributionResultResponse{{EmployeeID: "E1", RunID: runID.String()}})
		deps.redismock.ExpectGet(contribution.LatestResultsCacheKey).SetVal(string(cached))

		got, err := deps.service.GetResults(ctx, "")

		assert.NoError(t, err)
		if assert.Len(t, got, 1) {
			assert.Equal(t, "E1", got[0].EmployeeID)
		}
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("latest run from storage on cache miss", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(contribution.LatestResultsCacheKey).RedisNil()

		deps.repo.EXPECT().LatestRunID(gomock.Any()).Return(runID, nil)
		deps.repo.EXPECT().FindByRun(gomock.Any(), runID).Return([]contribution.ContributionResult{
			{ID: uuid.New(), RunID: runID, Seq: 1, EmployeeID: "E1", NetSalary: 9075},
			{ID: uuid.New(), RunID: runID, Seq: 2, EmployeeID: "E2"},
		}, nil)

		got, err := deps.service.GetResults(ctx, "")

		assert.NoError(t, err)
		if assert.Len(t, got, 2) {
			assert.Equal(t, 9075.0, got[0].NetSalary)
			assert.Equal(t, "E2", got[1].EmployeeID)
		}
	})

	t.Run("nothing calculated yet", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.redismock.ExpectGet(contribution.LatestResultsCacheKey).RedisNil()
		deps.repo.EXPECT().LatestRunID(gomock.Any()).Return(uuid.Nil, gorm.ErrRecordNotFound)

		got, err := deps.service.GetResults(ctx, "")

		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("explicit run", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByRun(ctx, runID).Return([]contribution.ContributionResult{{RunID: runID, EmployeeID: "E9"}}, nil)

		got, err := deps.service.GetResults(ctx, runID.String())

		assert.NoError(t, err)
		assert.Equal(t, "E9", got[0].EmployeeID)
	})

	t.Run("unknown run", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByRun(ctx, runID).Return(nil, nil)

		_, err := deps.service.GetResults(ctx, runID.String())
		assert.ErrorIs(t, err, contributionerrors.ErrNoResults)
	})

	t.Run("malformed run id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetResults(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, contributionerrors.ErrInvalidRunID)
	})

	t.Run("storage failure", func(t *testing.T) {
		deps := setupServiceTest(t)
		deps.repo.EXPECT().FindByRun(ctx, runID).Return(nil, errors.New("connection reset"))

		_, err := deps.service.GetResults(ctx, runID.String())
		assert.Equal(t, "connection reset", apperror.ToHTTP(err).Message)
	})
}
