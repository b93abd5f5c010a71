package salary_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	kafkaMock "github.com/xingbinice/wuxianyijin/internal/messaging/kafka/mock"
	"github.com/xingbinice/wuxianyijin/internal/salary"
	salaryerrors "github.com/xingbinice/wuxianyijin/internal/salary/errors"
	salaryMock "github.com/xingbinice/wuxianyijin/internal/salary/mock"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type serviceDeps struct {
	sqlMock sqlmock.Sqlmock
	service salary.Service
	repo    *salaryMock.MockRepository
	outbox  *kafkaMock.MockOutboxRepository
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	sqlDB, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	assert.NoError(t, err)

	repo := salaryMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)

	return &serviceDeps{
		sqlMock: sqlMock,
		service: salary.NewServiceWithOptions(gormDB, repo, salary.Options{Outbox: outboxRepo}),
		repo:    repo,
		outbox:  outboxRepo,
	}
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

func sampleRows() []ingest.RawRow {
	return []ingest.RawRow{
		{"员工工号": "E1", "员工姓名": "Alice", "月份": "202401", "工资金额": "10000"},
		{"employee_id": "E2", "employee_name": "Bob", "month": 202401, "salary_amount": 2000},
		{"id": "E1", "employee_name": "Alice", "month": "202402", "salary_amount": 12000},
	}
}

func TestSalaryService_Import(t *testing.T) {
	ctx := contextutil.WithRequestID(context.Background(), "req-9")

	t.Run("success queues salary.imported", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		var stored []salary.SalaryRecord
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, records []salary.SalaryRecord) error {
				stored = records
				return nil
			})

		var queued kafka.OutboxEvent
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, e kafka.OutboxEvent) error {
				queued = e
				return nil
			})

		resp, err := deps.service.Import(ctx, sampleRows())

		assert.NoError(t, err)
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, "imported 3 salary records", resp.Message)
		assert.Equal(t, "2024-01-01", resp.Data[0].Month)
		assert.Equal(t, "2024-02-01", resp.Data[2].Month)

		if assert.Len(t, stored, 3) {
			assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), stored[1].Month)
		}

		assert.Equal(t, events.SalaryImportedTopic, queued.Topic)
		assert.Equal(t, resp.BatchID, queued.AggregateID)
		assert.Equal(t, "req-9", queued.RequestID)

		var payload events.SalaryImportedEvent
		assert.NoError(t, json.Unmarshal(queued.Payload, &payload))
		assert.Equal(t, 3, payload.Count)
		assert.Equal(t, []string{"E1", "E2"}, payload.EmployeeIDs)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative amount rejects the batch", func(t *testing.T) {
		deps := setupServiceTest(t)
		rows := sampleRows()
		rows[1]["salary_amount"] = -5

		_, err := deps.service.Import(ctx, rows)

		assert.Equal(t, apperror.CodeRangeViolation, apperror.CodeOf(err))
		assert.Equal(t, "row 2: salary_amount must be >= 0", err.Error())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("empty upload", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.Import(ctx, []ingest.RawRow{})
		assert.ErrorIs(t, err, salaryerrors.ErrEmptyUpload)
	})

	t.Run("outbox failure rolls back records", func(t *testing.T) {
		deps := setupServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().CreateBatch(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(ctx, gomock.Any()).Return(errors.New("outbox down"))

		_, err := deps.service.Import(ctx, sampleRows())

		assert.Equal(t, apperror.CodeStorageFailure, apperror.CodeOf(err))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := salary.NewService(nil, nil)

		_, err := svc.Import(ctx, sampleRows())
		assert.ErrorIs(t, err, apperror.ErrStorageNotConfigured)
	})
}

func TestSalaryService_All(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	deps.repo.EXPECT().FindAll(ctx).Return([]salary.SalaryRecord{
		{ID: 1, EmployeeID: "E1", EmployeeName: "Alice", Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SalaryAmount: 10000},
		{ID: 2, EmployeeID: "E2", EmployeeName: "Bob", Month: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), SalaryAmount: 2000},
	}, nil)

	got, err := deps.service.All(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []ingest.SalaryRecord{
		{EmployeeID: "E1", EmployeeName: "Alice", Month: "2024-01-01", SalaryAmount: 10000},
		{EmployeeID: "E2", EmployeeName: "Bob", Month: "2024-01-01", SalaryAmount: 2000},
	}, got)
}

func TestSalaryService_GetAll(t *testing.T) {
	ctx := context.Background()
	deps := setupServiceTest(t)
	deps.repo.EXPECT().FindAll(ctx).Return(nil, errors.New("connection reset"))

	_, err := deps.service.GetAll(ctx)

	assert.Equal(t, apperror.CodeStorageFailure, apperror.CodeOf(err))
	assert.Equal(t, "connection reset", apperror.ToHTTP(err).Message)
}
