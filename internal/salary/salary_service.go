package salary

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	salaryerrors "github.com/xingbinice/wuxianyijin/internal/salary/errors"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Import(ctx context.Context, rows []ingest.RawRow) (ImportResponse, error)
	GetAll(ctx context.Context) ([]SalaryRecordResponse, error)
	All(ctx context.Context) ([]ingest.SalaryRecord, error)
}

type Options struct {
	Outbox kafka.OutboxRepository
	Audit  bootstrap.AuditLogger
}

type service struct {
	db     *gorm.DB
	repo   Repository
	outbox kafka.OutboxRepository
	audit  bootstrap.AuditLogger
	logger *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOptions(db, repo, Options{}, logger...)
}

// NewServiceWithOptions builds the service. A nil db means no storage backend
// is configured.
func NewServiceWithOptions(db *gorm.DB, repo Repository, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("salary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: opts.Outbox,
		audit:  opts.Audit,
		logger: l,
	}
}

// Import validates every row and stores the batch atomically together with
// its salary.imported event.
func (s *service) Import(ctx context.Context, rows []ingest.RawRow) (ImportResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if s.db == nil {
		return ImportResponse{}, apperror.ErrStorageNotConfigured
	}

	rid := contextutil.GetRequestID(ctx)
	log.Debug("salary import requested", zap.Int("rows", len(rows)))

	records, err := ingest.Ingest(rows, ingest.SalarySchema)
	if err != nil {
		log.Warn("salary import rejected", zap.Error(err))
		return ImportResponse{}, err
	}
	if len(records) == 0 {
		return ImportResponse{}, salaryerrors.ErrEmptyUpload
	}

	entities := make([]SalaryRecord, 0, len(records))
	for i, r := range records {
		e, err := fromCanonical(r)
		if err != nil {
			return ImportResponse{}, apperror.FormatViolation(ingest.FieldMonth, r.Month, "YYYYMM").WithDetail("row", i+1)
		}
		entities = append(entities, e)
	}

	batchID := uuid.NewString()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateBatch(ctx, entities); err != nil {
			log.Error("salary import persist failed", zap.Error(err))
			return err
		}

		if s.outbox == nil {
			return nil
		}

		payload, err := json.Marshal(events.SalaryImportedEvent{
			EventType:   events.SalaryImportedEventType,
			BatchID:     batchID,
			RequestID:   rid,
			Count:       len(entities),
			EmployeeIDs: distinctEmployeeIDs(records),
			OccurredAt:  time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "salary_batch",
			AggregateID:   batchID,
			EventType:     events.SalaryImportedEventType,
			Topic:         events.SalaryImportedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			log.Error("salary outbox persist failed", zap.String("batch_id", batchID), zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		return ImportResponse{}, apperror.FromStorage(err)
	}

	if s.audit != nil {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "SALARY_IMPORTED",
			Message: "salary records stored",
			Meta: map[string]any{
				"batch_id": batchID,
				"count":    len(entities),
			},
		})
	}

	log.Info("salary import success",
		zap.String("request_id", rid),
		zap.String("batch_id", batchID),
		zap.Int("count", len(entities)),
	)

	return ImportResponse{
		Message: fmt.Sprintf("imported %d salary records", len(entities)),
		BatchID: batchID,
		Count:   len(entities),
		Data:    mapToListResponse(entities),
	}, nil
}

func (s *service) GetAll(ctx context.Context) ([]SalaryRecordResponse, error) {
	if s.db == nil {
		return nil, apperror.ErrStorageNotConfigured
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get all salary records failed", zap.Error(err))
		return nil, apperror.FromStorage(err)
	}
	return mapToListResponse(records), nil
}

// All returns every stored record in insertion order, in the shape the
// contribution calculation consumes.
func (s *service) All(ctx context.Context) ([]ingest.SalaryRecord, error) {
	if s.db == nil {
		return nil, apperror.ErrStorageNotConfigured
	}

	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	out := make([]ingest.SalaryRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.canonical())
	}
	return out, nil
}

func distinctEmployeeIDs(records []ingest.SalaryRecord) []string {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.EmployeeID]; ok {
			continue
		}
		seen[r.EmployeeID] = struct{}{}
		ids = append(ids, r.EmployeeID)
	}
	return ids
}
