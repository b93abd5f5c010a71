package contribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	contributionerrors "github.com/xingbinice/wuxianyijin/internal/contribution/errors"
	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	LatestResultsCacheKey = "contribution:results:latest"

	calculateFlightKey = "contribution:calculate"
	defaultCacheTTL    = 10 * time.Minute
)

// CityRateSource yields the city rate record the calculation uses, or nil
// when none was uploaded.
type CityRateSource interface {
	First(ctx context.Context) (*ingest.CityRate, error)
}

// SalarySource yields every stored salary record in insertion order.
type SalarySource interface {
	All(ctx context.Context) ([]ingest.SalaryRecord, error)
}

type Service interface {
	Calculate(ctx context.Context) (CalculateResponse, error)
	GetResults(ctx context.Context, runID string) ([]ContributionResultResponse, error)
}

// Options are the optional collaborators of the service.
type Options struct {
	Outbox   kafka.OutboxRepository
	Redis    *redis.Client
	Audit    bootstrap.AuditLogger
	CacheTTL time.Duration
}

type service struct {
	db         *gorm.DB
	repo       Repository
	cities     CityRateSource
	salaries   SalarySource
	calculator *Calculator
	outbox     kafka.OutboxRepository
	rdb        *redis.Client
	audit      bootstrap.AuditLogger
	cacheTTL   time.Duration
	sf         *singleflight.Group
	logger     *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	cities CityRateSource,
	salaries SalarySource,
	calculator *Calculator,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOptions(db, repo, cities, salaries, calculator, Options{}, logger...)
}

// NewServiceWithOptions builds the service. A nil db means no storage backend
// is configured; every operation then fails with ErrStorageNotConfigured.
func NewServiceWithOptions(
	db *gorm.DB,
	repo Repository,
	cities CityRateSource,
	salaries SalarySource,
	calculator *Calculator,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("contribution.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("contribution.service")
	}
	if calculator == nil {
		calculator = NewCalculator(DefaultRateSchedule())
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &service{
		db:         db,
		repo:       repo,
		cities:     cities,
		salaries:   salaries,
		calculator: calculator,
		outbox:     opts.Outbox,
		rdb:        opts.Redis,
		audit:      opts.Audit,
		cacheTTL:   ttl,
		sf:         &singleflight.Group{},
		logger:     l,
	}
}

// Calculate runs one calculation pass over everything in storage. Concurrent
// calls in this process share a single pass.
func (s *service) Calculate(ctx context.Context) (CalculateResponse, error) {
	if s.db == nil {
		return CalculateResponse{}, apperror.ErrStorageNotConfigured
	}

	log := contextutil.GetLogger(ctx, s.logger)
	// The pass is shared, so one caller going away must not cancel it for the rest.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.sf.Do(calculateFlightKey, func() (interface{}, error) {
		return s.calculate(flightCtx)
	})
	if err != nil {
		return CalculateResponse{}, err
	}
	if shared {
		log.Debug("calculation shared with a concurrent caller")
	}

	return v.(CalculateResponse), nil
}

func (s *service) calculate(ctx context.Context) (CalculateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	rid := contextutil.GetRequestID(ctx)
	log.Debug("calculation requested", zap.String("request_id", rid))

	city, err := s.cities.First(ctx)
	if err != nil {
		log.Error("calculation load city rate failed", zap.Error(err))
		return CalculateResponse{}, err
	}
	if city == nil {
		return CalculateResponse{}, ErrNoCityRate
	}

	records, err := s.salaries.All(ctx)
	if err != nil {
		log.Error("calculation load salaries failed", zap.Error(err))
		return CalculateResponse{}, err
	}
	if len(records) == 0 {
		return CalculateResponse{}, contributionerrors.ErrNoSalaryRecords
	}

	aggs := Aggregate(records)
	for _, agg := range aggs {
		if len(agg.ConflictingNames) > 0 {
			log.Warn("employee id recorded under several names, keeping the first",
				zap.String("employee_id", agg.EmployeeID),
				zap.String("kept_name", agg.EmployeeName),
				zap.Strings("other_names", agg.ConflictingNames),
			)
		}
	}

	calcs, err := s.calculator.CalculateAll(aggs, city)
	if err != nil {
		return CalculateResponse{}, err
	}

	runID, err := NewRunID()
	if err != nil {
		return CalculateResponse{}, err
	}
	batch := Assemble(runID, calcs, time.Now().UTC())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateBatch(ctx, batch.Results); err != nil {
			log.Error("calculation persist results failed", zap.Error(err))
			return err
		}

		if s.outbox == nil {
			return nil
		}

		payload, err := json.Marshal(events.ContributionCalculatedEvent{
			EventType:  events.ContributionCalculatedEventType,
			RunID:      batch.RunID.String(),
			RequestID:  rid,
			CityName:   city.CityName,
			Year:       city.Year,
			Count:      batch.Count,
			OccurredAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "calculation_run",
			AggregateID:   batch.RunID.String(),
			EventType:     events.ContributionCalculatedEventType,
			Topic:         events.ContributionCalculatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			log.Error("calculation outbox persist failed",
				zap.String("run_id", batch.RunID.String()),
				zap.Error(err),
			)
			return err
		}
		return nil
	})
	if err != nil {
		return CalculateResponse{}, apperror.FromStorage(err)
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, LatestResultsCacheKey).Err(); err != nil {
			log.Error("failed to invalidate latest results cache",
				zap.Error(err),
				zap.String("key", LatestResultsCacheKey),
			)
		}
	}

	if s.audit != nil {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "CONTRIBUTION_CALCULATED",
			Message: "contribution calculation stored",
			Meta: map[string]any{
				"run_id":    batch.RunID.String(),
				"count":     batch.Count,
				"city_name": city.CityName,
				"year":      city.Year,
			},
		})
	}

	log.Info("calculation success",
		zap.String("request_id", rid),
		zap.String("run_id", batch.RunID.String()),
		zap.Int("count", batch.Count),
	)

	return CalculateResponse{
		Message: fmt.Sprintf("calculation finished for %d employees", batch.Count),
		RunID:   batch.RunID.String(),
		Count:   batch.Count,
		Results: mapToListResponse(batch.Results),
	}, nil
}

// GetResults returns one run in calculation order. An empty runID selects the
// latest run, which is served from Redis when cached.
func (s *service) GetResults(ctx context.Context, runID string) ([]ContributionResultResponse, error) {
	if s.db == nil {
		return nil, apperror.ErrStorageNotConfigured
	}

	if runID != "" {
		id, err := uuid.Parse(runID)
		if err != nil {
			return nil, contributionerrors.ErrInvalidRunID
		}

		results, err := s.repo.FindByRun(ctx, id)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}
		if len(results) == 0 {
			return nil, contributionerrors.ErrNoResults
		}
		return mapToListResponse(results), nil
	}

	return s.latestResults(ctx)
}

func (s *service) latestResults(ctx context.Context) ([]ContributionResultResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, LatestResultsCacheKey).Result(); err == nil {
			var resp []ContributionResultResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sf.Do(LatestResultsCacheKey, func() (interface{}, error) {
		id, err := s.repo.LatestRunID(flightCtx)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ContributionResultResponse{}, nil
		}
		if err != nil {
			return nil, apperror.FromStorage(err)
		}

		results, err := s.repo.FindByRun(flightCtx, id)
		if err != nil {
			return nil, apperror.FromStorage(err)
		}

		resp := mapToListResponse(results)
		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(flightCtx, LatestResultsCacheKey, jsonData, s.cacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]ContributionResultResponse), nil
}
