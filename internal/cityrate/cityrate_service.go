package cityrate

import (
	"context"
	"errors"
	"fmt"

	cityrateerrors "github.com/xingbinice/wuxianyijin/internal/cityrate/errors"
	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Import(ctx context.Context, rows []ingest.RawRow) (ImportResponse, error)
	GetAll(ctx context.Context) ([]CityRateResponse, error)
	First(ctx context.Context) (*ingest.CityRate, error)
}

type service struct {
	db     *gorm.DB
	repo   Repository
	logger *zap.Logger
}

// NewService builds the service. A nil db means no storage backend is configured.
func NewService(db *gorm.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("cityrate.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cityrate.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

// Import validates every row and stores the batch atomically; one bad row
// stores nothing.
func (s *service) Import(ctx context.Context, rows []ingest.RawRow) (ImportResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if s.db == nil {
		return ImportResponse{}, apperror.ErrStorageNotConfigured
	}

	log.Debug("city rate import requested", zap.Int("rows", len(rows)))

	records, err := ingest.Ingest(rows, ingest.CitySchema)
	if err != nil {
		log.Warn("city rate import rejected", zap.Error(err))
		return ImportResponse{}, err
	}
	if len(records) == 0 {
		return ImportResponse{}, cityrateerrors.ErrEmptyUpload
	}

	rates := make([]CityRate, 0, len(records))
	for _, r := range records {
		rates = append(rates, fromCanonical(r))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).CreateBatch(ctx, rates)
	})
	if err != nil {
		log.Error("city rate import persist failed", zap.Error(err))
		return ImportResponse{}, apperror.FromStorage(err)
	}

	log.Info("city rate import success", zap.Int("count", len(rates)))

	return ImportResponse{
		Message: fmt.Sprintf("imported %d city rate records", len(rates)),
		Count:   len(rates),
		Data:    mapToListResponse(rates),
	}, nil
}

func (s *service) GetAll(ctx context.Context) ([]CityRateResponse, error) {
	if s.db == nil {
		return nil, apperror.ErrStorageNotConfigured
	}

	rates, err := s.repo.FindAll(ctx)
	if err != nil {
		contextutil.GetLogger(ctx, s.logger).Error("get all city rates failed", zap.Error(err))
		return nil, apperror.FromStorage(err)
	}
	return mapToListResponse(rates), nil
}

// First returns the earliest uploaded city rate, or nil when there is none.
// Calculations use this single record whatever city or year it describes.
func (s *service) First(ctx context.Context) (*ingest.CityRate, error) {
	if s.db == nil {
		return nil, apperror.ErrStorageNotConfigured
	}

	rate, err := s.repo.FindFirst(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.FromStorage(err)
	}

	canonical := rate.canonical()
	return &canonical, nil
}
