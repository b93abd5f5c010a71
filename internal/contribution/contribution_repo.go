package contribution

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const insertBatchSize = 500

//go:generate mockgen -source=contribution_repo.go -destination=mock/contribution_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, results []ContributionResult) error
	LatestRunID(ctx context.Context) (uuid.UUID, error)
	FindByRun(ctx context.Context, runID uuid.UUID) ([]ContributionResult, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateBatch(ctx context.Context, results []ContributionResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(results, insertBatchSize).Error
}

// LatestRunID returns gorm.ErrRecordNotFound when nothing was calculated yet.
// Run ids are time ordered and break ties between runs stamped together.
func (r *repository) LatestRunID(ctx context.Context) (uuid.UUID, error) {
	var latest ContributionResult
	err := r.db.WithContext(ctx).
		Select("run_id").
		Order("created_at DESC").
		Order("run_id DESC").
		Take(&latest).Error
	if err != nil {
		return uuid.Nil, err
	}
	return latest.RunID, nil
}

func (r *repository) FindByRun(ctx context.Context, runID uuid.UUID) ([]ContributionResult, error) {
	var results []ContributionResult
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("seq ASC").
		Find(&results).Error
	return results, err
}
