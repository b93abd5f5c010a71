package cityrate

import (
	"context"

	"gorm.io/gorm"
)

const insertBatchSize = 500

//go:generate mockgen -source=cityrate_repo.go -destination=mock/cityrate_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, rates []CityRate) error
	FindFirst(ctx context.Context) (*CityRate, error)
	FindAll(ctx context.Context) ([]CityRate, error)
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

func (r *repository) CreateBatch(ctx context.Context, rates []CityRate) error {
	return r.db.WithContext(ctx).CreateInBatches(&rates, insertBatchSize).Error
}

// FindFirst returns the earliest uploaded row, or gorm.ErrRecordNotFound.
func (r *repository) FindFirst(ctx context.Context) (*CityRate, error) {
	var rate CityRate
	err := r.db.WithContext(ctx).Order("id ASC").First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) FindAll(ctx context.Context) ([]CityRate, error) {
	var rates []CityRate
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rates).Error
	return rates, err
}
