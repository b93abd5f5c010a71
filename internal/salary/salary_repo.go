package salary

import (
	"context"

	"gorm.io/gorm"
)

const insertBatchSize = 500

//go:generate mockgen -source=salary_repo.go -destination=mock/salary_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateBatch(ctx context.Context, records []SalaryRecord) error
	FindAll(ctx context.Context) ([]SalaryRecord, error)
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

func (r *repository) CreateBatch(ctx context.Context, records []SalaryRecord) error {
	return r.db.WithContext(ctx).CreateInBatches(&records, insertBatchSize).Error
}

// FindAll returns every record in insertion order.
func (r *repository) FindAll(ctx context.Context) ([]SalaryRecord, error) {
	var records []SalaryRecord
	err := r.db.WithContext(ctx).Order("id ASC").Find(&records).Error
	return records, err
}
