package app

import (
	"github.com/xingbinice/wuxianyijin/internal/bootstrap"
	"github.com/xingbinice/wuxianyijin/internal/cityrate"
	"github.com/xingbinice/wuxianyijin/internal/config"
	"github.com/xingbinice/wuxianyijin/internal/contribution"
	"github.com/xingbinice/wuxianyijin/internal/messaging/kafka"
	"github.com/xingbinice/wuxianyijin/internal/salary"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services is the domain layer shared by the API, the consumer and the CLI.
type Services struct {
	CityRates     cityrate.Service
	Salaries      salary.Service
	Contributions contribution.Service
}

// Models lists every table the services persist to.
var Models = []any{
	&cityrate.CityRate{},
	&salary.SalaryRecord{},
	&contribution.ContributionResult{},
	&kafka.OutboxEvent{},
}

// NewServices wires the domain services. db and rdb may be nil; without db
// every operation reports that storage is not configured.
func NewServices(db *gorm.DB, rdb *redis.Client, cfg config.Config, audit bootstrap.AuditLogger, logger *zap.Logger) (Services, error) {
	schedule := contribution.DefaultRateSchedule()
	if cfg.Calculation.RateScheduleFile != "" {
		loaded, err := contribution.LoadRateSchedule(cfg.Calculation.RateScheduleFile)
		if err != nil {
			return Services{}, err
		}
		schedule = loaded
		logger.Info("rate schedule loaded", zap.String("path", cfg.Calculation.RateScheduleFile))
	}

	// --- Repositories ---
	var (
		cityRateRepo     cityrate.Repository
		salaryRepo       salary.Repository
		contributionRepo contribution.Repository
		outboxRepo       kafka.OutboxRepository
	)
	if db != nil {
		cityRateRepo = cityrate.NewRepository(db)
		salaryRepo = salary.NewRepository(db)
		contributionRepo = contribution.NewRepository(db)
		outboxRepo = kafka.NewOutboxRepository(db)
	}

	// --- Services ---
	cityRateService := cityrate.NewService(db, cityRateRepo, logger)
	salaryService := salary.NewServiceWithOptions(db, salaryRepo, salary.Options{
		Outbox: outboxRepo,
		Audit:  audit,
	}, logger)
	contributionService := contribution.NewServiceWithOptions(
		db,
		contributionRepo,
		cityRateService,
		salaryService,
		contribution.NewCalculator(schedule),
		contribution.Options{
			Outbox:   outboxRepo,
			Redis:    rdb,
			Audit:    audit,
			CacheTTL: cfg.Calculation.ResultsCacheTTL,
		},
		logger,
	)

	return Services{
		CityRates:     cityRateService,
		Salaries:      salaryService,
		Contributions: contributionService,
	}, nil
}
