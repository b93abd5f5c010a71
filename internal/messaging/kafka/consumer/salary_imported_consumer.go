package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xingbinice/wuxianyijin/internal/events"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
	"github.com/xingbinice/wuxianyijin/internal/shared/contextutil"

	"go.uber.org/zap"
)

const maxRecalculateAttempts = 3

// retryBackoff is the wait before attempt n+1, multiplied by n.
var retryBackoff = 2 * time.Second

// Recalculator reruns the contribution calculation.
type Recalculator interface {
	Calculate(ctx context.Context) (any, error)
}

// RecalculatorFunc adapts a plain function to Recalculator.
type RecalculatorFunc func(ctx context.Context) (any, error)

func (f RecalculatorFunc) Calculate(ctx context.Context) (any, error) {
	return f(ctx)
}

// ConsumeSalaryImported reacts to salary.imported events. With a nil
// recalculator events are only logged and committed. A failed recalculation
// is retried in place up to maxRecalculateAttempts times; precondition
// failures are not retried. The message is committed either way, because the
// reader's fetch position has already moved past it.
func ConsumeSalaryImported(
	ctx context.Context,
	reader MessageReader,
	recalculator Recalculator,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.salary_imported")
	log.Info("salary imported consumer started", zap.Bool("auto_recalculate", recalculator != nil))

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("salary imported consumer stopped")
				return
			}
			log.Error("fetch salary imported message failed", zap.Error(err))
			continue
		}

		var event events.SalaryImportedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode salary.imported event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if recalculator != nil {
			if err := recalculate(ctx, recalculator, event, log); err != nil {
				if ctx.Err() != nil {
					log.Info("salary imported consumer stopped")
					return
				}
				log.Error("recalculation after salary import abandoned",
					zap.String("batch_id", event.BatchID),
					zap.Int("attempts", maxRecalculateAttempts),
					zap.Error(err),
				)
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit salary imported message failed", zap.Error(err))
			continue
		}

		log.Info("salary.imported event handled",
			zap.String("batch_id", event.BatchID),
			zap.Int("count", event.Count),
		)
	}
}

// recalculate runs the recalculator for one event. A precondition failure
// is logged and reported as handled.
func recalculate(ctx context.Context, recalculator Recalculator, event events.SalaryImportedEvent, log *zap.Logger) error {
	runCtx := contextutil.WithRequestID(ctx, event.RequestID)

	var err error
	for attempt := 1; attempt <= maxRecalculateAttempts; attempt++ {
		if _, err = recalculator.Calculate(runCtx); err == nil {
			return nil
		}
		if apperror.CodeOf(err) == apperror.CodePreconditionFailure {
			log.Warn("recalculation skipped",
				zap.String("batch_id", event.BatchID),
				zap.Error(err),
			)
			return nil
		}
		log.Warn("recalculation after salary import failed",
			zap.String("batch_id", event.BatchID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == maxRecalculateAttempts {
			break
		}

		timer := time.NewTimer(time.Duration(attempt) * retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
