package apperror

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// FromStorage wraps a raw storage error as STORAGE_FAILURE, forwarding the
// driver's own message. Errors that are already an *AppError pass through.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return StorageFailure(err, pgErr.Message)
	}
	return StorageFailure(err, err.Error())
}
