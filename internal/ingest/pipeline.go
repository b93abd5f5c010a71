package ingest

import (
	"errors"
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

// Ingest reconciles and validates every row in order. It stops at the first
// failing row and returns no records at all in that case; the error carries
// the 1-based data row number.
func Ingest[T any](rows []RawRow, schema Schema[T]) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, err := schema.Validate(schema.Reconcile(row))
		if err != nil {
			return nil, atRow(err, i+1)
		}
		out = append(out, rec)
	}
	return out, nil
}

func atRow(err error, row int) error {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return fmt.Errorf("row %d: %w", row, err)
	}

	tagged := appErr.WithDetail("row", row)
	tagged.Message = fmt.Sprintf("row %d: %s", row, appErr.Message)
	return tagged
}
