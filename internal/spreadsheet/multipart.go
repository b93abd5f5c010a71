package spreadsheet

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

func ErrFileTooLarge(maxBytes int64) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidInput,
		fmt.Sprintf("file exceeds the %d MB upload limit", maxBytes>>20),
		http.StatusRequestEntityTooLarge,
	)
}

// ReadMultipart gates an uploaded file on size and content type, then reads it.
// A non-positive maxBytes disables the size check.
func ReadMultipart(fh *multipart.FileHeader, maxBytes int64) ([]ingest.RawRow, error) {
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, ErrFileTooLarge(maxBytes)
	}
	if err := CheckContentType(fh.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidInput, "unable to open uploaded file", http.StatusBadRequest)
	}
	defer f.Close()

	return Read(f)
}
