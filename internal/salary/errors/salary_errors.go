package salaryerrors

import (
	"net/http"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

var ErrEmptyUpload = apperror.New(
	apperror.CodeInvalidInput,
	"salary spreadsheet contains no data rows",
	http.StatusBadRequest,
)
