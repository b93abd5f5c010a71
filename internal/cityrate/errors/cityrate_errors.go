package cityrateerrors

import (
	"net/http"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

var ErrEmptyUpload = apperror.New(
	apperror.CodeInvalidInput,
	"city rate spreadsheet contains no data rows",
	http.StatusBadRequest,
)
