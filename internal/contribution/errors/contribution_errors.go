package contributionerrors

import (
	"net/http"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

var (
	ErrNoSalaryRecords = apperror.PreconditionFailure("no salary data found, upload salary records first")

	ErrNoResults = apperror.New(
		apperror.CodeNotFound,
		"no contribution results found, run a calculation first",
		http.StatusNotFound,
	)

	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"run_id must be a valid UUID",
		http.StatusBadRequest,
	)
)
