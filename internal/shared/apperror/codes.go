package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput         = "INVALID_INPUT"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"

	// Record validation failures
	CodeMissingField    = "MISSING_FIELD"
	CodeFormatViolation = "FORMAT_VIOLATION"
	CodeRangeViolation  = "RANGE_VIOLATION"

	// Upstream dataset or backend absent
	CodePreconditionFailure = "PRECONDITION_FAILURE"

	// Server errors (5xx)
	CodeStorageFailure = "STORAGE_FAILURE"
	CodeInternalError  = "INTERNAL_ERROR"
)
