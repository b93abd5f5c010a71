package apperror

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func formatFieldName(s string) string {
	// recipient_phone -> Recipient Phone
	s = strings.ReplaceAll(s, "_", " ")
	caser := cases.Title(language.English)
	return caser.String(s)
}

// snakeCase turns a struct field name (BaseMax) into its column form (base_max).
func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// MapValidationError converts the first validator failure into the error taxonomy.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		e := errs[0]
		fieldName := e.Field()

		switch e.Tag() {
		case "required":
			return RequiredField(formatFieldName(fieldName))
		case "gte", "min":
			return RangeViolation(fieldName, "must be >= "+e.Param())
		case "lte", "max":
			return RangeViolation(fieldName, "must be <= "+e.Param())
		case "ltefield":
			return RangeViolation(fieldName, "must be <= "+snakeCase(e.Param()))
		default:
			return InvalidField(formatFieldName(fieldName))
		}
	}

	return New(
		CodeInvalidInput,
		"Invalid input",
		http.StatusBadRequest,
	)
}
