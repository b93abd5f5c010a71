package ingest

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"
)

var (
	validate = apperror.NewValidator()

	monthTokenPattern = regexp.MustCompile(`^\d{6}$`)
	isoDatePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// validateCity applies presence, coercion then range rules in that order;
// the first violation is returned.
func validateCity(rec Record) (CityRate, error) {
	if err := requirePresent(rec, cityFields); err != nil {
		return CityRate{}, err
	}

	year, err := numberField(rec, FieldYear)
	if err != nil {
		return CityRate{}, err
	}
	baseMin, err := numberField(rec, FieldBaseMin)
	if err != nil {
		return CityRate{}, err
	}
	baseMax, err := numberField(rec, FieldBaseMax)
	if err != nil {
		return CityRate{}, err
	}
	rate, err := numberField(rec, FieldRate)
	if err != nil {
		return CityRate{}, err
	}

	if year != math.Trunc(year) {
		return CityRate{}, apperror.RangeViolation(FieldYear, "must be a whole number")
	}

	out := CityRate{
		CityName: textField(rec, FieldCityName),
		Year:     int(year),
		BaseMin:  baseMin,
		BaseMax:  baseMax,
		Rate:     rate,
	}

	if err := validate.StructPartial(out, "Year", "BaseMin", "BaseMax"); err != nil {
		return CityRate{}, apperror.MapValidationError(err)
	}
	if out.BaseMin > out.BaseMax {
		return CityRate{}, apperror.RangeViolation(FieldBaseMin, "must be <= base_max")
	}
	if err := validate.StructPartial(out, "Rate"); err != nil {
		return CityRate{}, apperror.MapValidationError(err)
	}

	return out, nil
}

func validateSalary(rec Record) (SalaryRecord, error) {
	if err := requirePresent(rec, salaryFields); err != nil {
		return SalaryRecord{}, err
	}

	amount, err := numberField(rec, FieldSalaryAmount)
	if err != nil {
		return SalaryRecord{}, err
	}

	month, err := normalizeMonth(textField(rec, FieldMonth))
	if err != nil {
		return SalaryRecord{}, err
	}

	out := SalaryRecord{
		EmployeeID:   textField(rec, FieldEmployeeID),
		EmployeeName: textField(rec, FieldEmployeeName),
		Month:        month,
		SalaryAmount: amount,
	}

	if err := validate.Struct(out); err != nil {
		return SalaryRecord{}, apperror.MapValidationError(err)
	}

	return out, nil
}

// normalizeMonth turns a YYYYMM token into YYYY-MM-01.
func normalizeMonth(token string) (string, error) {
	if !monthTokenPattern.MatchString(token) {
		return "", apperror.FormatViolation(FieldMonth, token, "YYYYMM")
	}

	month := token[:4] + "-" + token[4:6] + "-01"
	if !isoDatePattern.MatchString(month) {
		return "", apperror.FormatViolation(FieldMonth, month, "YYYY-MM-DD")
	}
	return month, nil
}

func requirePresent(rec Record, fields []Field) error {
	for _, f := range fields {
		if !present(rec[f.Name]) {
			return apperror.MissingField(f.Name)
		}
	}
	return nil
}

// present reports whether v carries a value. Blank strings count as missing;
// numeric zero does not.
func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func textField(rec Record, name string) string {
	switch t := rec[name].(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// numberField coerces a numeric field. A value that cannot be read as a finite
// number is reported the same way as an absent one.
func numberField(rec Record, name string) (float64, error) {
	v, ok := toFloat(rec[name])
	if !ok {
		return 0, apperror.MissingField(name)
	}
	return v, nil
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint:
		f = float64(t)
	case uint32:
		f = float64(t)
	case uint64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
