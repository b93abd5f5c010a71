// Package ingest turns raw spreadsheet rows into canonical, validated records
// for the two fixed input schemas: city rate tables and monthly salary records.
package ingest

const (
	SchemaCity   = "city"
	SchemaSalary = "salary"
)

// Canonical field names.
const (
	FieldCityName = "city_name"
	FieldYear     = "year"
	FieldBaseMin  = "base_min"
	FieldBaseMax  = "base_max"
	FieldRate     = "rate"

	FieldEmployeeID   = "employee_id"
	FieldEmployeeName = "employee_name"
	FieldMonth        = "month"
	FieldSalaryAmount = "salary_amount"
)

// RawRow is one spreadsheet row: original header text to cell value.
type RawRow map[string]any

// Record is a RawRow restricted to canonical field names.
type Record map[string]any

// Field lists the header labels accepted for one canonical field, in priority
// order. The canonical name always comes first so reconciling a canonical
// record is a no-op.
type Field struct {
	Name    string
	Aliases []string
}

// CityRate is one validated rate-table row.
type CityRate struct {
	CityName string  `json:"city_name"`
	Year     int     `json:"year" validate:"gte=2000,lte=2100"`
	BaseMin  float64 `json:"base_min" validate:"gte=0"`
	BaseMax  float64 `json:"base_max" validate:"gte=0"`
	Rate     float64 `json:"rate" validate:"gte=0,lte=1"`
}

// SalaryRecord is one validated employee-month entry. Month is YYYY-MM-01.
type SalaryRecord struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Month        string  `json:"month"`
	SalaryAmount float64 `json:"salary_amount" validate:"gte=0,lte=10000000"`
}

// Schema binds an alias table to the validator producing T.
type Schema[T any] struct {
	Name     string
	Fields   []Field
	validate func(Record) (T, error)
}

// Validate turns a reconciled record into T or the first violated rule.
func (s Schema[T]) Validate(rec Record) (T, error) {
	return s.validate(rec)
}

var cityFields = []Field{
	{Name: FieldCityName, Aliases: []string{FieldCityName, "city_namte", "城市名称"}},
	{Name: FieldYear, Aliases: []string{FieldYear, "年份"}},
	{Name: FieldBaseMin, Aliases: []string{FieldBaseMin, "基数下限"}},
	{Name: FieldBaseMax, Aliases: []string{FieldBaseMax, "基数上限"}},
	{Name: FieldRate, Aliases: []string{FieldRate, "费率"}},
}

var salaryFields = []Field{
	{Name: FieldEmployeeID, Aliases: []string{FieldEmployeeID, "员工工号", "id"}},
	{Name: FieldEmployeeName, Aliases: []string{FieldEmployeeName, "员工姓名"}},
	{Name: FieldMonth, Aliases: []string{FieldMonth, "月份"}},
	{Name: FieldSalaryAmount, Aliases: []string{FieldSalaryAmount, "工资金额"}},
}

var (
	CitySchema = Schema[CityRate]{
		Name:     SchemaCity,
		Fields:   cityFields,
		validate: validateCity,
	}

	SalarySchema = Schema[SalaryRecord]{
		Name:     SchemaSalary,
		Fields:   salaryFields,
		validate: validateSalary,
	}
)
