package contribution

import (
	"github.com/xingbinice/wuxianyijin/internal/ingest"

	"github.com/shopspring/decimal"
)

// EmployeeAggregate is every salary amount recorded for one employee id.
type EmployeeAggregate struct {
	EmployeeID   string
	EmployeeName string
	Salaries     []float64

	// ConflictingNames lists other names seen for this id, in first-seen order.
	ConflictingNames []string
}

// AvgSalary is the exact mean of Salaries.
func (a EmployeeAggregate) AvgSalary() decimal.Decimal {
	if len(a.Salaries) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, s := range a.Salaries {
		sum = sum.Add(decimal.NewFromFloat(s))
	}
	return sum.Div(decimal.NewFromInt(int64(len(a.Salaries))))
}

// Aggregate groups records by employee id in first-seen order. The first name
// seen for an id is kept.
func Aggregate(records []ingest.SalaryRecord) []EmployeeAggregate {
	index := make(map[string]int, len(records))
	out := make([]EmployeeAggregate, 0)

	for _, r := range records {
		i, ok := index[r.EmployeeID]
		if !ok {
			index[r.EmployeeID] = len(out)
			out = append(out, EmployeeAggregate{
				EmployeeID:   r.EmployeeID,
				EmployeeName: r.EmployeeName,
				Salaries:     []float64{r.SalaryAmount},
			})
			continue
		}

		agg := &out[i]
		agg.Salaries = append(agg.Salaries, r.SalaryAmount)
		if r.EmployeeName != agg.EmployeeName && !contains(agg.ConflictingNames, r.EmployeeName) {
			agg.ConflictingNames = append(agg.ConflictingNames, r.EmployeeName)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
