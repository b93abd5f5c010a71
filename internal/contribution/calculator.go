package contribution

import (
	"fmt"

	"github.com/xingbinice/wuxianyijin/internal/ingest"
	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"

	"github.com/shopspring/decimal"
)

var ErrNoCityRate = apperror.PreconditionFailure("no city rate data found, upload city rates first")

// Fees is one amount per category.
type Fees struct {
	Pension      float64 `json:"pension"`
	Medical      float64 `json:"medical"`
	Unemployment float64 `json:"unemployment"`
	Injury       float64 `json:"injury"`
	Maternity    float64 `json:"maternity"`
	HousingFund  float64 `json:"housing_fund"`
}

// Calculation is the contribution outcome for one employee. Every monetary
// value is rounded half-up to two places.
type Calculation struct {
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     string  `json:"employee_name"`
	CityName         string  `json:"city_name"`
	Year             int     `json:"year"`
	AvgSalary        float64 `json:"avg_salary"`
	ContributionBase float64 `json:"contribution_base"`
	Personal         Fees    `json:"personal"`
	Company          Fees    `json:"company"`
	TotalPersonalFee float64 `json:"total_personal_fee"`
	TotalCompanyFee  float64 `json:"total_company_fee"`
	NetSalary        float64 `json:"net_salary"`
}

type Calculator struct {
	schedule RateSchedule
}

func NewCalculator(schedule RateSchedule) *Calculator {
	return &Calculator{schedule: schedule}
}

func (c *Calculator) Schedule() RateSchedule {
	return c.schedule
}

// Calculate applies city to one employee. It has no side effects.
func (c *Calculator) Calculate(agg EmployeeAggregate, city *ingest.CityRate) (Calculation, error) {
	if city == nil {
		return Calculation{}, ErrNoCityRate
	}
	if len(agg.Salaries) == 0 {
		return Calculation{}, apperror.PreconditionFailure(fmt.Sprintf("employee %s has no salary records", agg.EmployeeID))
	}

	avg := agg.AvgSalary()
	base := clamp(avg, decimal.NewFromFloat(city.BaseMin), decimal.NewFromFloat(city.BaseMax))

	personal, totalPersonal := c.fees(base, func(r Rate) float64 { return r.Personal })
	company, totalCompany := c.fees(base, func(r Rate) float64 { return r.Company })

	return Calculation{
		EmployeeID:       agg.EmployeeID,
		EmployeeName:     agg.EmployeeName,
		CityName:         city.CityName,
		Year:             city.Year,
		AvgSalary:        money(avg),
		ContributionBase: money(base),
		Personal:         personal,
		Company:          company,
		TotalPersonalFee: money(totalPersonal),
		TotalCompanyFee:  money(totalCompany),
		NetSalary:        money(avg.Sub(totalPersonal)),
	}, nil
}

// CalculateAll runs Calculate for every aggregate, failing on the first error.
func (c *Calculator) CalculateAll(aggs []EmployeeAggregate, city *ingest.CityRate) ([]Calculation, error) {
	if city == nil {
		return nil, ErrNoCityRate
	}

	out := make([]Calculation, 0, len(aggs))
	for _, agg := range aggs {
		calc, err := c.Calculate(agg, city)
		if err != nil {
			return nil, err
		}
		out = append(out, calc)
	}
	return out, nil
}

// fees returns the rounded per-category amounts and their unrounded total.
func (c *Calculator) fees(base decimal.Decimal, share func(Rate) float64) (Fees, decimal.Decimal) {
	s := c.schedule
	amounts := [6]decimal.Decimal{}
	for i, r := range []Rate{s.Pension, s.Medical, s.Unemployment, s.Injury, s.Maternity, s.HousingFund} {
		amounts[i] = base.Mul(decimal.NewFromFloat(share(r)))
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}

	return Fees{
		Pension:      money(amounts[0]),
		Medical:      money(amounts[1]),
		Unemployment: money(amounts[2]),
		Injury:       money(amounts[3]),
		Maternity:    money(amounts[4]),
		HousingFund:  money(amounts[5]),
	}, total
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(v, hi))
}

// money rounds half away from zero, which is half-up for non-negative amounts.
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
