package contribution

import (
	"time"

	"github.com/google/uuid"
)

// Batch is one calculation pass ready to persist.
type Batch struct {
	RunID   uuid.UUID
	Results []ContributionResult
	Count   int
}

// NewRunID returns a time-ordered run id. Ids from one process increase
// strictly, so runs stamped in the same instant still sort by creation.
func NewRunID() (uuid.UUID, error) {
	return uuid.NewV7()
}

// Assemble stamps calculations with a run id, keeping their order.
func Assemble(runID uuid.UUID, calcs []Calculation, now time.Time) Batch {
	results := make([]ContributionResult, 0, len(calcs))
	for i, c := range calcs {
		results = append(results, ContributionResult{
			ID:                   uuid.New(),
			RunID:                runID,
			Seq:                  i + 1,
			EmployeeID:           c.EmployeeID,
			EmployeeName:         c.EmployeeName,
			CityName:             c.CityName,
			Year:                 c.Year,
			AvgSalary:            c.AvgSalary,
			ContributionBase:     c.ContributionBase,
			PersonalPension:      c.Personal.Pension,
			PersonalMedical:      c.Personal.Medical,
			PersonalUnemployment: c.Personal.Unemployment,
			PersonalInjury:       c.Personal.Injury,
			PersonalMaternity:    c.Personal.Maternity,
			PersonalHousingFund:  c.Personal.HousingFund,
			CompanyPension:       c.Company.Pension,
			CompanyMedical:       c.Company.Medical,
			CompanyUnemployment:  c.Company.Unemployment,
			CompanyInjury:        c.Company.Injury,
			CompanyMaternity:     c.Company.Maternity,
			CompanyHousingFund:   c.Company.HousingFund,
			TotalPersonalFee:     c.TotalPersonalFee,
			TotalCompanyFee:      c.TotalCompanyFee,
			NetSalary:            c.NetSalary,
			CreatedAt:            now,
		})
	}

	return Batch{RunID: runID, Results: results, Count: len(results)}
}
