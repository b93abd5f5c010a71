package contribution

import (
	"time"

	"github.com/google/uuid"
)

// ContributionResult is one persisted per-employee outcome. Rows sharing a
// RunID were produced by the same calculation pass; Seq keeps their order.
type ContributionResult struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	RunID                uuid.UUID `gorm:"type:uuid;not null;index"`
	Seq                  int       `gorm:"not null"`
	EmployeeID           string    `gorm:"not null;index"`
	EmployeeName         string    `gorm:"not null"`
	CityName             string
	Year                 int     `gorm:"not null"`
	AvgSalary            float64 `gorm:"type:numeric(12,2)"`
	ContributionBase     float64 `gorm:"type:numeric(12,2)"`
	PersonalPension      float64 `gorm:"type:numeric(12,2)"`
	PersonalMedical      float64 `gorm:"type:numeric(12,2)"`
	PersonalUnemployment float64 `gorm:"type:numeric(12,2)"`
	PersonalInjury       float64 `gorm:"type:numeric(12,2)"`
	PersonalMaternity    float64 `gorm:"type:numeric(12,2)"`
	PersonalHousingFund  float64 `gorm:"type:numeric(12,2)"`
	CompanyPension       float64 `gorm:"type:numeric(12,2)"`
	CompanyMedical       float64 `gorm:"type:numeric(12,2)"`
	CompanyUnemployment  float64 `gorm:"type:numeric(12,2)"`
	CompanyInjury        float64 `gorm:"type:numeric(12,2)"`
	CompanyMaternity     float64 `gorm:"type:numeric(12,2)"`
	CompanyHousingFund   float64 `gorm:"type:numeric(12,2)"`
	TotalPersonalFee     float64 `gorm:"type:numeric(12,2)"`
	TotalCompanyFee      float64 `gorm:"type:numeric(12,2)"`
	NetSalary            float64 `gorm:"type:numeric(12,2)"`
	CreatedAt            time.Time
}

func (ContributionResult) TableName() string {
	return "contribution_results"
}
