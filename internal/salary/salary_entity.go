package salary

import (
	"time"

	"github.com/xingbinice/wuxianyijin/internal/ingest"
)

const monthLayout = "2006-01-02"

// SalaryRecord is one employee's pay for one month. Rows are append-only and
// the same employee may appear any number of times.
type SalaryRecord struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	EmployeeID   string    `gorm:"not null;index"`
	EmployeeName string    `gorm:"not null"`
	Month        time.Time `gorm:"type:date;not null"`
	SalaryAmount float64   `gorm:"type:numeric(12,2);not null"`
	CreatedAt    time.Time
}

func (SalaryRecord) TableName() string {
	return "salary_records"
}

func fromCanonical(r ingest.SalaryRecord) (SalaryRecord, error) {
	month, err := time.Parse(monthLayout, r.Month)
	if err != nil {
		return SalaryRecord{}, err
	}
	return SalaryRecord{
		EmployeeID:   r.EmployeeID,
		EmployeeName: r.EmployeeName,
		Month:        month,
		SalaryAmount: r.SalaryAmount,
	}, nil
}

func (s SalaryRecord) canonical() ingest.SalaryRecord {
	return ingest.SalaryRecord{
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		Month:        s.Month.Format(monthLayout),
		SalaryAmount: s.SalaryAmount,
	}
}
