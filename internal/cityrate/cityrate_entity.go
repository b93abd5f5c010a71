package cityrate

import (
	"time"

	"github.com/xingbinice/wuxianyijin/internal/ingest"
)

// CityRate rows are append-only; the auto-increment id is their upload order.
type CityRate struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	CityName  string  `gorm:"not null;index:idx_city_rates_city_year"`
	Year      int     `gorm:"not null;index:idx_city_rates_city_year"`
	BaseMin   float64 `gorm:"type:numeric(12,2);not null"`
	BaseMax   float64 `gorm:"type:numeric(12,2);not null"`
	Rate      float64 `gorm:"type:numeric(6,4);not null"`
	CreatedAt time.Time
}

func (CityRate) TableName() string {
	return "city_rates"
}

func fromCanonical(r ingest.CityRate) CityRate {
	return CityRate{
		CityName: r.CityName,
		Year:     r.Year,
		BaseMin:  r.BaseMin,
		BaseMax:  r.BaseMax,
		Rate:     r.Rate,
	}
}

func (c CityRate) canonical() ingest.CityRate {
	return ingest.CityRate{
		CityName: c.CityName,
		Year:     c.Year,
		BaseMin:  c.BaseMin,
		BaseMax:  c.BaseMax,
		Rate:     c.Rate,
	}
}
