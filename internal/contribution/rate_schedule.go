package contribution

import (
	"fmt"
	"os"

	"github.com/xingbinice/wuxianyijin/internal/shared/apperror"

	"github.com/pelletier/go-toml/v2"
)

// Rate is the personal and company share of one insurance or fund category.
type Rate struct {
	Personal float64 `toml:"personal" json:"personal" validate:"gte=0,lte=1"`
	Company  float64 `toml:"company" json:"company" validate:"gte=0,lte=1"`
}

// RateSchedule holds the six statutory categories.
type RateSchedule struct {
	Pension      Rate `toml:"pension" json:"pension"`
	Medical      Rate `toml:"medical" json:"medical"`
	Unemployment Rate `toml:"unemployment" json:"unemployment"`
	Injury       Rate `toml:"injury" json:"injury"`
	Maternity    Rate `toml:"maternity" json:"maternity"`
	HousingFund  Rate `toml:"housing_fund" json:"housing_fund"`
}

func DefaultRateSchedule() RateSchedule {
	return RateSchedule{
		Pension:      Rate{Personal: 0.08, Company: 0.16},
		Medical:      Rate{Personal: 0.02, Company: 0.10},
		Unemployment: Rate{Personal: 0.005, Company: 0.008},
		Injury:       Rate{Personal: 0, Company: 0.004},
		Maternity:    Rate{Personal: 0, Company: 0.008},
		HousingFund:  Rate{Personal: 0.07, Company: 0.07},
	}
}

// ParseRateSchedule overlays TOML onto the default schedule, so a file only
// needs the categories it changes.
func ParseRateSchedule(data []byte) (RateSchedule, error) {
	schedule := DefaultRateSchedule()
	if err := toml.Unmarshal(data, &schedule); err != nil {
		return RateSchedule{}, fmt.Errorf("parse rate schedule: %w", err)
	}
	if err := apperror.NewValidator().Struct(schedule); err != nil {
		return RateSchedule{}, fmt.Errorf("invalid rate schedule: %w", err)
	}
	return schedule, nil
}

// LoadRateSchedule reads path, or returns the default schedule when path is empty.
func LoadRateSchedule(path string) (RateSchedule, error) {
	if path == "" {
		return DefaultRateSchedule(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RateSchedule{}, fmt.Errorf("read rate schedule: %w", err)
	}
	return ParseRateSchedule(data)
}
