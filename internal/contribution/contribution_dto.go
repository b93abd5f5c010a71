package contribution

type ContributionResultResponse struct {
	ID                   string  `json:"id"`
	RunID                string  `json:"run_id"`
	EmployeeID           string  `json:"employee_id"`
	EmployeeName         string  `json:"employee_name"`
	CityName             string  `json:"city_name"`
	Year                 int     `json:"year"`
	AvgSalary            float64 `json:"avg_salary"`
	ContributionBase     float64 `json:"contribution_base"`
	PersonalPension      float64 `json:"personal_pension"`
	PersonalMedical      float64 `json:"personal_medical"`
	PersonalUnemployment float64 `json:"personal_unemployment"`
	PersonalInjury       float64 `json:"personal_injury"`
	PersonalMaternity    float64 `json:"personal_maternity"`
	PersonalHousingFund  float64 `json:"personal_housing_fund"`
	CompanyPension       float64 `json:"company_pension"`
	CompanyMedical       float64 `json:"company_medical"`
	CompanyUnemployment  float64 `json:"company_unemployment"`
	CompanyInjury        float64 `json:"company_injury"`
	CompanyMaternity     float64 `json:"company_maternity"`
	CompanyHousingFund   float64 `json:"company_housing_fund"`
	TotalPersonalFee     float64 `json:"total_personal_fee"`
	TotalCompanyFee      float64 `json:"total_company_fee"`
	NetSalary            float64 `json:"net_salary"`
	CreatedAt            string  `json:"created_at"`
}

type CalculateResponse struct {
	Message string                       `json:"message"`
	RunID   string                       `json:"run_id"`
	Count   int                          `json:"count"`
	Results []ContributionResultResponse `json:"results"`
}

type GetResultsFilterRequest struct {
	RunID string `form:"run_id" binding:"omitempty,uuid"`
}

func mapToResponse(r ContributionResult) ContributionResultResponse {
	return ContributionResultResponse{
		ID:                   r.ID.String(),
		RunID:                r.RunID.String(),
		EmployeeID:           r.EmployeeID,
		EmployeeName:         r.EmployeeName,
		CityName:             r.CityName,
		Year:                 r.Year,
		AvgSalary:            r.AvgSalary,
		ContributionBase:     r.ContributionBase,
		PersonalPension:      r.PersonalPension,
		PersonalMedical:      r.PersonalMedical,
		PersonalUnemployment: r.PersonalUnemployment,
		PersonalInjury:       r.PersonalInjury,
		PersonalMaternity:    r.PersonalMaternity,
		PersonalHousingFund:  r.PersonalHousingFund,
		CompanyPension:       r.CompanyPension,
		CompanyMedical:       r.CompanyMedical,
		CompanyUnemployment:  r.CompanyUnemployment,
		CompanyInjury:        r.CompanyInjury,
		CompanyMaternity:     r.CompanyMaternity,
		CompanyHousingFund:   r.CompanyHousingFund,
		TotalPersonalFee:     r.TotalPersonalFee,
		TotalCompanyFee:      r.TotalCompanyFee,
		NetSalary:            r.NetSalary,
		CreatedAt:            r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapToListResponse(results []ContributionResult) []ContributionResultResponse {
	out := make([]ContributionResultResponse, 0, len(results))
	for _, r := range results {
		out = append(out, mapToResponse(r))
	}
	return out
}
