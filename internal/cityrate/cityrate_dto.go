package cityrate

type CityRateResponse struct {
	ID        uint    `json:"id"`
	CityName  string  `json:"city_name"`
	Year      int     `json:"year"`
	BaseMin   float64 `json:"base_min"`
	BaseMax   float64 `json:"base_max"`
	Rate      float64 `json:"rate"`
	CreatedAt string  `json:"created_at"`
}

type ImportResponse struct {
	Message string             `json:"message"`
	Count   int                `json:"count"`
	Data    []CityRateResponse `json:"data"`
}

func mapToResponse(c CityRate) CityRateResponse {
	return CityRateResponse{
		ID:        c.ID,
		CityName:  c.CityName,
		Year:      c.Year,
		BaseMin:   c.BaseMin,
		BaseMax:   c.BaseMax,
		Rate:      c.Rate,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func mapToListResponse(rates []CityRate) []CityRateResponse {
	out := make([]CityRateResponse, 0, len(rates))
	for _, r := range rates {
		out = append(out, mapToResponse(r))
	}
	return out
}
