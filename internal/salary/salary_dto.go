package salary

import "time"

type SalaryRecordResponse struct {
	ID           uint    `json:"id"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Month        string  `json:"month"`
	SalaryAmount float64 `json:"salary_amount"`
	CreatedAt    string  `json:"created_at"`
}

type ImportResponse struct {
	Message string                 `json:"message"`
	BatchID string                 `json:"batch_id"`
	Count   int                    `json:"count"`
	Data    []SalaryRecordResponse `json:"data"`
}

func mapToResponse(s SalaryRecord) SalaryRecordResponse {
	return SalaryRecordResponse{
		ID:           s.ID,
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		Month:        s.Month.Format(monthLayout),
		SalaryAmount: s.SalaryAmount,
		CreatedAt:    s.CreatedAt.Format(time.RFC3339),
	}
}

func mapToListResponse(records []SalaryRecord) []SalaryRecordResponse {
	out := make([]SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, mapToResponse(r))
	}
	return out
}
