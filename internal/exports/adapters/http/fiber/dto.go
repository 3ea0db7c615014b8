package fiber

type ExportResponse struct {
	ID         string `json:"id" example:"6f1c9a4e-1b7a-4c55-9d1f-1a2b3c4d5e6f"`
	Filename   string `json:"filename" example:"relatorio_watchtime_01-01-2024_ate_03-01-2024.csv"`
	RangeStart string `json:"range_start" example:"2024-01-01T00:00:00Z"`
	RangeEnd   string `json:"range_end" example:"2024-01-04T00:00:00Z"`
	Interval   string `json:"intervalo,omitempty" example:"7d"`
	City       string `json:"cidade,omitempty" example:"itabira"`
	Rows       int    `json:"rows" example:"42"`
	RequestID  string `json:"request_id,omitempty"`
	ExportedAt string `json:"exported_at" example:"2024-01-04T09:15:00Z"`
}

type ListExportsResponse struct {
	Limit   int              `json:"limit" example:"20"`
	Exports []ExportResponse `json:"exports"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"audit_disabled"`
	Message string `json:"message,omitempty" example:"export audit is disabled"`
}
