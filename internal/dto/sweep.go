package dto

// SweepRunResponse 对账任务运行记录
type SweepRunResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	RunDate    string  `json:"run_date"`
	Status     string  `json:"status"`
	Affected   int     `json:"affected"`
	Error      *string `json:"error,omitempty"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
}
