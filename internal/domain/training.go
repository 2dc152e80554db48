package domain

import "time"

// TrainingJobHandle is the executor-side view of a job: its id, the raw
// coarse state string and timestamps. It is never persisted beyond the id;
// the Registry owns the canonical project status.
type TrainingJobHandle struct {
	JobID        string     `json:"job_id"`
	DisplayName  string     `json:"display_name,omitempty"`
	State        string     `json:"state"`
	CreateTime   *time.Time `json:"create_time,omitempty"`
	StartTime    *time.Time `json:"start_time,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
}

// TrainingParams is the submission payload: the dataset handle plus the
// media-mix column groups the training container consumes.
type TrainingParams struct {
	ProjectName   string   `json:"projectName"`
	UserEmail     string   `json:"userEmail"`
	DataSource    string   `json:"dataSource"`
	Time          []string `json:"time"`
	Geo           []string `json:"geo"`
	Controls      []string `json:"controls"`
	Population    []string `json:"population"`
	KPI           []string `json:"kpi"`
	RevenuePerKPI []string `json:"revenuePerKpi"`
	Media         []string `json:"media"`
	MediaSpend    []string `json:"mediaSpend"`
}
