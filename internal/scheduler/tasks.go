package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskReportArchive = "reports.archive"

// ReportArchivePayload carries everything needed to rebuild a report for
// the requesting user outside the HTTP request.
type ReportArchivePayload struct {
	UserID      string              `json:"userId"`
	Roles       []string            `json:"roles"`
	Permissions []string            `json:"permissions,omitempty"`
	ReportType  string              `json:"reportType"`
	Format      string              `json:"format"`
	Query       map[string][]string `json:"query,omitempty"`
	TimeZone    string              `json:"timeZone,omitempty"`
	RequestedAt time.Time           `json:"requestedAt"`
}

func NewReportArchiveTask(payload ReportArchivePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportArchive, data), nil
}

func ParseReportArchivePayload(task *asynq.Task) (ReportArchivePayload, error) {
	var payload ReportArchivePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReportArchivePayload{}, err
	}
	return payload, nil
}
