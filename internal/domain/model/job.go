package model

import "time"

// EvaluationJob asks for every achievement threshold of a subject to be
// re-checked for a period.
type EvaluationJob struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subjectId"`
	TeamID      string    `json:"teamId,omitempty"`
	Period      Period    `json:"period"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Key identifies jobs that would do the same work.
func (j EvaluationJob) Key() string {
	return j.SubjectID + "|" + j.Period.Key()
}
