package view

import "fmt"

// Data sources named in DataFetchError.
const (
	SourceActivityLogs = "activity_logs"
	SourceAssessments  = "assessments"
	SourceSWOT         = "swot"
	SourceInsights     = "insights"
)

// DataFetchError is a dashboard collaborator failure. It is shown as a
// dismissable connection error and never affects the session.
type DataFetchError struct {
	Source string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Source, e.Err)
}

func (e *DataFetchError) Unwrap() error {
	return e.Err
}
