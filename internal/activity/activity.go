// Package activity reads a student's recent activity logs and scored
// assessments. It never writes.
package activity

import (
	"context"
	"errors"
	"time"
)

// Defaults used by the student dashboard.
const (
	DefaultLogLimit        = 20
	DefaultAssessmentLimit = 10
)

// Sentinel errors
var (
	// ErrUnavailable is returned when the database cannot be reached.
	ErrUnavailable = errors.New("activity source unavailable")

	// ErrQuery is returned when a query fails for any other reason.
	ErrQuery = errors.New("activity query failed")
)

// Log is one summarized stretch of student activity.
type Log struct {
	Summary  string    `json:"summary"`
	LoggedAt time.Time `json:"logged_at"`
}

// Assessment is a graded answer to a scenario question.
type Assessment struct {
	ScenarioQuestion       string    `json:"scenario_question"`
	ProblemSolvingScore    float64   `json:"problem_solving_score"`
	ConceptualClarityScore float64   `json:"conceptual_clarity_score"`
	PracticalSkillScore    float64   `json:"practical_skill_score"`
	Feedback               string    `json:"feedback"`
	RecommendedNextTopic   string    `json:"recommended_next_topic"`
	CreatedAt              time.Time `json:"created_at"`
}

// Source returns the most recent records for a user, newest first.
type Source interface {
	RecentLogs(ctx context.Context, userID string, limit int) ([]Log, error)
	RecentAssessments(ctx context.Context, userID string, limit int) ([]Assessment, error)
}

// Averages are the mean assessment scores.
type Averages struct {
	ProblemSolving    float64
	ConceptualClarity float64
	PracticalSkill    float64
}

// Average computes the mean of each score. It returns zeros for no assessments.
func Average(assessments []Assessment) Averages {
	if len(assessments) == 0 {
		return Averages{}
	}

	var avg Averages
	for _, a := range assessments {
		avg.ProblemSolving += a.ProblemSolvingScore
		avg.ConceptualClarity += a.ConceptualClarityScore
		avg.PracticalSkill += a.PracticalSkillScore
	}

	n := float64(len(assessments))
	avg.ProblemSolving /= n
	avg.ConceptualClarity /= n
	avg.PracticalSkill /= n

	return avg
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return limit
}
