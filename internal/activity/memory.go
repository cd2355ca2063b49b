package activity

import (
	"context"
	"slices"
	"sync"
)

// MemorySource keeps records in process memory. Use it in tests or when no
// database is configured.
type MemorySource struct {
	mu          sync.RWMutex
	logs        map[string][]Log
	assessments map[string][]Assessment
}

// NewMemorySource creates an empty memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		logs:        make(map[string][]Log),
		assessments: make(map[string][]Assessment),
	}
}

// AddLog records an activity log for userID.
func (m *MemorySource) AddLog(userID string, l Log) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[userID] = append(m.logs[userID], l)
}

// AddAssessment records an assessment for userID.
func (m *MemorySource) AddAssessment(userID string, a Assessment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assessments[userID] = append(m.assessments[userID], a)
}

func (m *MemorySource) RecentLogs(ctx context.Context, userID string, limit int) ([]Log, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	logs := slices.Clone(m.logs[userID])
	m.mu.RUnlock()

	slices.SortStableFunc(logs, func(a, b Log) int { return b.LoggedAt.Compare(a.LoggedAt) })
	return head(logs, clampLimit(limit, DefaultLogLimit)), nil
}

func (m *MemorySource) RecentAssessments(ctx context.Context, userID string, limit int) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	assessments := slices.Clone(m.assessments[userID])
	m.mu.RUnlock()

	slices.SortStableFunc(assessments, func(a, b Assessment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return head(assessments, clampLimit(limit, DefaultAssessmentLimit)), nil
}

func head[T any](s []T, n int) []T {
	if s == nil {
		return []T{}
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
