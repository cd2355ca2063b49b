package view

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/skillsync/skillsync/internal/activity"
	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/poller"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/swot"
	"github.com/skillsync/skillsync/internal/telemetry"
)

// ErrNotStudent is returned when a student dashboard is built for another session.
var ErrNotStudent = errors.New("student dashboard requires a signed in student")

// StudentBackend is the part of the backend the student dashboard reads.
type StudentBackend interface {
	GetSWOT(ctx context.Context, token string) (swot.Document, bool, error)
	ActivityInsights(ctx context.Context, userID string) (*api.Insights, error)
}

// StudentDashboardConfig configures a StudentDashboard.
type StudentDashboardConfig struct {
	Session  session.Session
	Activity activity.Source
	Backend  StudentBackend

	// Interval between activity polls. Defaults to poller.DefaultInterval.
	Interval        time.Duration
	LogLimit        int
	AssessmentLimit int

	// OnChange is called after every update with the new snapshot.
	OnChange func(StudentSnapshot)
}

// StudentSnapshot is a consistent copy of the dashboard state.
type StudentSnapshot struct {
	User        session.User
	Loading     bool
	Logs        []activity.Log
	Assessments []activity.Assessment
	Averages    activity.Averages
	SWOT        *swot.Document
	Insights    *api.Insights
	Err         *DataFetchError
	UpdatedAt   time.Time
}

// StudentDashboard polls a student's activity and assessments, loads their
// SWOT analysis once and fetches AI insights on demand. Failures keep the
// previous data and surface as a dismissable error.
type StudentDashboard struct {
	cfg     StudentDashboardConfig
	user    session.User
	token   string
	task    *poller.Task
	metrics *telemetry.Metrics

	mu        sync.Mutex
	snap      StudentSnapshot
	swotDone  bool
	activeSet bool
}

// NewStudentDashboard creates a dashboard for the signed in student.
func NewStudentDashboard(cfg StudentDashboardConfig) (*StudentDashboard, error) {
	s := cfg.Session
	if s.User == nil || s.User.Role != session.RoleStudent {
		return nil, ErrNotStudent
	}
	if cfg.Activity == nil || cfg.Backend == nil {
		return nil, fmt.Errorf("activity source and backend are required")
	}
	if cfg.LogLimit <= 0 {
		cfg.LogLimit = activity.DefaultLogLimit
	}
	if cfg.AssessmentLimit <= 0 {
		cfg.AssessmentLimit = activity.DefaultAssessmentLimit
	}

	d := &StudentDashboard{
		cfg:     cfg,
		user:    *s.User,
		token:   s.Token,
		metrics: telemetry.GetMetrics(),
		snap: StudentSnapshot{
			User:        *s.User,
			Loading:     true,
			Logs:        []activity.Log{},
			Assessments: []activity.Assessment{},
		},
	}
	d.task = poller.New("student-dashboard", cfg.Interval, func(ctx context.Context) {
		_ = d.Refresh(ctx)
	})

	return d, nil
}

// Start begins polling. The first poll runs immediately.
func (d *StudentDashboard) Start(ctx context.Context) {
	d.mu.Lock()
	if !d.activeSet {
		d.activeSet = true
		d.metrics.ActiveDashboards.Add(ctx, 1)
	}
	d.mu.Unlock()

	d.task.Start(ctx)
}

// Stop ends polling and waits for an in-flight poll to finish.
func (d *StudentDashboard) Stop() {
	d.task.Stop()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.activeSet {
		d.activeSet = false
		d.metrics.ActiveDashboards.Add(context.Background(), -1)
	}
}

// Refresh runs one poll: activity logs and assessments in parallel, plus
// the SWOT analysis until it has loaded once.
func (d *StudentDashboard) Refresh(ctx context.Context) error {
	started := time.Now()

	var (
		logs        []activity.Log
		assessments []activity.Assessment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		logs, err = d.cfg.Activity.RecentLogs(gctx, d.user.ID, d.cfg.LogLimit)
		if err != nil {
			return &DataFetchError{Source: SourceActivityLogs, Err: err}
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assessments, err = d.cfg.Activity.RecentAssessments(gctx, d.user.ID, d.cfg.AssessmentLimit)
		if err != nil {
			return &DataFetchError{Source: SourceAssessments, Err: err}
		}
		return nil
	})
	err := g.Wait()

	swotErr := d.loadSWOT(ctx)

	d.metrics.RecordPoll(ctx, started, err != nil || swotErr != nil)

	d.update(func(s *StudentSnapshot) {
		s.Loading = false
		if err == nil {
			s.Logs = logs
			s.Assessments = assessments
			s.Averages = activity.Average(assessments)
			s.UpdatedAt = time.Now()
		}
		if fetchErr := firstFetchError(err, swotErr); fetchErr != nil {
			s.Err = fetchErr
		}
	})

	if err != nil {
		log.Debug().Err(err).Str("user_id", d.user.ID).Msg("dashboard poll failed")
		return err
	}
	return swotErr
}

func (d *StudentDashboard) loadSWOT(ctx context.Context) error {
	d.mu.Lock()
	done := d.swotDone
	d.mu.Unlock()
	if done {
		return nil
	}

	doc, found, err := d.cfg.Backend.GetSWOT(ctx, d.token)
	if err != nil {
		return &DataFetchError{Source: SourceSWOT, Err: err}
	}

	d.mu.Lock()
	d.swotDone = true
	if found {
		d.snap.SWOT = &doc
	}
	d.mu.Unlock()

	return nil
}

// LoadInsights asks the backend for AI insights about the student's activity.
func (d *StudentDashboard) LoadInsights(ctx context.Context) error {
	d.metrics.InsightsFetchTotal.Add(ctx, 1)

	insights, err := d.cfg.Backend.ActivityInsights(ctx, d.user.ID)
	if err != nil {
		fetchErr := &DataFetchError{Source: SourceInsights, Err: err}
		d.update(func(s *StudentSnapshot) {
			s.Insights = nil
			s.Err = fetchErr
		})
		return fetchErr
	}

	d.update(func(s *StudentSnapshot) { s.Insights = insights })
	return nil
}

// Dismiss clears the connection error. Data is kept.
func (d *StudentDashboard) Dismiss() {
	d.update(func(s *StudentSnapshot) { s.Err = nil })
}

// Snapshot returns a copy of the current state.
func (d *StudentDashboard) Snapshot() StudentSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap.copy()
}

func (d *StudentDashboard) update(fn func(s *StudentSnapshot)) {
	d.mu.Lock()
	fn(&d.snap)
	snap := d.snap.copy()
	d.mu.Unlock()

	if d.cfg.OnChange != nil {
		d.cfg.OnChange(snap)
	}
}

func (s StudentSnapshot) copy() StudentSnapshot {
	s.Logs = slices.Clone(s.Logs)
	s.Assessments = slices.Clone(s.Assessments)
	return s
}

func firstFetchError(errs ...error) *DataFetchError {
	for _, err := range errs {
		var fetchErr *DataFetchError
		if errors.As(err, &fetchErr) {
			return fetchErr
		}
	}
	return nil
}
