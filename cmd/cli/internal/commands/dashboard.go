package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/view"
)

type DashboardCmd struct {
	Watch    bool          `help:"Keep polling and redraw on every update" default:"false"`
	Interval time.Duration `help:"Poll interval in watch mode (defaults to the config file)"`
	Insights bool          `help:"Also fetch AI insights" default:"false"`
	WaitFor  time.Duration `name:"wait-for" help:"How long to wait for the backend before watching" default:"30s"`
}

func (d *DashboardCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	return showDashboard(ctx, app, dashboardOptions{
		watch:    d.Watch,
		interval: d.Interval,
		insights: d.Insights,
		waitFor:  d.WaitFor,
	})
}

type dashboardOptions struct {
	watch    bool
	interval time.Duration
	insights bool
	waitFor  time.Duration
}

func showDashboard(ctx context.Context, app *App, opts dashboardOptions) error {
	tr, err := route.Navigate(route.PathDashboard, app.Session())
	if err != nil {
		return err
	}
	if tr.Path != route.PathDashboard {
		if tr.Path == route.PathSignIn {
			return ErrNotSignedIn
		}
		return &RedirectError{Page: route.PathDashboard, Location: tr.Path}
	}

	s := app.Session()
	if s.IsTeacher() {
		td, err := view.NewTeacherDashboard(s)
		if err != nil {
			return err
		}
		renderTeacherDashboard(app.Out, td)
		return nil
	}

	interval := opts.interval
	if interval == 0 {
		interval = app.Config.Dashboard.PollInterval
	}

	cfg := view.StudentDashboardConfig{
		Session:         s,
		Activity:        app.ActivitySource(ctx),
		Backend:         app.Client,
		Interval:        interval,
		LogLimit:        app.Config.Dashboard.LogLimit,
		AssessmentLimit: app.Config.Dashboard.AssessmentLimit,
	}

	if !opts.watch {
		dash, err := view.NewStudentDashboard(cfg)
		if err != nil {
			return err
		}
		if err := dash.Refresh(ctx); err != nil {
			log.Debug().Err(err).Msg("dashboard refresh incomplete")
		}
		if opts.insights {
			if err := dash.LoadInsights(ctx); err != nil {
				log.Debug().Err(err).Msg("insights unavailable")
			}
		}
		return renderStudentDashboard(app.Out, dash.Snapshot(), time.Now())
	}

	if opts.waitFor > 0 {
		if err := app.Client.WaitReady(ctx, opts.waitFor); err != nil {
			return fmt.Errorf("backend not ready: %w", err)
		}
	}

	cfg.OnChange = func(snap view.StudentSnapshot) {
		fmt.Fprint(app.Out, clearScreen)
		if err := renderStudentDashboard(app.Out, snap, time.Now()); err != nil {
			log.Warn().Err(err).Msg("failed to render dashboard")
		}
	}

	dash, err := view.NewStudentDashboard(cfg)
	if err != nil {
		return err
	}

	if opts.insights {
		if err := dash.LoadInsights(ctx); err != nil {
			log.Debug().Err(err).Msg("insights unavailable")
		}
	}

	dash.Start(ctx)
	defer dash.Stop()

	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}
