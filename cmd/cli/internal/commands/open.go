package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/session"
)

// RedirectError is returned when a command is not available to the current
// session. Location is where the session belongs instead.
type RedirectError struct {
	Page     string
	Location string
}

func (e *RedirectError) Error() string {
	switch e.Location {
	case route.PathSWOT:
		return fmt.Sprintf("%s requires a completed SWOT analysis, continue at %s", e.Page, e.Location)
	default:
		return fmt.Sprintf("%s is not available for this account, continue at %s", e.Page, e.Location)
	}
}

// authorize checks the current session against req for page.
func authorize(app *App, page string, req route.Requirements) (session.Session, error) {
	s := app.Session()
	d := route.Authorize(page, s, req)

	switch d.Kind {
	case route.Authorized:
		return s, nil
	case route.Unauthenticated:
		return s, ErrNotSignedIn
	default:
		return s, &RedirectError{Page: page, Location: d.Location}
	}
}

type OpenCmd struct {
	Path string `arg:"" help:"Page to open" default:"/"`
}

func (o *OpenCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	return openPath(ctx, app, o.Path)
}

// openPath follows redirects from path for the current session and renders
// the page navigation settles on.
func openPath(ctx context.Context, app *App, path string) error {
	tr, err := route.Navigate(path, app.Session())
	if err != nil {
		return err
	}

	if tr.Redirected() {
		fmt.Fprintf(app.Out, "%s -> %s\n\n", tr.Requested, strings.Join(tr.Hops, " -> "))
	}

	if tr.Decision.Kind == route.Loading {
		fmt.Fprintln(app.Out, "Loading...")
		return nil
	}

	switch tr.Path {
	case route.PathSignIn:
		renderSignIn(app.Out, tr.From)
		return nil
	case route.PathSignUp:
		fmt.Fprintln(app.Out, "Create an account:")
		fmt.Fprintln(app.Out, "  skillsync signup student --help")
		fmt.Fprintln(app.Out, "  skillsync signup teacher --help")
		return nil
	case route.PathSWOT:
		return showSWOT(ctx, app)
	case route.PathDashboard:
		return showDashboard(ctx, app, dashboardOptions{})
	default:
		printNext(app.Out, tr.Path)
		return nil
	}
}
