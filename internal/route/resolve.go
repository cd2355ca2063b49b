package route

import (
	"fmt"

	"github.com/skillsync/skillsync/internal/session"
)

// Table maps guarded paths to their requirements.
type Table map[string]Requirements

// DefaultTable returns the application's guarded paths.
func DefaultTable() Table {
	return Table{
		PathSWOT:      {},
		PathDashboard: {},
	}
}

// Resolve evaluates a path at the top level using the default table.
func Resolve(path string, s session.Session) Decision {
	return DefaultTable().Resolve(path, s)
}

// Navigate follows redirects from path using the default table.
func Navigate(path string, s session.Session) (Trace, error) {
	return DefaultTable().Navigate(path, s)
}

// Resolve evaluates a path at the top level. The root redirects by
// authentication state, sign-in and sign-up are public but bounce signed in
// users to the dashboard, guarded paths go through Authorize and anything
// else redirects to the root.
func (t Table) Resolve(path string, s session.Session) Decision {
	path = Clean(path)

	if s.Loading {
		return Decision{Kind: Loading}
	}

	switch path {
	case PathRoot:
		if s.Authenticated() {
			return Decision{Kind: Redirect, Location: PathDashboard}
		}
		return Decision{Kind: Redirect, Location: PathSignIn}
	case PathSignIn, PathSignUp:
		if s.Authenticated() {
			return Decision{Kind: Redirect, Location: PathDashboard}
		}
		return Decision{Kind: Authorized}
	}

	if req, ok := t[path]; ok {
		return Authorize(path, s, req)
	}

	return Decision{Kind: Redirect, Location: PathRoot}
}

// Trace records how a navigation settled.
type Trace struct {
	// Requested is the path navigation started from.
	Requested string
	// Path is where navigation settled.
	Path string
	// From is the path a sign-in redirect carried, if any.
	From string
	// Decision is the terminal decision for Path.
	Decision Decision
	// Hops lists every redirect target in order.
	Hops []string
}

// Redirected reports whether navigation left the requested path.
func (tr Trace) Redirected() bool {
	return len(tr.Hops) > 0
}

// Navigate follows redirects from path until a terminal decision. It fails
// with ErrRedirectLoop if that takes more than the hop cap.
func (t Table) Navigate(path string, s session.Session) (Trace, error) {
	path = Clean(path)
	tr := Trace{Requested: path}

	for {
		d := t.Resolve(path, s)
		if d.Terminal() {
			tr.Path = path
			tr.Decision = d
			return tr, nil
		}
		if len(tr.Hops) == maxHops {
			return tr, fmt.Errorf("%w: %v", ErrRedirectLoop, append([]string{tr.Requested}, tr.Hops...))
		}
		if d.Kind == Unauthenticated && tr.From == "" {
			tr.From = d.From
		}
		path = d.Location
		tr.Hops = append(tr.Hops, path)
	}
}
