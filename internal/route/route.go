// Package route decides, from the current session, whether a path may be
// rendered, must wait for identity resolution, or redirects elsewhere.
package route

import (
	"errors"
	"strings"

	"github.com/skillsync/skillsync/internal/session"
)

// Known paths.
const (
	PathRoot      = "/"
	PathSignIn    = "/signin"
	PathSignUp    = "/signup"
	PathSWOT      = "/swot"
	PathDashboard = "/dashboard"
)

// maxHops bounds Navigate. Any path in the default table settles in three.
const maxHops = 4

// ErrRedirectLoop is returned when redirects do not settle within the hop cap.
var ErrRedirectLoop = errors.New("redirect loop")

// Kind is the outcome of evaluating a navigation.
type Kind int

const (
	// Loading means identity is still being resolved; show a placeholder.
	Loading Kind = iota
	// Unauthenticated redirects to sign-in carrying the requested path.
	Unauthenticated
	// Redirect sends the user to Location.
	Redirect
	// Authorized renders the requested path.
	Authorized
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Unauthenticated:
		return "unauthenticated"
	case Redirect:
		return "redirect"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Decision is the result of Authorize or Resolve. Location is set for
// Unauthenticated and Redirect; From is the path sign-in should return to.
type Decision struct {
	Kind     Kind
	Location string
	From     string
}

// Terminal reports whether the decision renders something instead of redirecting.
func (d Decision) Terminal() bool {
	return d.Kind == Loading || d.Kind == Authorized
}

// Requirements are the optional capabilities a guarded path can declare.
type Requirements struct {
	// Role restricts the path to one role. Empty allows both.
	Role session.Role
	// SWOTComplete requires students to have saved a SWOT analysis.
	SWOTComplete bool
}

// Authorize evaluates a guarded path. The checks run in a fixed order:
// loading first, then authentication, then the role specific rules, then
// the path's declared requirements.
func Authorize(path string, s session.Session, req Requirements) Decision {
	path = Clean(path)

	if s.Loading {
		return Decision{Kind: Loading}
	}
	if s.User == nil {
		return Decision{Kind: Unauthenticated, Location: PathSignIn, From: path}
	}
	if path == PathSWOT && s.User.Role == session.RoleTeacher {
		return Decision{Kind: Redirect, Location: PathDashboard}
	}
	if path == PathDashboard && s.NeedsSWOT() {
		return Decision{Kind: Redirect, Location: PathSWOT}
	}
	if req.Role != "" && s.User.Role != req.Role {
		return Decision{Kind: Redirect, Location: PathDashboard}
	}
	if req.SWOTComplete && s.NeedsSWOT() {
		return Decision{Kind: Redirect, Location: PathSWOT}
	}
	return Decision{Kind: Authorized}
}

// Clean drops any query or fragment and trailing slashes from p.
func Clean(p string) string {
	p, _, _ = strings.Cut(p, "#")
	p, _, _ = strings.Cut(p, "?")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return PathRoot
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
