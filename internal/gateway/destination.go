package gateway

import (
	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/session"
)

// SignInDestination is where to go after signing in. A path the user was
// sent away from wins; otherwise students without a SWOT analysis go to the
// SWOT form and everyone else to the dashboard.
func SignInDestination(res Result, from string) string {
	if from != "" {
		from = route.Clean(from)
		if from != route.PathSignIn && from != route.PathSignUp {
			return from
		}
	}
	if res.Role == session.RoleStudent && !res.SWOTComplete {
		return route.PathSWOT
	}
	return route.PathDashboard
}

// SignUpDestination is where a newly registered user goes.
func SignUpDestination(role session.Role) string {
	if role == session.RoleTeacher {
		return route.PathDashboard
	}
	return route.PathSWOT
}
