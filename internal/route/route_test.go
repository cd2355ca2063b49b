package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/session"
)

func loading() session.Session { return session.Session{Loading: true} }

func student(swotComplete bool) session.Session {
	return session.Session{
		Token: "tok1",
		User:  &session.User{ID: "u1", Email: "a@b.com", Role: session.RoleStudent, SWOTComplete: swotComplete},
	}
}

func teacher() session.Session {
	return session.Session{
		Token: "tok2",
		User:  &session.User{ID: "u2", Email: "t@b.com", Role: session.RoleTeacher, ProfileComplete: true, SWOTComplete: true},
	}
}

var guarded = []string{PathSWOT, PathDashboard}

func TestAuthorize(t *testing.T) {
	t.Run("loading wins over everything", func(t *testing.T) {
		s := teacher()
		s.Loading = true
		for _, p := range guarded {
			assert.Equal(t, Decision{Kind: Loading}, Authorize(p, s, Requirements{}))
		}
		assert.Equal(t, Decision{Kind: Loading}, Authorize(PathDashboard, loading(), Requirements{Role: session.RoleTeacher}))
	})

	t.Run("logged out redirects to sign-in carrying the path", func(t *testing.T) {
		for _, p := range guarded {
			d := Authorize(p, session.LoggedOut(), Requirements{})
			assert.Equal(t, Decision{Kind: Unauthenticated, Location: PathSignIn, From: p}, d)
		}
	})

	t.Run("teacher on swot goes to dashboard", func(t *testing.T) {
		d := Authorize(PathSWOT, teacher(), Requirements{})
		assert.Equal(t, Decision{Kind: Redirect, Location: PathDashboard}, d)
	})

	t.Run("teacher exempt from swot gate", func(t *testing.T) {
		s := teacher()
		s.User.SWOTComplete = false
		assert.Equal(t, Authorized, Authorize(PathDashboard, s, Requirements{}).Kind)
	})

	t.Run("student without swot on dashboard goes to swot", func(t *testing.T) {
		d := Authorize(PathDashboard, student(false), Requirements{})
		assert.Equal(t, Decision{Kind: Redirect, Location: PathSWOT}, d)
	})

	t.Run("student with swot reaches dashboard", func(t *testing.T) {
		assert.Equal(t, Authorized, Authorize(PathDashboard, student(true), Requirements{}).Kind)
	})

	t.Run("student can always edit swot", func(t *testing.T) {
		assert.Equal(t, Authorized, Authorize(PathSWOT, student(false), Requirements{}).Kind)
		assert.Equal(t, Authorized, Authorize(PathSWOT, student(true), Requirements{}).Kind)
	})

	t.Run("declared role", func(t *testing.T) {
		req := Requirements{Role: session.RoleTeacher}
		assert.Equal(t, Decision{Kind: Redirect, Location: PathDashboard}, Authorize("/reports", student(true), req))
		assert.Equal(t, Authorized, Authorize("/reports", teacher(), req).Kind)
	})

	t.Run("declared swot requirement", func(t *testing.T) {
		req := Requirements{SWOTComplete: true}
		assert.Equal(t, Decision{Kind: Redirect, Location: PathSWOT}, Authorize("/insights", student(false), req))
		assert.Equal(t, Authorized, Authorize("/insights", student(true), req).Kind)
		assert.Equal(t, Authorized, Authorize("/insights", teacher(), req).Kind)
	})

	t.Run("unauthenticated before requirements", func(t *testing.T) {
		d := Authorize("/reports", session.LoggedOut(), Requirements{Role: session.RoleTeacher})
		assert.Equal(t, Unauthenticated, d.Kind)
		assert.Equal(t, "/reports", d.From)
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		path string
		s    session.Session
		want Decision
	}{
		{"root logged out", "/", session.LoggedOut(), Decision{Kind: Redirect, Location: PathSignIn}},
		{"root signed in", "/", student(false), Decision{Kind: Redirect, Location: PathDashboard}},
		{"root loading", "/", loading(), Decision{Kind: Loading}},
		{"signin logged out", "/signin", session.LoggedOut(), Decision{Kind: Authorized}},
		{"signup logged out", "/signup", session.LoggedOut(), Decision{Kind: Authorized}},
		{"signin signed in", "/signin", teacher(), Decision{Kind: Redirect, Location: PathDashboard}},
		{"unknown path", "/nope", student(true), Decision{Kind: Redirect, Location: PathRoot}},
		{"unknown path logged out", "/admin/x", session.LoggedOut(), Decision{Kind: Redirect, Location: PathRoot}},
		{"guarded", "/dashboard", session.LoggedOut(), Decision{Kind: Unauthenticated, Location: PathSignIn, From: PathDashboard}},
		{"trailing slash and query", "/dashboard/?tab=scores", student(true), Decision{Kind: Authorized}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.path, tt.s))
		})
	}
}

func TestNavigate(t *testing.T) {
	t.Run("unknown path settles within two top level redirects", func(t *testing.T) {
		for _, s := range []session.Session{session.LoggedOut(), student(true), teacher()} {
			tr, err := Navigate("/does-not-exist", s)
			require.NoError(t, err)
			assert.Equal(t, Authorized, tr.Decision.Kind)
			assert.LessOrEqual(t, len(tr.Hops), 2)
		}
	})

	t.Run("unknown path for student without swot", func(t *testing.T) {
		tr, err := Navigate("/does-not-exist", student(false))
		require.NoError(t, err)
		assert.Equal(t, []string{PathRoot, PathDashboard, PathSWOT}, tr.Hops)
		assert.Equal(t, PathSWOT, tr.Path)
	})

	t.Run("logged out lands on sign-in with from", func(t *testing.T) {
		tr, err := Navigate("/dashboard", session.LoggedOut())
		require.NoError(t, err)
		assert.Equal(t, PathSignIn, tr.Path)
		assert.Equal(t, PathDashboard, tr.From)
		assert.True(t, tr.Redirected())
	})

	t.Run("teacher on swot", func(t *testing.T) {
		tr, err := Navigate("/swot", teacher())
		require.NoError(t, err)
		assert.Equal(t, PathDashboard, tr.Path)
		assert.Equal(t, []string{PathDashboard}, tr.Hops)
	})

	t.Run("loading is terminal", func(t *testing.T) {
		tr, err := Navigate("/dashboard", loading())
		require.NoError(t, err)
		assert.Equal(t, Loading, tr.Decision.Kind)
		assert.False(t, tr.Redirected())
	})

	t.Run("authorized without redirects", func(t *testing.T) {
		tr, err := Navigate("/dashboard", student(true))
		require.NoError(t, err)
		assert.Equal(t, PathDashboard, tr.Path)
		assert.Empty(t, tr.Hops)
	})

	t.Run("conflicting requirements loop", func(t *testing.T) {
		table := DefaultTable()
		table[PathSWOT] = Requirements{Role: session.RoleTeacher}

		_, err := table.Navigate("/dashboard", student(false))
		assert.ErrorIs(t, err, ErrRedirectLoop)
	})
}

func TestClean(t *testing.T) {
	assert.Equal(t, "/", Clean(""))
	assert.Equal(t, "/", Clean("/"))
	assert.Equal(t, "/swot", Clean("swot"))
	assert.Equal(t, "/swot", Clean("/swot/"))
	assert.Equal(t, "/signin", Clean("/signin?from=/dashboard#top"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "authorized", Authorized.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
