package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillsync/skillsync/internal/api/apitest"
	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/swot"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type fixture struct {
	backend *apitest.Backend
	dir     string
	out     *syncBuffer
	globals *Globals
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := apitest.NewBackend(t)
	dir := t.TempDir()
	out := &syncBuffer{}
	return &fixture{
		backend: backend,
		dir:     dir,
		out:     out,
		globals: &Globals{
			Version:    "test",
			ConfigPath: filepath.Join(dir, "config.yaml"),
			APIURL:     backend.URL(),
			StorageDir: dir,
			Out:        out,
		},
	}
}

type runner interface {
	Run(ctx context.Context, globals *Globals) error
}

func (f *fixture) run(t *testing.T, cmd runner) (string, error) {
	t.Helper()
	f.out.Reset()
	err := cmd.Run(context.Background(), f.globals)
	return f.out.String(), err
}

func (f *fixture) signIn(t *testing.T, email, password string) string {
	t.Helper()
	out, err := f.run(t, &SignInCmd{Email: email, Password: password})
	require.NoError(t, err)
	return out
}

func completedSWOT() *swot.Document {
	doc := swot.Default()
	doc.Strengths.Technical = []string{"Go", "SQL"}
	doc.Threats.Time = []string{"Part-time job"}
	return &doc
}

func TestSignIn(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, ProfileComplete: true})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.run(t, &SignInCmd{Email: "a@b.com", Password: "nope"})
		require.EqualError(t, err, "Invalid email or password")
	})

	t.Run("student without swot goes to swot", func(t *testing.T) {
		out := f.signIn(t, "a@b.com", "pw")
		assert.Contains(t, out, "Signed in as a@b.com (student).")
		assert.Contains(t, out, "Next: /swot")
		assert.FileExists(t, filepath.Join(f.dir, "session.json"))
	})

	t.Run("returns to requested page", func(t *testing.T) {
		out, err := f.run(t, &SignInCmd{Email: "a@b.com", Password: "pw", From: "/dashboard?tab=1"})
		require.NoError(t, err)
		assert.Contains(t, out, "Next: /dashboard")
	})
}

func TestSignUp(t *testing.T) {
	t.Run("teacher", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.run(t, &SignUpTeacherCmd{
			FullName:   "Ada Teacher",
			Email:      "t@b.com",
			Password:   "pw",
			Mobile:     "9999999999",
			Department: "Computer",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Account created for t@b.com (teacher).")
		assert.Contains(t, out, "Next: /dashboard")

		out, err = f.run(t, &DashboardCmd{})
		require.NoError(t, err)
		assert.Contains(t, out, "Welcome, Teacher")
		assert.Contains(t, out, "MANAGE STUDENTS")
	})

	t.Run("student", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.run(t, &SignUpStudentCmd{
			FullName:     "Sam Student",
			Email:        "s@b.com",
			Password:     "pw",
			Mobile:       "9999999999",
			PRN:          "PRN1",
			Department:   "Computer",
			YearSemester: "SE - Sem 4",
			Skills:       []string{"Go"},
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Next: /swot")
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "t@b.com", Password: "pw", Role: session.RoleTeacher})
		_, err := f.run(t, &SignUpTeacherCmd{FullName: "A", Email: "t@b.com", Password: "pw", Mobile: "1", Department: "D"})
		require.EqualError(t, err, "Email already registered")
	})
}

func TestWhoAmI(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, &WhoAmICmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")

	acc := f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, ProfileComplete: true, SWOT: completedSWOT()})
	f.signIn(t, "a@b.com", "pw")

	out, err = f.run(t, &WhoAmICmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "a@b.com")
	assert.Contains(t, out, acc.ID)
	assert.Contains(t, out, "student")
	assert.NotContains(t, out, "tok-")
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent})
	f.signIn(t, "a@b.com", "pw")

	out, err := f.run(t, &SignOutCmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")
	assert.NoFileExists(t, filepath.Join(f.dir, "session.json"))

	out, err = f.run(t, &WhoAmICmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
}

func TestRevokedTokenIsDiscarded(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, Token: "tok1"})
	f.signIn(t, "a@b.com", "pw")

	f.backend.Revoke("tok1")

	out, err := f.run(t, &WhoAmICmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in.")
	assert.NoFileExists(t, filepath.Join(f.dir, "session.json"))
}

func TestOpen(t *testing.T) {
	t.Run("signed out", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.run(t, &OpenCmd{Path: "/dashboard"})
		require.NoError(t, err)
		assert.Contains(t, out, "/dashboard -> /signin")
		assert.Contains(t, out, "--from /dashboard")
	})

	t.Run("unknown path", func(t *testing.T) {
		f := newFixture(t)
		out, err := f.run(t, &OpenCmd{Path: "/nowhere"})
		require.NoError(t, err)
		assert.Contains(t, out, "/nowhere -> / -> /signin")
	})

	t.Run("student without swot", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent})
		f.signIn(t, "a@b.com", "pw")

		out, err := f.run(t, &OpenCmd{Path: "/dashboard"})
		require.NoError(t, err)
		assert.Contains(t, out, "/dashboard -> /swot")
		assert.Contains(t, out, "No SWOT analysis saved yet.")
	})

	t.Run("teacher on swot", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "t@b.com", Password: "pw", Role: session.RoleTeacher})
		f.signIn(t, "t@b.com", "pw")

		out, err := f.run(t, &OpenCmd{Path: "/swot"})
		require.NoError(t, err)
		assert.Contains(t, out, "/swot -> /dashboard")
		assert.Contains(t, out, "Welcome, Teacher")
	})
}

func TestSWOT(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, ProfileComplete: true})

	t.Run("requires sign in", func(t *testing.T) {
		_, err := f.run(t, &SWOTShowCmd{})
		require.ErrorIs(t, err, ErrNotSignedIn)
	})

	f.signIn(t, "a@b.com", "pw")

	t.Run("template", func(t *testing.T) {
		out, err := f.run(t, &SWOTTemplateCmd{})
		require.NoError(t, err)
		doc, err := swot.ParseYAML([]byte(out))
		require.NoError(t, err)
		assert.True(t, doc.Empty())
	})

	t.Run("save then show", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "swot.yaml")
		data := `
strengths:
  technical: [Go, " Go ", SQL]
  soft: [Communication]
  subjects: []
weaknesses: {subjects: [], habits: [Procrastination], gaps: []}
opportunities: {internships: [], certs: [], projects: [CLI tools], competitions: []}
threats: {time: [], resources: [], distractions: [], confidence: []}
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		out, err := f.run(t, &SWOTSaveCmd{File: path})
		require.NoError(t, err)
		assert.Contains(t, out, "SWOT analysis saved (5 entries).")
		assert.Contains(t, out, "Next: /dashboard")

		acc, ok := f.backend.Account("a@b.com")
		require.True(t, ok)
		require.NotNil(t, acc.SWOT)
		assert.Equal(t, []string{"Go", "SQL"}, acc.SWOT.Strengths.Technical)

		out, err = f.run(t, &SWOTShowCmd{})
		require.NoError(t, err)
		assert.Contains(t, out, "Go, SQL")
		assert.Contains(t, out, "Procrastination")
	})

	t.Run("missing category", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "swot.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"strengths":{}}`), 0o600))

		_, err := f.run(t, &SWOTSaveCmd{File: path})
		require.ErrorIs(t, err, swot.ErrMissingCategory)
	})
}

func TestDashboard(t *testing.T) {
	t.Run("student without database", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, ProfileComplete: true, SWOT: completedSWOT()})
		f.signIn(t, "a@b.com", "pw")

		out, err := f.run(t, &DashboardCmd{})
		require.NoError(t, err)
		assert.Contains(t, out, "Student Dashboard: a@b.com")
		assert.Contains(t, out, "Connection error")
		assert.Contains(t, out, "no activity database configured")
		assert.Contains(t, out, "SWOT ANALYSIS")
	})

	t.Run("student needs swot", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent})
		f.signIn(t, "a@b.com", "pw")

		_, err := f.run(t, &DashboardCmd{})
		var redirect *RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, route.PathSWOT, redirect.Location)
	})

	t.Run("signed out", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.run(t, &DashboardCmd{})
		require.ErrorIs(t, err, ErrNotSignedIn)
	})

	t.Run("watch until cancelled", func(t *testing.T) {
		f := newFixture(t)
		f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, SWOT: completedSWOT()})
		f.signIn(t, "a@b.com", "pw")
		f.out.Reset()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- (&DashboardCmd{Watch: true, Interval: time.Second, WaitFor: time.Second}).Run(ctx, f.globals)
		}()

		require.Eventually(t, func() bool {
			return bytes.Contains([]byte(f.out.String()), []byte("Student Dashboard"))
		}, 5*time.Second, 10*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("dashboard did not stop")
		}
	})
}

func TestInsightsAndEvaluate(t *testing.T) {
	f := newFixture(t)
	f.backend.AddAccount(apitest.Account{Email: "a@b.com", Password: "pw", Role: session.RoleStudent, SWOT: completedSWOT()})
	f.backend.AddAccount(apitest.Account{Email: "t@b.com", Password: "pw", Role: session.RoleTeacher})

	f.signIn(t, "a@b.com", "pw")

	out, err := f.run(t, &InsightsCmd{})
	require.NoError(t, err)
	assert.Contains(t, out, "AI INSIGHTS")
	assert.Contains(t, out, "No activity recorded yet.")

	out, err = f.run(t, &EvaluateCmd{Question: "How would you index this table?", Answer: "Add a composite index on user and date"})
	require.NoError(t, err)
	assert.Contains(t, out, "Problem solving:")
	assert.Contains(t, out, "Recommended next topic: Indexing strategies")

	f.signIn(t, "t@b.com", "pw")

	_, err = f.run(t, &EvaluateCmd{Question: "q", Answer: "a"})
	var redirect *RedirectError
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, route.PathDashboard, redirect.Location)

	_, err = f.run(t, &InsightsCmd{})
	require.ErrorAs(t, err, &redirect)
}
