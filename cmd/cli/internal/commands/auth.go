package commands

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/credentials"
	"github.com/skillsync/skillsync/internal/gateway"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/view"
)

type SignInCmd struct {
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password" required:"" env:"SKILLSYNC_PASSWORD"`
	From     string `help:"Page to return to after signing in" default:""`
}

func (s *SignInCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	var (
		form view.Form
		res  gateway.Result
	)
	err = form.Submit(ctx, func(ctx context.Context) error {
		res, err = app.Gateway.SignIn(ctx, s.Email, s.Password)
		return err
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Signed in as %s (%s).\n", s.Email, res.Role)
	printNext(app.Out, gateway.SignInDestination(res, s.From))
	return nil
}

type SignUpCmd struct {
	Student SignUpStudentCmd `cmd:"" help:"Create a student account"`
	Teacher SignUpTeacherCmd `cmd:"" help:"Create a teacher account"`
}

type SignUpStudentCmd struct {
	FullName      string   `help:"Full name" required:""`
	Email         string   `help:"Account email" required:""`
	Password      string   `help:"Account password" required:"" env:"SKILLSYNC_PASSWORD"`
	Mobile        string   `help:"Mobile number" required:""`
	PRN           string   `name:"prn" help:"Permanent registration number" required:""`
	Department    string   `help:"Department" required:""`
	YearSemester  string   `help:"Year and semester, e.g. 'SE - Sem 4'" required:""`
	Skills        []string `help:"Comma separated skills" sep:","`
	Interests     string   `help:"Interests"`
	CareerGoal    string   `help:"Career goal"`
	LearningStyle string   `help:"Preferred learning style"`
	StrengthAreas string   `help:"Strength areas"`
	WeakAreas     string   `help:"Weak areas"`
}

func (s *SignUpStudentCmd) Run(ctx context.Context, globals *Globals) error {
	req := api.StudentSignUp{
		FullName:      s.FullName,
		Email:         s.Email,
		Password:      s.Password,
		Mobile:        s.Mobile,
		PRN:           s.PRN,
		Department:    s.Department,
		YearSemester:  s.YearSemester,
		Skills:        s.Skills,
		Interests:     s.Interests,
		CareerGoal:    s.CareerGoal,
		LearningStyle: s.LearningStyle,
		StrengthAreas: s.StrengthAreas,
		WeakAreas:     s.WeakAreas,
	}
	return signUp(ctx, globals, session.RoleStudent, s.Email, func(ctx context.Context, g *gateway.Gateway) error {
		return g.SignUpStudent(ctx, req)
	})
}

type SignUpTeacherCmd struct {
	FullName       string   `help:"Full name" required:""`
	Email          string   `help:"Account email" required:""`
	Password       string   `help:"Account password" required:"" env:"SKILLSYNC_PASSWORD"`
	Mobile         string   `help:"Mobile number" required:""`
	Department     string   `help:"Department" required:""`
	Subjects       []string `help:"Comma separated subjects taught" sep:","`
	Experience     string   `help:"Teaching experience"`
	Specialization string   `help:"Specialization"`
}

func (s *SignUpTeacherCmd) Run(ctx context.Context, globals *Globals) error {
	req := api.TeacherSignUp{
		FullName:       s.FullName,
		Email:          s.Email,
		Password:       s.Password,
		Mobile:         s.Mobile,
		Department:     s.Department,
		Subjects:       s.Subjects,
		Experience:     s.Experience,
		Specialization: s.Specialization,
	}
	return signUp(ctx, globals, session.RoleTeacher, s.Email, func(ctx context.Context, g *gateway.Gateway) error {
		return g.SignUpTeacher(ctx, req)
	})
}

func signUp(ctx context.Context, globals *Globals, role session.Role, email string, fn func(context.Context, *gateway.Gateway) error) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	var form view.Form
	if err := form.Submit(ctx, func(ctx context.Context) error { return fn(ctx, app.Gateway) }); err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Account created for %s (%s).\n", email, role)
	printNext(app.Out, gateway.SignUpDestination(role))
	return nil
}

type SignOutCmd struct{}

func (s *SignOutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	app.Gateway.SignOut(ctx)
	fmt.Fprintln(app.Out, "Signed out.")
	return nil
}

type WhoAmICmd struct{}

func (w *WhoAmICmd) Run(ctx context.Context, globals *Globals) error {
	app, err := newApp(ctx, globals)
	if err != nil {
		return err
	}
	defer app.Close()

	s := app.Session()
	if !s.Authenticated() {
		fmt.Fprintln(app.Out, "Not signed in.")
		fmt.Fprintln(app.Out)
		fmt.Fprintln(app.Out, "To sign in:")
		fmt.Fprintln(app.Out, "  skillsync signin --email <email>")
		return nil
	}

	tw := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Email:\t%s\n", s.User.Email)
	fmt.Fprintf(tw, "User ID:\t%s\n", s.User.ID)
	fmt.Fprintf(tw, "Role:\t%s\n", s.User.Role)
	fmt.Fprintf(tw, "Profile complete:\t%v\n", s.User.ProfileComplete)
	fmt.Fprintf(tw, "SWOT complete:\t%v\n", s.User.SWOTComplete)
	fmt.Fprintf(tw, "Token:\t%s\n", credentials.Fingerprint(s.Token))
	if info, ok := credentials.InspectToken(s.Token); ok && !info.ExpiresAt.IsZero() {
		fmt.Fprintf(tw, "Expires:\t%s\n", info.ExpiresAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
