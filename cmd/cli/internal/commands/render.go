package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/route"
	"github.com/skillsync/skillsync/internal/swot"
	"github.com/skillsync/skillsync/internal/view"
)

const clearScreen = "\033[H\033[2J"

func printNext(w io.Writer, path string) {
	fmt.Fprintf(w, "Next: %s\n", path)
	switch path {
	case route.PathSWOT:
		fmt.Fprintln(w, "  Complete your SWOT analysis:")
		fmt.Fprintln(w, "  skillsync swot template > swot.yaml")
		fmt.Fprintln(w, "  skillsync swot save swot.yaml")
	case route.PathDashboard:
		fmt.Fprintln(w, "  skillsync dashboard")
	case route.PathSignIn:
		fmt.Fprintln(w, "  skillsync signin --email <email>")
	default:
		fmt.Fprintf(w, "  skillsync open %s\n", path)
	}
}

func renderSignIn(w io.Writer, from string) {
	fmt.Fprintln(w, "Sign in required.")
	fmt.Fprintln(w)
	if from != "" && from != route.PathRoot {
		fmt.Fprintf(w, "  skillsync signin --email <email> --from %s\n", from)
	} else {
		fmt.Fprintln(w, "  skillsync signin --email <email>")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "No account yet? Create one:")
	fmt.Fprintln(w, "  skillsync signup student --help")
	fmt.Fprintln(w, "  skillsync signup teacher --help")
}

type swotRow struct {
	label string
	tags  []string
}

func renderSWOT(w io.Writer, doc swot.Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	section := func(title string, rows ...swotRow) {
		fmt.Fprintln(tw, strings.ToUpper(title))
		for _, r := range rows {
			fmt.Fprintf(tw, "  %s\t%s\n", r.label, tagList(r.tags))
		}
	}

	section("Strengths",
		swotRow{"Technical", doc.Strengths.Technical},
		swotRow{"Soft skills", doc.Strengths.Soft},
		swotRow{"Subjects", doc.Strengths.Subjects},
	)
	section("Weaknesses",
		swotRow{"Subjects", doc.Weaknesses.Subjects},
		swotRow{"Habits", doc.Weaknesses.Habits},
		swotRow{"Skill gaps", doc.Weaknesses.Gaps},
	)
	section("Opportunities",
		swotRow{"Internships", doc.Opportunities.Internships},
		swotRow{"Certifications", doc.Opportunities.Certs},
		swotRow{"Projects", doc.Opportunities.Projects},
		swotRow{"Competitions", doc.Opportunities.Competitions},
	)
	section("Threats",
		swotRow{"Time", doc.Threats.Time},
		swotRow{"Resources", doc.Threats.Resources},
		swotRow{"Distractions", doc.Threats.Distractions},
		swotRow{"Confidence", doc.Threats.Confidence},
	)

	return tw.Flush()
}

func tagList(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func renderStudentDashboard(w io.Writer, snap view.StudentSnapshot, now time.Time) error {
	fmt.Fprintf(w, "Student Dashboard: %s\n", snap.User.Email)
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated %s\n", view.FormatActivityTime(snap.UpdatedAt, now))
	}
	fmt.Fprintln(w)

	if snap.Err != nil {
		fmt.Fprintf(w, "Connection error: %v\n\n", snap.Err)
	}

	if snap.Loading {
		fmt.Fprintln(w, "Loading...")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SKILL AVERAGES")
	fmt.Fprintf(tw, "  Problem solving\t%.1f/10\n", snap.Averages.ProblemSolving)
	fmt.Fprintf(tw, "  Conceptual clarity\t%.1f/10\n", snap.Averages.ConceptualClarity)
	fmt.Fprintf(tw, "  Practical skill\t%.1f/10\n", snap.Averages.PracticalSkill)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "RECENT ACTIVITY")
	if len(snap.Logs) == 0 {
		fmt.Fprintln(tw, "  No activity yet.")
	}
	for _, l := range snap.Logs {
		fmt.Fprintf(tw, "  %s\t%s\n", view.FormatActivityTime(l.LoggedAt, now), l.Summary)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ASSESSMENTS")
	if len(snap.Assessments) == 0 {
		fmt.Fprintln(tw, "  No assessments yet.")
	} else {
		fmt.Fprintln(tw, "  WHEN\tPS\tCC\tPR\tQUESTION")
	}
	for _, a := range snap.Assessments {
		fmt.Fprintf(tw, "  %s\t%.0f\t%.0f\t%.0f\t%s\n",
			view.FormatActivityTime(a.CreatedAt, now),
			a.ProblemSolvingScore, a.ConceptualClarityScore, a.PracticalSkillScore,
			truncate(a.ScenarioQuestion, 60))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if snap.SWOT != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "SWOT ANALYSIS")
		if err := renderSWOT(w, *snap.SWOT); err != nil {
			return err
		}
	}

	if snap.Insights != nil {
		fmt.Fprintln(w)
		renderInsights(w, snap.Insights)
	}

	return nil
}

func renderTeacherDashboard(w io.Writer, td *view.TeacherDashboard) {
	fmt.Fprintln(w, td.Welcome)
	fmt.Fprintf(w, "Signed in as %s\n", td.Email)
	for _, p := range td.Panels {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.ToUpper(p.Title))
		fmt.Fprintf(w, "  %s\n", p.Description)
	}
}

func renderInsights(w io.Writer, in *api.Insights) {
	fmt.Fprintln(w, "AI INSIGHTS")
	if in.WhatTheyAreDoing != "" {
		fmt.Fprintf(w, "  %s\n", in.WhatTheyAreDoing)
	}
	bullets := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(w, "\n  %s\n", title)
		for _, item := range items {
			fmt.Fprintf(w, "  - %s\n", item)
		}
	}
	bullets("Keep doing", in.ShouldDo)
	bullets("Avoid", in.ShouldNotDo)
	if in.OverallAnalysis != "" {
		fmt.Fprintf(w, "\n  %s\n", in.OverallAnalysis)
	}
	bullets("Recommendations", in.Recommendations)
}

func renderEvaluation(w io.Writer, ev api.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Problem solving:\t%.1f/10\n", ev.ProblemSolvingScore)
	fmt.Fprintf(tw, "Conceptual clarity:\t%.1f/10\n", ev.ConceptualClarityScore)
	fmt.Fprintf(tw, "Practical skill:\t%.1f/10\n", ev.PracticalSkillScore)
	if err := tw.Flush(); err != nil {
		return err
	}
	if ev.Feedback != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ev.Feedback)
	}
	if ev.RecommendedNextTopic != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Recommended next topic: %s\n", ev.RecommendedNextTopic)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
