package view

import (
	"errors"

	"github.com/skillsync/skillsync/internal/session"
)

// ErrNotTeacher is returned when a teacher dashboard is built for another session.
var ErrNotTeacher = errors.New("teacher dashboard requires a signed in teacher")

// Panel is one section of the teacher overview.
type Panel struct {
	Title       string
	Description string
}

// TeacherDashboard is the static overview shown to teachers.
type TeacherDashboard struct {
	Email   string
	Welcome string
	Panels  []Panel
}

// NewTeacherDashboard builds the overview for the signed in teacher.
func NewTeacherDashboard(s session.Session) (*TeacherDashboard, error) {
	if !s.IsTeacher() {
		return nil, ErrNotTeacher
	}
	return &TeacherDashboard{
		Email:   s.User.Email,
		Welcome: "Welcome, Teacher",
		Panels: []Panel{
			{Title: "Manage Students", Description: "View and assess student progress and SWOT analyses."},
			{Title: "Assessments", Description: "Create and grade scenario-based assessments."},
			{Title: "Analytics", Description: "Track skill development across your students."},
		},
	}, nil
}
