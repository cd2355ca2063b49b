package api

import "github.com/skillsync/skillsync/internal/session"

// SignInRequest is the body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StudentSignUp is the body of POST /auth/signup/student.
type StudentSignUp struct {
	FullName      string   `json:"full_name" validate:"required"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required"`
	Mobile        string   `json:"mobile" validate:"required"`
	PRN           string   `json:"prn" validate:"required"`
	Department    string   `json:"department" validate:"required"`
	YearSemester  string   `json:"year_semester" validate:"required"`
	Skills        []string `json:"skills"`
	Interests     string   `json:"interests"`
	CareerGoal    string   `json:"career_goal"`
	LearningStyle string   `json:"learning_style"`
	StrengthAreas string   `json:"strength_areas"`
	WeakAreas     string   `json:"weak_areas"`
}

// TeacherSignUp is the body of POST /auth/signup/teacher.
type TeacherSignUp struct {
	FullName       string   `json:"full_name" validate:"required"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required"`
	Mobile         string   `json:"mobile" validate:"required"`
	Department     string   `json:"department" validate:"required"`
	Subjects       []string `json:"subjects"`
	Experience     string   `json:"experience"`
	Specialization string   `json:"specialization"`
}

// TokenResponse is returned by sign-in and both sign-up endpoints.
// ProfileComplete and SWOTComplete default to false when absent.
type TokenResponse struct {
	AccessToken     string
	UserID          string
	Role            session.Role
	ProfileComplete bool
	SWOTComplete    bool
}

// Identity is returned by GET /auth/me.
type Identity struct {
	ID              string
	Email           string
	Role            session.Role
	ProfileComplete bool
	SWOTComplete    bool
}

// Insights is the AI analysis of a student's recent activity.
type Insights struct {
	WhatTheyAreDoing string   `json:"what_they_are_doing"`
	ShouldDo         []string `json:"should_do"`
	ShouldNotDo      []string `json:"should_not_do"`
	OverallAnalysis  string   `json:"overall_analysis"`
	Recommendations  []string `json:"recommendations"`
}

// EvaluateRequest is the body of POST /evaluate.
type EvaluateRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	ScenarioQuestion string `json:"scenario_question" validate:"required"`
	StudentAnswer    string `json:"student_answer" validate:"required"`
}

// Evaluation is the AI grade of a scenario answer.
type Evaluation struct {
	ProblemSolvingScore    float64 `json:"problem_solving_score"`
	ConceptualClarityScore float64 `json:"conceptual_clarity_score"`
	PracticalSkillScore    float64 `json:"practical_skill_score"`
	Feedback               string  `json:"feedback"`
	RecommendedNextTopic   string  `json:"recommended_next_topic"`
}
