// Package apitest provides an in-process fake of the SkillSync backend for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/swot"
)

// Account is a user known to the fake backend.
type Account struct {
	ID              string
	Email           string
	Password        string
	Role            session.Role
	ProfileComplete bool
	SWOT            *swot.Document

	// Token is issued on sign-in. Generated when empty.
	Token string
}

// Backend is a fake backend served by an httptest server.
type Backend struct {
	Server *httptest.Server

	mu       sync.Mutex
	accounts map[string]*Account
	tokens   map[string]string
	calls    map[string]int
	nextID   int

	overrides map[string]override
	insights  *api.Insights
	hook      func(r *http.Request)
}

type override struct {
	status int
	body   string
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	b := &Backend{
		accounts:  make(map[string]*Account),
		tokens:    make(map[string]string),
		calls:     make(map[string]int),
		overrides: make(map[string]override),
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string {
	return b.Server.URL
}

// AddAccount registers an account and returns it.
func (b *Backend) AddAccount(a Account) *Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc := a
	if acc.ID == "" {
		b.nextID++
		acc.ID = fmt.Sprintf("u%d", b.nextID)
	}
	b.accounts[acc.Email] = &acc
	if acc.Token != "" {
		b.tokens[acc.Token] = acc.Email
	}
	return &acc
}

// Account returns the stored account for email.
func (b *Backend) Account(email string) (Account, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[email]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

// Revoke makes token unknown to the backend.
func (b *Backend) Revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.tokens, token)
}

// Respond forces a canned response for "METHOD /path".
func (b *Backend) Respond(route string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overrides[route] = override{status: status, body: body}
}

// SetInsights sets the insights returned for every user.
func (b *Backend) SetInsights(in *api.Insights) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.insights = in
}

// OnRequest installs a hook that runs before each request is handled.
func (b *Backend) OnRequest(fn func(r *http.Request)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = fn
}

// Calls returns how many times "METHOD /path" was requested.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.calls[route]++
	hook := b.hook
	o, overridden := b.overrides[route]
	b.mu.Unlock()

	if hook != nil {
		hook(r)
	}

	if overridden {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(o.status)
		_, _ = io.WriteString(w, o.body)
		return
	}

	switch route {
	case "GET /":
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	case "POST /auth/signin":
		b.signIn(w, r)
	case "POST /auth/signup/student":
		b.signUp(w, r, session.RoleStudent)
	case "POST /auth/signup/teacher":
		b.signUp(w, r, session.RoleTeacher)
	case "GET /auth/me":
		b.me(w, r)
	case "GET /swot":
		b.getSWOT(w, r)
	case "PUT /swot":
		b.putSWOT(w, r)
	case "GET /student-activity-insights":
		b.activityInsights(w, r)
	case "POST /evaluate":
		b.evaluate(w, r)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (b *Backend) signIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[req.Email]
	if !ok || acc.Password != req.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeJSON(w, http.StatusOK, b.issueLocked(acc))
}

func (b *Backend) signUp(w http.ResponseWriter, r *http.Request, role session.Role) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.accounts[req.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	b.nextID++
	acc := &Account{
		ID:              fmt.Sprintf("u%d", b.nextID),
		Email:           req.Email,
		Password:        req.Password,
		Role:            role,
		ProfileComplete: true,
	}
	b.accounts[acc.Email] = acc
	writeJSON(w, http.StatusOK, b.issueLocked(acc))
}

func (b *Backend) issueLocked(acc *Account) map[string]any {
	token := acc.Token
	if token == "" {
		token = fmt.Sprintf("tok-%s-%d", acc.ID, len(b.tokens)+1)
	}
	b.tokens[token] = acc.Email
	return map[string]any{
		"access_token":     token,
		"token_type":       "bearer",
		"user_id":          acc.ID,
		"role":             string(acc.Role),
		"profile_complete": acc.ProfileComplete,
		"swot_complete":    swotComplete(acc),
	}
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":    acc.ID,
			"email": acc.Email,
			"role":  string(acc.Role),
		},
		"profile_complete": acc.ProfileComplete,
		"swot_complete":    swotComplete(&acc),
	})
}

func (b *Backend) getSWOT(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if acc.SWOT == nil {
		writeDetail(w, http.StatusNotFound, "No SWOT analysis saved")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":       acc.ID,
		"strengths":     acc.SWOT.Strengths,
		"weaknesses":    acc.SWOT.Weaknesses,
		"opportunities": acc.SWOT.Opportunities,
		"threats":       acc.SWOT.Threats,
	})
}

func (b *Backend) putSWOT(w http.ResponseWriter, r *http.Request) {
	acc, ok := b.authenticate(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid body")
		return
	}
	doc, err := swot.Parse(body)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	b.accounts[acc.Email].SWOT = &doc
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"message": "SWOT analysis saved", "status": "success"})
}

func (b *Backend) activityInsights(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	insights := b.insights
	b.mu.Unlock()

	if insights == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"insights": api.Insights{
				WhatTheyAreDoing: "No activity recorded yet.",
				ShouldDo:         []string{"Keep using your computer normally."},
				ShouldNotDo:      []string{},
				OverallAnalysis:  "Start working to see personalized insights.",
				Recommendations:  []string{},
			},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

func (b *Backend) evaluate(w http.ResponseWriter, r *http.Request) {
	var req api.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	score := float64(len(strings.Fields(req.StudentAnswer)) % 11)
	writeJSON(w, http.StatusOK, api.Evaluation{
		ProblemSolvingScore:    score,
		ConceptualClarityScore: score,
		PracticalSkillScore:    score,
		Feedback:               "Good structure. Add concrete examples.",
		RecommendedNextTopic:   "Indexing strategies",
	})
}

func (b *Backend) authenticate(r *http.Request) (Account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return Account{}, false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.tokens[token]
	if !ok {
		return Account{}, false
	}
	acc, ok := b.accounts[email]
	if !ok {
		return Account{}, false
	}
	return *acc, true
}

func swotComplete(acc *Account) bool {
	if acc.Role == session.RoleTeacher {
		return true
	}
	return acc.SWOT != nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
