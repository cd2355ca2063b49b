package session

// Role identifies which kind of account is signed in.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid returns true if the role is one the backend issues.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User is the identity derived from a validated token.
type User struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	ProfileComplete bool   `json:"profile_complete"`
	SWOTComplete    bool   `json:"swot_complete"`
}

// Session is the state of "who is logged in right now".
// User is non-nil only while a token validated by the backend is held.
type Session struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Loading bool   `json:"loading"`
}

// LoggedOut returns the resolved, unauthenticated session.
func LoggedOut() Session {
	return Session{}
}

// Authenticated returns true if a user is signed in.
func (s Session) Authenticated() bool {
	return s.User != nil
}

// IsTeacher returns true if the signed in user is a teacher.
func (s Session) IsTeacher() bool {
	return s.User != nil && s.User.Role == RoleTeacher
}

// NeedsSWOT returns true for students who have not saved a SWOT analysis yet.
func (s Session) NeedsSWOT() bool {
	return s.User != nil && s.User.Role == RoleStudent && !s.User.SWOTComplete
}

// clone returns a copy that shares no memory with s.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
