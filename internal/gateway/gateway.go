// Package gateway owns every operation that changes who is signed in. It keeps
// the session store and the persisted token consistent with each other.
package gateway

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/credentials"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/telemetry"
)

// AuthAPI is the subset of the backend the gateway talks to.
type AuthAPI interface {
	SignIn(ctx context.Context, req api.SignInRequest) (api.TokenResponse, error)
	SignUpStudent(ctx context.Context, req api.StudentSignUp) (api.TokenResponse, error)
	SignUpTeacher(ctx context.Context, req api.TeacherSignUp) (api.TokenResponse, error)
	Me(ctx context.Context, token string) (api.Identity, error)
}

// Result is returned by a successful sign-in so the caller can pick where to go.
type Result struct {
	Role         session.Role
	SWOTComplete bool
}

// Gateway performs sign-in, sign-up, sign-out and identity refresh.
type Gateway struct {
	api     AuthAPI
	storage credentials.Storage
	store   *session.Store
	metrics *telemetry.Metrics
	now     func() time.Time

	refresh singleflight.Group

	// mu serializes session and token writes. generation counts the writes
	// made by sign-in, sign-up and sign-out so an identity refresh that
	// started before one of them can tell its result is stale.
	mu         sync.Mutex
	generation atomic.Uint64
}

// New creates a gateway that writes to store and persists tokens in storage.
func New(authAPI AuthAPI, storage credentials.Storage, store *session.Store) *Gateway {
	return &Gateway{
		api:     authAPI,
		storage: storage,
		store:   store,
		metrics: telemetry.GetMetrics(),
		now:     time.Now,
	}
}

// Store returns the session store the gateway writes to.
func (g *Gateway) Store() *session.Store {
	return g.store
}

// SignIn exchanges credentials for a token. On failure it returns an
// *AuthError and leaves both the session and the stored token untouched.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (Result, error) {
	res, err := g.api.SignIn(ctx, api.SignInRequest{Email: email, Password: password})
	g.metrics.RecordAuth(ctx, OpSignIn, err)
	if err != nil {
		log.Debug().Err(err).Str("email", email).Msg("sign in rejected")
		return Result{}, newAuthError(OpSignIn, signInFailed, err)
	}

	user := &session.User{
		ID:              res.UserID,
		Email:           email,
		Role:            res.Role,
		ProfileComplete: res.ProfileComplete,
		SWOTComplete:    res.SWOTComplete,
	}
	if err := g.establish(ctx, res.AccessToken, user); err != nil {
		return Result{}, &AuthError{Op: OpSignIn, Message: signInFailed + ": could not store session", Err: err}
	}

	log.Debug().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("token", credentials.Fingerprint(res.AccessToken)).
		Msg("signed in")

	return Result{Role: user.Role, SWOTComplete: user.SWOTComplete}, nil
}

// SignUpStudent registers a student and signs them in. New students still
// have to complete their SWOT analysis.
func (g *Gateway) SignUpStudent(ctx context.Context, req api.StudentSignUp) error {
	res, err := g.api.SignUpStudent(ctx, req)
	return g.signedUp(ctx, OpSignUpStudent, req.Email, res, err, false)
}

// SignUpTeacher registers a teacher and signs them in. Teachers have no SWOT
// step, so they are treated as complete.
func (g *Gateway) SignUpTeacher(ctx context.Context, req api.TeacherSignUp) error {
	res, err := g.api.SignUpTeacher(ctx, req)
	return g.signedUp(ctx, OpSignUpTeacher, req.Email, res, err, true)
}

func (g *Gateway) signedUp(ctx context.Context, op, email string, res api.TokenResponse, err error, swotComplete bool) error {
	g.metrics.RecordAuth(ctx, op, err)
	if err != nil {
		log.Debug().Err(err).Str("op", op).Str("email", email).Msg("sign up rejected")
		return newAuthError(op, signUpFailed, err)
	}

	user := &session.User{
		ID:              res.UserID,
		Email:           email,
		Role:            res.Role,
		ProfileComplete: true,
		SWOTComplete:    swotComplete,
	}
	if err := g.establish(ctx, res.AccessToken, user); err != nil {
		return &AuthError{Op: op, Message: signUpFailed + ": could not store session", Err: err}
	}

	log.Debug().
		Str("user_id", user.ID).
		Str("role", string(user.Role)).
		Str("token", credentials.Fingerprint(res.AccessToken)).
		Msg("signed up")

	return nil
}

// establish persists the token and then publishes the session. A storage
// failure leaves the session as it was.
func (g *Gateway) establish(ctx context.Context, token string, user *session.User) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.storage.Save(ctx, token); err != nil {
		return err
	}
	g.generation.Add(1)
	g.store.Write(session.Session{Token: token, User: user})
	return nil
}

// SignOut forgets the stored token and resets the session. It cannot fail;
// a storage error is only logged.
func (g *Gateway) SignOut(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.storage.Remove(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to remove stored token")
	}
	g.generation.Add(1)
	g.store.Write(session.LoggedOut())
	g.metrics.RecordAuth(ctx, "signout", nil)

	log.Debug().Msg("signed out")
}

// RefreshIdentity revalidates the stored token with the backend. Any failure
// discards the token and leaves the session logged out; the returned
// *SessionInvalidError only explains why. Concurrent calls share one
// validation, which the client timeout bounds rather than ctx cancellation.
func (g *Gateway) RefreshIdentity(ctx context.Context) error {
	_, err, shared := g.refresh.Do("refresh", func() (any, error) {
		// a caller giving up must not discard a valid token
		return nil, g.refreshIdentity(context.WithoutCancel(ctx))
	})
	if shared {
		log.Debug().Msg("joined in-flight identity refresh")
	}
	return err
}

func (g *Gateway) refreshIdentity(ctx context.Context) error {
	gen := g.generation.Load()

	token, err := g.storage.Load(ctx)
	if errors.Is(err, credentials.ErrTokenNotFound) {
		g.commit(ctx, gen, session.LoggedOut(), telemetry.RefreshAbsent)
		return nil
	}
	if err != nil {
		return g.invalidate(ctx, gen, "token storage unreadable", err)
	}

	if info, ok := credentials.InspectToken(token); ok && info.Expired(g.now()) {
		return g.invalidate(ctx, gen, "token expired", nil)
	}

	id, err := g.api.Me(ctx, token)
	if err != nil {
		return g.invalidate(ctx, gen, "identity check failed", err)
	}

	g.commit(ctx, gen, session.Session{
		Token: token,
		User: &session.User{
			ID:              id.ID,
			Email:           id.Email,
			Role:            id.Role,
			ProfileComplete: id.ProfileComplete,
			SWOTComplete:    id.SWOTComplete,
		},
	}, telemetry.RefreshValid)

	log.Debug().
		Str("user_id", id.ID).
		Str("token", credentials.Fingerprint(token)).
		Msg("identity refreshed")

	return nil
}

// invalidate removes the stored token and logs out, unless the session changed
// while the refresh was running.
func (g *Gateway) invalidate(ctx context.Context, gen uint64, reason string, cause error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.generation.Load() != gen {
		g.metrics.RecordRefresh(ctx, telemetry.RefreshStale)
		return nil
	}

	if err := g.storage.Remove(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to remove stored token")
	}
	g.store.Write(session.LoggedOut())

	outcome := telemetry.RefreshInvalid
	if cause == nil {
		outcome = telemetry.RefreshExpired
	}
	g.metrics.RecordRefresh(ctx, outcome)

	log.Debug().Err(cause).Str("reason", reason).Msg("stored session discarded")

	return &SessionInvalidError{Reason: reason, Err: cause}
}

func (g *Gateway) commit(ctx context.Context, gen uint64, next session.Session, outcome string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.generation.Load() != gen {
		g.metrics.RecordRefresh(ctx, telemetry.RefreshStale)
		log.Debug().Msg("discarding stale identity refresh")
		return
	}
	g.store.Write(next)
	g.metrics.RecordRefresh(ctx, outcome)
}
