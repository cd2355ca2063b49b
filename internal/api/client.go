package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/skillsync/skillsync/internal/swot"
)

// DefaultBaseURL is used when API_URL is not configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// Config holds common client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Cache enables an HTTP cache honouring Cache-Control on GET requests.
	// CacheDir selects a disk cache; empty means in-memory.
	Cache    bool
	CacheDir string

	// Logger receives resty's own diagnostics. Optional.
	Logger resty.Logger
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// Client talks to the SkillSync backend: auth, SWOT, insights and evaluation.
// Requests are never retried automatically.
type Client struct {
	rc       *resty.Client
	validate *validator.Validate
}

// New creates a backend client with the given configuration
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	rc := resty.NewWithClient(&http.Client{
		Transport: newTransport(cfg),
		Timeout:   cfg.Timeout,
	})
	rc.SetBaseURL(cfg.BaseURL)
	rc.SetHeader("Accept", "application/json")
	if cfg.Logger != nil {
		rc.SetLogger(cfg.Logger)
	}
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-Id", uuid.NewString())
		return nil
	})

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	return &Client{
		rc:       rc,
		validate: validate,
	}
}

func newTransport(cfg Config) http.RoundTripper {
	var base http.RoundTripper = http.DefaultTransport

	if cfg.Cache {
		var cache httpcache.Cache = httpcache.NewMemoryCache()
		if cfg.CacheDir != "" {
			cache = diskcache.New(cfg.CacheDir)
		}
		t := httpcache.NewTransport(cache)
		t.Transport = base
		base = &publicCacheTransport{cached: t, direct: base}
	}

	return otelhttp.NewTransport(base)
}

// publicCacheTransport only serves unauthenticated requests from the cache.
// httpcache keys entries by URL, so a response for one bearer token would
// otherwise be replayed for another.
type publicCacheTransport struct {
	cached http.RoundTripper
	direct http.RoundTripper
}

func (t *publicCacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Authorization") != "" {
		return t.direct.RoundTrip(req)
	}
	return t.cached.RoundTrip(req)
}

// BaseURL returns the configured backend endpoint.
func (c *Client) BaseURL() string {
	return c.rc.BaseURL
}

// SignIn exchanges credentials for an access token.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (TokenResponse, error) {
	if err := c.check(req); err != nil {
		return TokenResponse{}, err
	}
	return c.postToken(ctx, "/auth/signin", req)
}

// SignUpStudent registers a student and returns an access token for it.
func (c *Client) SignUpStudent(ctx context.Context, req StudentSignUp) (TokenResponse, error) {
	if err := c.check(req); err != nil {
		return TokenResponse{}, err
	}
	if req.Skills == nil {
		req.Skills = []string{}
	}
	return c.postToken(ctx, "/auth/signup/student", req)
}

// SignUpTeacher registers a teacher and returns an access token for it.
func (c *Client) SignUpTeacher(ctx context.Context, req TeacherSignUp) (TokenResponse, error) {
	if err := c.check(req); err != nil {
		return TokenResponse{}, err
	}
	if req.Subjects == nil {
		req.Subjects = []string{}
	}
	return c.postToken(ctx, "/auth/signup/teacher", req)
}

// Me validates token and returns the identity it belongs to.
func (c *Client) Me(ctx context.Context, token string) (Identity, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/auth/me")
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch identity: %w", err)
	}
	if !resp.IsSuccess() {
		return Identity{}, newStatusError(resp.StatusCode(), resp.Body())
	}
	return parseIdentity(resp.Body())
}

// GetSWOT returns the saved SWOT analysis. found is false when none has been
// saved yet, in which case the default document is returned.
func (c *Client) GetSWOT(ctx context.Context, token string) (doc swot.Document, found bool, err error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetAuthToken(token).
		Get("/swot")
	if err != nil {
		return swot.Document{}, false, fmt.Errorf("failed to fetch swot: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return swot.Default(), false, nil
	}
	if !resp.IsSuccess() {
		return swot.Document{}, false, newStatusError(resp.StatusCode(), resp.Body())
	}

	body := resp.Body()
	if len(body) == 0 || !gjson.GetBytes(body, "strengths").IsObject() {
		return swot.Default(), false, nil
	}

	// Categories missing from a saved record fall back to their defaults.
	doc = swot.Default()
	if err := json.Unmarshal(body, &doc); err != nil {
		return swot.Document{}, false, malformed("swot document")
	}
	doc.Normalize()

	return doc, true, nil
}

// PutSWOT saves the complete SWOT analysis.
func (c *Client) PutSWOT(ctx context.Context, token string, doc swot.Document) error {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetBody(doc).
		Put("/swot")
	if err != nil {
		return fmt.Errorf("failed to save swot: %w", err)
	}
	if !resp.IsSuccess() {
		return newStatusError(resp.StatusCode(), resp.Body())
	}

	log.Debug().Int("tags", doc.Count()).Msg("swot saved")

	return nil
}

// ActivityInsights asks the backend for an AI summary of a student's recent activity.
func (c *Client) ActivityInsights(ctx context.Context, userID string) (*Insights, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		Get("/student-activity-insights")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insights: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, newStatusError(resp.StatusCode(), resp.Body())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, malformed("body is not json")
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.Type != gjson.Null {
		return nil, fmt.Errorf("insights unavailable: %s", msg.String())
	}

	raw := gjson.GetBytes(body, "insights")
	if !raw.IsObject() {
		return nil, malformed("insights")
	}

	var insights Insights
	if err := json.Unmarshal([]byte(raw.Raw), &insights); err != nil {
		return nil, malformed("insights")
	}

	return &insights, nil
}

// Evaluate asks the backend to grade an answer to a scenario question.
func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (Evaluation, error) {
	if err := c.check(req); err != nil {
		return Evaluation{}, err
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/evaluate")
	if err != nil {
		return Evaluation{}, fmt.Errorf("failed to evaluate answer: %w", err)
	}
	if !resp.IsSuccess() {
		return Evaluation{}, newStatusError(resp.StatusCode(), resp.Body())
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return Evaluation{}, malformed("body is not json")
	}
	if msg := gjson.GetBytes(body, "error"); msg.Exists() && msg.Type != gjson.Null {
		return Evaluation{}, fmt.Errorf("evaluation failed: %s", msg.String())
	}

	var eval Evaluation
	if err := json.Unmarshal(body, &eval); err != nil {
		return Evaluation{}, malformed("evaluation")
	}

	return eval, nil
}

// Health checks that the backend answers on its root endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.rc.R().SetContext(ctx).Get("/")
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	if !resp.IsSuccess() {
		return newStatusError(resp.StatusCode(), resp.Body())
	}
	return nil
}

// WaitReady polls Health with exponential backoff until it succeeds or maxWait elapses.
func (c *Client) WaitReady(ctx context.Context, maxWait time.Duration) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := c.Health(ctx); err != nil {
			log.Debug().Err(err).Int("attempt", attempt).Msg("backend not ready")
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(maxWait),
	)
	if err != nil {
		return fmt.Errorf("backend not ready after %s: %w", maxWait, err)
	}
	return nil
}

func (c *Client) postToken(ctx context.Context, path string, body any) (TokenResponse, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("request to %s failed: %w", path, err)
	}
	if !resp.IsSuccess() {
		return TokenResponse{}, newStatusError(resp.StatusCode(), resp.Body())
	}
	return parseTokenResponse(resp.Body())
}

func (c *Client) check(v any) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
