package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/skillsync/skillsync/internal/activity"
	"github.com/skillsync/skillsync/internal/api"
	"github.com/skillsync/skillsync/internal/config"
	"github.com/skillsync/skillsync/internal/credentials"
	"github.com/skillsync/skillsync/internal/gateway"
	"github.com/skillsync/skillsync/internal/logger"
	"github.com/skillsync/skillsync/internal/session"
	"github.com/skillsync/skillsync/internal/telemetry"
)

// ErrNotSignedIn is returned by commands that need a session.
var ErrNotSignedIn = errors.New("not signed in, run: skillsync signin --email <email>")

type Globals struct {
	Debug   bool
	Version string

	ConfigPath  string
	APIURL      string
	Storage     string
	StorageDir  string
	RedisAddr   string
	DatabaseURL string
	Cache       bool
	Tracing     bool

	// Out receives command output. Defaults to stdout.
	Out io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// App is everything a command needs, built from flags and the config file.
// Building it resolves the stored identity, like an application start.
type App struct {
	Config  *config.Config
	Client  *api.Client
	Storage credentials.Storage
	Store   *session.Store
	Gateway *gateway.Gateway
	Out     io.Writer

	closers []func()
}

func newApp(ctx context.Context, globals *Globals) (*App, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Out: globals.out()}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTelemetry(ctx, "skillsync-cli", globals.Version, telemetry.Options{
			SampleRatio: cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			log.Warn().Err(err).Msg("telemetry disabled")
		} else {
			app.closers = append(app.closers, func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(sctx); err != nil {
					log.Warn().Err(err).Msg("telemetry shutdown failed")
				}
			})
		}
	}

	storage, err := app.openStorage(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Storage = storage

	app.Client = api.New(api.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  30 * time.Second,
		Cache:    cfg.Cache.Enabled,
		CacheDir: cfg.Cache.Dir,
		Logger:   logger.NewResty(log.Logger),
	})
	app.Store = session.NewStore()
	app.Gateway = gateway.New(app.Client, app.Storage, app.Store)

	if err := app.Gateway.RefreshIdentity(ctx); err != nil {
		log.Debug().Err(err).Msg("stored session discarded")
	}

	return app, nil
}

func loadConfig(globals *Globals) (*config.Config, error) {
	path := globals.ConfigPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config file: %w", err)
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cfg.Merge(config.Config{
		APIURL: globals.APIURL,
		Storage: config.StorageConfig{
			Type:      globals.Storage,
			Dir:       globals.StorageDir,
			RedisAddr: globals.RedisAddr,
		},
		Database:  config.DatabaseConfig{URL: globals.DatabaseURL},
		Cache:     config.CacheConfig{Enabled: globals.Cache},
		Telemetry: config.TelemetryConfig{Enabled: globals.Tracing},
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (a *App) openStorage(ctx context.Context) (credentials.Storage, error) {
	sc := a.Config.Storage

	switch sc.Type {
	case config.StorageMemory:
		return credentials.NewMemoryStore(), nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{Addr: sc.RedisAddr})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", sc.RedisAddr, err)
		}
		return credentials.NewRedisStore(rdb, sc.RedisKey, sc.RedisTTL), nil

	default:
		dir := sc.Dir
		if dir == "" {
			d, err := credentials.DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate session directory: %w", err)
			}
			dir = d
		}
		store, err := credentials.NewFileStore(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		return store, nil
	}
}

// ActivitySource opens the activity database. Without one configured every
// query fails, which the dashboard shows as a connection error.
func (a *App) ActivitySource(ctx context.Context) activity.Source {
	if a.Config.Database.URL == "" {
		return unconfiguredSource{}
	}

	pool, err := activity.NewPool(ctx, &activity.PoolConfig{
		ConnString: a.Config.Database.URL,
		MaxConns:   a.Config.Database.MaxConns,
	})
	if err != nil {
		log.Debug().Err(err).Msg("activity database unavailable")
		return failingSource{err: err}
	}
	a.closers = append(a.closers, pool.Close)

	return activity.NewPostgresSource(pool)
}

// Session returns the current session.
func (a *App) Session() session.Session {
	return a.Store.Read()
}

// RequireUser returns the signed in session or ErrNotSignedIn.
func (a *App) RequireUser() (session.Session, error) {
	s := a.Store.Read()
	if !s.Authenticated() {
		return s, ErrNotSignedIn
	}
	return s, nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

type unconfiguredSource struct{}

var errNoDatabase = fmt.Errorf("%w: no activity database configured (set --database-url or SKILLSYNC_DATABASE_URL)", activity.ErrUnavailable)

func (unconfiguredSource) RecentLogs(ctx context.Context, userID string, limit int) ([]activity.Log, error) {
	return nil, errNoDatabase
}

func (unconfiguredSource) RecentAssessments(ctx context.Context, userID string, limit int) ([]activity.Assessment, error) {
	return nil, errNoDatabase
}

type failingSource struct {
	err error
}

func (f failingSource) RecentLogs(ctx context.Context, userID string, limit int) ([]activity.Log, error) {
	return nil, f.err
}

func (f failingSource) RecentAssessments(ctx context.Context, userID string, limit int) ([]activity.Assessment, error) {
	return nil, f.err
}
