//go:build integration

package activity

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// The backend owns the real schema; this is just enough of it to query.
const testSchema = `
CREATE TABLE activity_logs (
	id         BIGSERIAL PRIMARY KEY,
	user_id    TEXT NOT NULL,
	summary    TEXT,
	logged_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE assessments (
	id                       BIGSERIAL PRIMARY KEY,
	user_id                  TEXT NOT NULL,
	scenario_question        TEXT NOT NULL,
	problem_solving_score    DOUBLE PRECISION NOT NULL,
	conceptual_clarity_score DOUBLE PRECISION NOT NULL,
	practical_skill_score    DOUBLE PRECISION NOT NULL,
	feedback                 TEXT,
	recommended_next_topic   TEXT,
	created_at               TIMESTAMPTZ NOT NULL
);`

func setupPostgresContainer(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	require.NoError(t, err)

	_, err = pool.Exec(ctx, testSchema)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup
}

func TestIntegration_PostgresSource(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := range 25 {
		_, err := pool.Exec(ctx,
			`INSERT INTO activity_logs (user_id, summary, logged_at) VALUES ($1, $2, $3)`,
			"u1", fmt.Sprintf("log %d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
	_, err := pool.Exec(ctx,
		`INSERT INTO activity_logs (user_id, summary, logged_at) VALUES ('u1', NULL, $1)`, base.Add(-time.Hour))
	require.NoError(t, err)

	for i := range 3 {
		_, err := pool.Exec(ctx,
			`INSERT INTO assessments (user_id, scenario_question, problem_solving_score, conceptual_clarity_score,
			 practical_skill_score, feedback, recommended_next_topic, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)`,
			"u1", fmt.Sprintf("q%d", i), float64(i+6), 7.0, 8.5, "ok", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}

	src := NewPostgresSource(pool)

	t.Run("recent logs", func(t *testing.T) {
		logs, err := src.RecentLogs(ctx, "u1", 0)
		require.NoError(t, err)
		require.Len(t, logs, DefaultLogLimit)
		assert.Equal(t, "log 24", logs[0].Summary)
		assert.True(t, logs[0].LoggedAt.Equal(base.Add(24*time.Minute)))
	})

	t.Run("null summary reads as empty", func(t *testing.T) {
		logs, err := src.RecentLogs(ctx, "u1", 100)
		require.NoError(t, err)
		require.Len(t, logs, 26)
		assert.Equal(t, "", logs[25].Summary)
	})

	t.Run("recent assessments", func(t *testing.T) {
		assessments, err := src.RecentAssessments(ctx, "u1", 2)
		require.NoError(t, err)
		require.Len(t, assessments, 2)
		assert.Equal(t, "q2", assessments[0].ScenarioQuestion)
		assert.InDelta(t, 8, assessments[0].ProblemSolvingScore, 0.001)
		assert.Equal(t, "", assessments[0].RecommendedNextTopic)
	})

	t.Run("unknown user", func(t *testing.T) {
		logs, err := src.RecentLogs(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, logs)
	})

	t.Run("missing table maps to query error", func(t *testing.T) {
		_, err := pool.Exec(ctx, `DROP TABLE assessments`)
		require.NoError(t, err)

		_, err = src.RecentAssessments(ctx, "u1", 1)
		assert.ErrorIs(t, err, ErrQuery)
	})
}
