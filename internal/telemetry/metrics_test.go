package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	assert.Same(t, m, GetMetrics())

	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordAuth(ctx, "signin", nil)
		m.RecordAuth(ctx, "signin", errors.New("rejected"))
		m.RecordRefresh(ctx, RefreshAbsent)
		m.RecordPoll(ctx, time.Now(), true)
	})
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1.5).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
