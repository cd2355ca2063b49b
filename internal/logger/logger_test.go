package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetup(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, Setup(false).GetLevel())
	assert.Equal(t, zerolog.DebugLevel, Setup(true).GetLevel())
}

func TestResty(t *testing.T) {
	var buf bytes.Buffer
	r := NewResty(zerolog.New(&buf))

	r.Warnf("retrying %s\n", "GET /swot")

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"message":"retrying GET /swot"`)
	assert.Contains(t, buf.String(), `"component":"http"`)
}
