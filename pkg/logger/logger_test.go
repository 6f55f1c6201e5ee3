package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/chainerr/pkg/logger"
)

func TestLogger_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithFormat("production", "", &buf)

	log.WithField("component", "translator").
		WithError(errors.New("boom")).
		Info("translation recovered")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "translation recovered", record["msg"])
	assert.Equal(t, "translator", record["component"])
	assert.Equal(t, "boom", record["error"])
	assert.Contains(t, record["source"], "logger_test.go:")
}

func TestLogger_ProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithFormat("production", "", &buf)

	log.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithFormat("development", "json", &buf)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, logger.SubjectKey, "ops")
	log.WithContext(ctx).Debug("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "ops", record["subject"])
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	assert.NotPanics(t, func() {
		log.Error("nothing happens")
	})
}
