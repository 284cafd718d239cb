package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ucrm/backend/internal/infrastructure/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{
		Enabled: false,
	}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_RegisterDBTracing_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{
		Enabled:        false,
		DBTraceEnabled: true,
	}, zap.NewNop())
	require.NoError(t, err)

	// With telemetry off, registration is a no-op even on a nil DB
	assert.NoError(t, tp.RegisterDBTracing(nil))
}
