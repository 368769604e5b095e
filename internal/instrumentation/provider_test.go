package instrumentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics(), "disabled provider must still hand out a no-op recorder")
	assert.NotNil(t, provider.Tracer("test"))

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Prometheus(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = ExporterPrometheus
	config.TracingExporter = ExporterNone

	provider, err := NewProvider(context.Background(), config)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, provider.Shutdown(context.Background()))
	}()

	assert.True(t, provider.Enabled())
	assert.NotNil(t, provider.Metrics())
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = "statsd"

	_, err := NewProvider(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metrics exporter")
}

func TestNewProvider_OTLPWithoutEndpoint(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.MetricsExporter = ExporterOTLP
	config.OTLPEndpoint = ""

	_, err := NewProvider(context.Background(), config)
	require.Error(t, err)
}
