package otel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"paperapi/internal/config"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		name, sampler, arg, want string
	}{
		{"always on", "always_on", "", "AlwaysOnSampler"},
		{"always off", "always_off", "", "AlwaysOffSampler"},
		{"ratio", "traceidratio", "0.5", "TraceIDRatioBased{0.5}"},
		{"bad ratio falls back to 1", "traceidratio", "abc", "AlwaysOnSampler"},
		{"out of range ratio", "traceidratio", "7", "AlwaysOnSampler"},
		{"unknown", "whatever", "", "ParentBased{root:AlwaysOnSampler"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(newSampler(tt.sampler, tt.arg).Description(), tt.want))
		})
	}
}

func TestNewExporter_UnsupportedProtocol(t *testing.T) {
	_, err := newExporter(context.Background(), "thrift")
	assert.ErrorContains(t, err, "unsupported OTLP protocol")
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Disabled: true, ServiceName: "paperapi"}, nil)
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	fields := otel.GetTextMapPropagator().Fields()
	assert.Contains(t, fields, "traceparent")
}

func TestInit_BadProtocolDegrades(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{ServiceName: "paperapi", Protocol: "thrift"}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
