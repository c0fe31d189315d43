package tracing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/jhoicas/eshop-api/pkg/tracing"
)

func TestInit_Deshabilitado(t *testing.T) {
	ctx := context.Background()
	tp, err := tracing.Init(ctx, "eshop-api-test", "", false)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid(), "el provider no-op no genera spans reales")

	assert.NoError(t, tracing.Shutdown(ctx, tp))
}

func TestInit_Jaeger(t *testing.T) {
	ctx := context.Background()
	// el exporter no conecta hasta exportar, así que basta un endpoint cualquiera
	tp, err := tracing.Init(ctx, "eshop-api-test", "http://127.0.0.1:14268/api/traces", true)
	require.NoError(t, err)
	require.NotNil(t, tp)
	t.Cleanup(func() {
		// nadie escucha en el endpoint: el vaciado puede fallar
		_ = tracing.Shutdown(ctx, tp)
		_, _ = tracing.Init(ctx, "eshop-api-test", "", false)
	})

	_, span := otel.Tracer("test").Start(ctx, "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
