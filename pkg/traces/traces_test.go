package traces

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewExporterDisabled(t *testing.T) {
	exp, err := newExporter(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, exp)

	exp, err = newExporter(context.Background(), "bogus")
	require.NoError(t, err)
	assert.Nil(t, exp)
}

func TestNewExporterStdout(t *testing.T) {
	exp, err := newExporter(context.Background(), "stdout")
	require.NoError(t, err)
	require.NotNil(t, exp)
	assert.NoError(t, exp.Shutdown(context.Background()))
}

func TestTraceCommandRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, end := TraceCommand(context.Background(), "scan")
	end(errors.New("boom"))
	_, end = TraceCommand(context.Background(), "lint")
	end(nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "scan", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "lint", spans[1].Name())
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}
