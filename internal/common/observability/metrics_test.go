package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_SpanAndJob(t *testing.T) {
	o, err := New("observability-test")
	require.NoError(t, err)
	defer o.Shutdown(context.Background())

	ctx, span := o.StartSpan(context.Background(), "finance.submit")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NotPanics(t, func() {
		o.RecordJob(ctx, "book-test-drive", "completed", 12*time.Millisecond)
	})
}

func TestObservability_NilIsNoOp(t *testing.T) {
	var o *Observability
	assert.NotPanics(t, func() {
		_, span := o.StartSpan(context.Background(), "noop")
		span.End()
		o.RecordJob(context.Background(), "x", "failed", time.Second)
		o.Shutdown(context.Background())
	})
}
