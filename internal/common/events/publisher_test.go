package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/common/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_WritesEnvelope(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w, logger: logger.NewNoOpLogger()}

	err := p.Publish(context.Background(), "marketplace.review.submitted", "listing-1", TypeReviewSubmitted,
		map[string]interface{}{"rating": 5})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "marketplace.review.submitted", msg.Topic)
	assert.Equal(t, "listing-1", string(msg.Key))
	assert.Equal(t, "event-type", msg.Headers[0].Key)

	var ev Event
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	assert.Equal(t, TypeReviewSubmitted, ev.Type)
	assert.NotEmpty(t, ev.ID)
	assert.JSONEq(t, `{"rating":5}`, string(ev.Payload))
}

func TestKafkaPublisher_WrapsWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: stderrors.New("broker down")}, logger: logger.NewNoOpLogger()}

	err := p.Publish(context.Background(), "t", "k", "x", struct{}{})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Publish(context.Background(), "t", "k", "x", nil))
}
