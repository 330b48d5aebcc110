package rabbitmq

import (
	"context"
	"errors"
	"testing"

	"github.com/GoArmGo/BlogApp/internal/logger"
	"github.com/GoArmGo/BlogApp/internal/messaging/payloads"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func delivery(ack *ackRecorder, body string, redelivered bool) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, Body: []byte(body), Redelivered: redelivered}
}

func TestHandleDelivery(t *testing.T) {
	body := `{"to":["bob@example.com"],"subject":"Hi","body":"Read it","kind":"share"}`

	t.Run("success acks", func(t *testing.T) {
		ack := &ackRecorder{}
		var got payloads.MailPayload
		handleDelivery(context.Background(), logger.Discard(), delivery(ack, body, false), func(_ context.Context, p payloads.MailPayload) error {
			got = p
			return nil
		})
		assert.True(t, ack.acked)
		assert.Equal(t, []string{"bob@example.com"}, got.To)
		assert.Equal(t, "share", got.Kind)
	})

	t.Run("malformed body is dropped", func(t *testing.T) {
		ack := &ackRecorder{}
		called := false
		handleDelivery(context.Background(), logger.Discard(), delivery(ack, "{not json", false), func(context.Context, payloads.MailPayload) error {
			called = true
			return nil
		})
		assert.False(t, called)
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("first failure requeues", func(t *testing.T) {
		ack := &ackRecorder{}
		handleDelivery(context.Background(), logger.Discard(), delivery(ack, body, false), func(context.Context, payloads.MailPayload) error {
			return errors.New("smtp down")
		})
		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	t.Run("redelivered failure is dropped", func(t *testing.T) {
		ack := &ackRecorder{}
		handleDelivery(context.Background(), logger.Discard(), delivery(ack, body, true), func(context.Context, payloads.MailPayload) error {
			return errors.New("smtp down")
		})
		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}
