package submissionqueue

import (
	"context"
	"testing"
	"time"

	"smartmarkers-service/internal/app/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type fakeChannel struct {
	confirms chan amqp.Confirmation
	acks     []bool
	queues   []string
	bodies   [][]byte
}

func newFakeChannel(acks ...bool) *fakeChannel {
	return &fakeChannel{confirms: make(chan amqp.Confirmation, len(acks)), acks: acks}
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.queues = append(f.queues, key)
	f.bodies = append(f.bodies, msg.Body)
	ack := f.acks[0]
	f.acks = f.acks[1:]
	f.confirms <- amqp.Confirmation{DeliveryTag: uint64(len(f.queues)), Ack: ack}
	return nil
}

func event() *models.SubmissionEvent {
	return &models.SubmissionEvent{
		SessionID:  "s-1",
		MeasureID:  "phq9",
		TaskRunID:  "run-1",
		Status:     string(models.SubmissionStatusSubmitted),
		OccurredAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPublishSubmissionEvent(t *testing.T) {
	t.Run("Confirmed", func(t *testing.T) {
		ch := newFakeChannel(true)
		service := newService(ch, ch.confirms, zap.NewNop())

		err := service.PublishSubmissionEvent(context.Background(), event())

		assert.NoError(t, err)
		assert.Equal(t, []string{StandardQueueName}, ch.queues)
		assert.Equal(t, "run-1", gjson.GetBytes(ch.bodies[0], "task_run_id").String())
	})

	t.Run("Refused events are dead-lettered", func(t *testing.T) {
		ch := newFakeChannel(false, true)
		service := newService(ch, ch.confirms, zap.NewNop())

		err := service.PublishSubmissionEvent(context.Background(), event())

		assert.ErrorContains(t, err, "message not confirmed")
		assert.Equal(t, []string{StandardQueueName, DeadLetterQueueName}, ch.queues)
	})
}
