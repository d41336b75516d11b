package submissionqueue

import (
	"context"
	"fmt"
	"smartmarkers-service/internal/app/models"
	"smartmarkers-service/internal/pkg/constvars"
	"smartmarkers-service/internal/pkg/exceptions"
	"sync"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	StandardQueueName   = constvars.RabbitMQSubmissionEventsQueue
	DeadLetterQueueName = constvars.RabbitMQSubmissionEventsQueue + "_dlq"
)

// publisher is the subset of *amqp.Channel the service publishes through.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Service publishes submission events to a durable queue with publisher
// confirms. An event the broker refuses is parked on the dead-letter queue.
type Service struct {
	ch       publisher
	log      *zap.Logger
	confirms <-chan amqp.Confirmation
	mu       sync.Mutex
}

// NewService opens a channel, declares both queues and enables confirms.
func NewService(conn *amqp.Connection, log *zap.Logger) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	for _, queue := range []string{StandardQueueName, DeadLetterQueueName} {
		_, err = ch.QueueDeclare(
			queue, // name
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return nil, err
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	return newService(ch, ch.NotifyPublish(make(chan amqp.Confirmation, 1)), log), nil
}

func newService(ch publisher, confirms <-chan amqp.Confirmation, log *zap.Logger) *Service {
	return &Service{
		ch:       ch,
		log:      log,
		confirms: confirms,
	}
}

func (s *Service) PublishSubmissionEvent(ctx context.Context, event *models.SubmissionEvent) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("SubmissionQueue.PublishSubmissionEvent called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingTaskRunIDKey, event.TaskRunID),
		zap.String(constvars.LoggingStatusKey, event.Status),
	)

	body, err := json.Marshal(event)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	err = s.publish(ctx, StandardQueueName, body)
	if err == nil {
		return nil
	}

	s.log.Warn("SubmissionQueue.PublishSubmissionEvent moving event to dead-letter queue",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingQueueKey, DeadLetterQueueName),
		zap.Error(err),
	)
	if dlqErr := s.publish(ctx, DeadLetterQueueName, body); dlqErr != nil {
		return dlqErr
	}
	return err
}

func (s *Service) publish(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, queue)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQPublishMessage(fmt.Errorf("message not confirmed"), queue)
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublishMessage(ctx.Err(), queue)
	}
	return nil
}
