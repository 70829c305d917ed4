package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

var _ Publisher = &QueuePublisher{}

//counterfeiter:generate . Publisher
type Publisher interface {
	Publish(ctx context.Context, msg amqp091.Publishing) error
}

func NewQueuePublisher(rabbitMQURL string, queueName string) (*QueuePublisher, error) {
	publisher := &QueuePublisher{
		rabbitMQURL: rabbitMQURL,
		queueName:   queueName,
		channel:     nil,
	}

	err := publisher.connectChannel()
	if err != nil {
		return nil, errors.Wrap(err, "Failed to connect to RabbitMQ")
	}

	return publisher, nil
}

type QueuePublisher struct {
	rabbitMQURL string
	queueName   string
	channel     *amqp091.Channel
	channelLock sync.Mutex
}

func (q *QueuePublisher) connectChannel() error {
	q.channel = nil

	conn, err := amqp091.Dial(q.rabbitMQURL)
	if err != nil {
		return errors.Wrap(err, "Failed to dial rabbitMQURL")
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "Failed to create rabbit channel")
	}

	if err = DeclareQueue(channel, q.queueName); err != nil {
		_ = conn.Close()
		return err
	}

	q.channel = channel
	return nil
}

func DeclareQueue(channel *amqp091.Channel, queueName string) error {
	_, err := channel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		return errors.Wrap(err, "Failed to declare the queue")
	}

	return nil
}

func (q *QueuePublisher) publishWithoutRetry(ctx context.Context, msg amqp091.Publishing) error {
	msg.ContentType = "application/json"
	msg.DeliveryMode = amqp091.Persistent

	return q.channel.PublishWithContext(
		ctx,
		"",
		q.queueName,
		true,
		false,
		msg,
	)
}

func (q *QueuePublisher) Publish(ctx context.Context, msg amqp091.Publishing) error {
	q.channelLock.Lock()
	defer q.channelLock.Unlock()

	err := q.publishWithoutRetry(ctx, msg)
	if err == nil {
		return nil
	}

	publishErr := errors.Wrap(err, "Failed to publish message to rabbitMQ channel")
	if !errors.Is(err, amqp091.ErrClosed) {
		return publishErr
	}

	if err = q.connectChannel(); err != nil {
		log.WithError(err).
			Error("Unable to reconnect to rabbitMQ channel")
		return publishErr
	}

	return q.publishWithoutRetry(ctx, msg)
}

// PublishJob sends a typed job; the message type routes it on the consumer side
func PublishJob(ctx context.Context, publisher Publisher, jobType string, job any) error {
	body, err := json.Marshal(job)
	if err != nil {
		return errors.Wrapf(err, "Failed to marshal %s job", jobType)
	}

	return publisher.Publish(ctx, amqp091.Publishing{
		Type: jobType,
		Body: body,
	})
}
