package worker

import (
	"context"
	"sync"

	"github.com/apex/log"
	"github.com/cockroachdb/errors"
	"github.com/rabbitmq/amqp091-go"
)

type MessageChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

type JobRouter interface {
	HandleMessage(ctx context.Context, message amqp091.Delivery) error
}

type QueueWorker struct {
	channel     MessageChannel
	channelLock *sync.Mutex
	jobRouter   JobRouter
	queueName   string
}

func NewQueueWorker(channel MessageChannel, queueName string, jobRouter JobRouter) QueueWorker {
	return QueueWorker{
		channel:     channel,
		channelLock: &sync.Mutex{},
		queueName:   queueName,
		jobRouter:   jobRouter,
	}
}

func NewQueueWorkerFromConnection(conn *amqp091.Connection, queueName string, jobRouter JobRouter) (QueueWorker, error) {
	rabbitChannel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return QueueWorker{}, errors.Wrap(err, "Failed to get channel")
	}

	queue, err := rabbitChannel.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)

	if err != nil {
		_ = rabbitChannel.Close()
		return QueueWorker{}, errors.Wrap(err, "Failed to declare queue")
	}

	return NewQueueWorker(rabbitChannel, queue.Name, jobRouter), nil
}

// Start consumes until the channel closes. Failed jobs are nacked without
// requeueing, leaving them to the queue's dead letter policy.
func (q *QueueWorker) Start(ctx context.Context) error {
	log.Info("Starting worker")

	q.channelLock.Lock()
	if q.channel == nil {
		q.channelLock.Unlock()
		return errors.New("Worker has been stopped")
	}

	channel := q.channel
	defer channel.Close()

	messageStream, err := channel.Consume(
		q.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	q.channelLock.Unlock()

	if err != nil {
		return errors.Wrapf(err, "Failed to start consuming from queue %s", q.queueName)
	}

	for message := range messageStream {
		logger := log.WithField("message_type", message.Type)
		logger.Info("Handling message")

		if err := q.jobRouter.HandleMessage(ctx, message); err != nil {
			logger.WithError(err).Error("Failed to process message")

			if err = message.Nack(false, false); err != nil {
				logger.WithError(err).Error("Failed to nack message")
			}
			continue
		}

		logger.Info("Successfully processed message")
		if err = message.Ack(false); err != nil {
			logger.WithError(err).Error("Failed to ack message")
		}
	}

	return nil
}

func (q *QueueWorker) Stop() {
	q.channelLock.Lock()
	defer q.channelLock.Unlock()

	if q.channel == nil {
		return
	}

	_ = q.channel.Close()
	q.channel = nil
}
