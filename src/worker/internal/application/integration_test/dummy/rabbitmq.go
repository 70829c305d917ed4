package dummy

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	"github.com/hymnbook/hymnbook-be/src/worker/internal/application/worker"
	"github.com/rabbitmq/amqp091-go"
)

var _ rabbitmq.Publisher = &RabbitMQ{}
var _ worker.MessageChannel = &RabbitMQ{}
var _ amqp091.Acknowledger = RabbitMQAcknowledger{}

var NetworkFailure = errors.New("Dummy rabbitMQ is unavailable")

// RabbitMQ loops published messages straight back to the consumer
type RabbitMQ struct {
	Unavailable    bool
	MessageChannel chan amqp091.Delivery

	ackCounter  int
	nackCounter int
	closeOnce   sync.Once
	mutex       sync.Mutex
}

type RabbitMQAcknowledger struct {
	ack  func()
	nack func()
}

func NewRabbitMQ() *RabbitMQ {
	return &RabbitMQ{
		Unavailable:    false,
		MessageChannel: make(chan amqp091.Delivery, 100),
	}
}

func (r *RabbitMQ) Publish(ctx context.Context, msg amqp091.Publishing) error {
	if r.Unavailable {
		return NetworkFailure
	}

	acknowledger := RabbitMQAcknowledger{
		ack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.ackCounter++
		},
		nack: func() {
			r.mutex.Lock()
			defer r.mutex.Unlock()
			r.nackCounter++
		},
	}

	r.MessageChannel <- amqp091.Delivery{
		Acknowledger: acknowledger,
		ContentType:  msg.ContentType,
		Timestamp:    msg.Timestamp,
		Type:         msg.Type,
		Body:         msg.Body,
	}
	return nil
}

func (r *RabbitMQ) Consume(_ string, _ string, _ bool, _ bool, _ bool, _ bool, _ amqp091.Table) (<-chan amqp091.Delivery, error) {
	if r.Unavailable {
		return nil, NetworkFailure
	}

	return r.MessageChannel, nil
}

// Close ends the consumer's stream, which is how tests let a worker finish
func (r *RabbitMQ) Close() error {
	r.closeOnce.Do(func() {
		close(r.MessageChannel)
	})
	return nil
}

func (r *RabbitMQ) Acks() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.ackCounter
}

func (r *RabbitMQ) Nacks() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.nackCounter
}

func (r RabbitMQAcknowledger) Ack(tag uint64, multiple bool) error {
	r.ack()
	return nil
}

func (r RabbitMQAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	r.nack()
	return nil
}

func (r RabbitMQAcknowledger) Reject(tag uint64, requeue bool) error {
	r.nack()
	return nil
}
