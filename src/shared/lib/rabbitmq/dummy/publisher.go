package dummy

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/hymnbook/hymnbook-be/src/shared/lib/rabbitmq"
	"github.com/rabbitmq/amqp091-go"
)

var _ rabbitmq.Publisher = &Publisher{}

type Publisher struct {
	Unavailable bool
	Messages    []amqp091.Publishing
	mutex       sync.Mutex
}

func (p *Publisher) Publish(ctx context.Context, msg amqp091.Publishing) error {
	if p.Unavailable {
		return errors.New("Dummy publisher is unavailable")
	}

	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "Publish was cancelled")
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.Messages = append(p.Messages, msg)
	return nil
}

func (p *Publisher) Published() []amqp091.Publishing {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	return append([]amqp091.Publishing{}, p.Messages...)
}
