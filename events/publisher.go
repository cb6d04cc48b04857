package events

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-multierror"

	"perpus/log"
)

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// PublisherFunc lets an in-process handler receive events synchronously.
type PublisherFunc func(ctx context.Context, e Event) error

func (f PublisherFunc) Publish(ctx context.Context, e Event) error { return f(ctx, e) }

type redisPublisher struct {
	c *redis.Client
}

func (p *redisPublisher) Publish(ctx context.Context, e Event) error {
	logger := log.GetLogger(ctx)
	channel := e.Channel()
	if err := p.c.Publish(ctx, channel, e).Err(); err != nil {
		logger.WithError(err).Errorf("error publishing %s event to %s channel", e.Type, channel)
		return err
	}
	logger.Debugf("%s event published to channel :%s", e.Type, channel)
	return nil
}

func NewRedisPublisher(c *redis.Client) Publisher {
	return &redisPublisher{c: c}
}

type fanout []Publisher

// Publish delivers to every publisher and reports all failures together.
func (f fanout) Publish(ctx context.Context, e Event) error {
	var merr *multierror.Error
	for _, p := range f {
		if err := p.Publish(ctx, e); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

func Fanout(publishers ...Publisher) Publisher {
	return fanout(publishers)
}

type nop struct{}

func (nop) Publish(context.Context, Event) error { return nil }

func Nop() Publisher { return nop{} }
