package events

import (
	"context"

	"github.com/go-redis/redis/v8"

	"perpus/log"
)

type Handler func(ctx context.Context, e Event) error

// Listener subscribes to the event channels and hands every decoded event
// to its handlers in order.
type Listener struct {
	c        *redis.Client
	handlers []Handler
	ready    chan struct{}
}

// Ready is closed once the subscription is confirmed.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

func (l *Listener) Run(ctx context.Context) error {
	logger := log.GetLogger(ctx)
	pubsub := l.c.Subscribe(ctx, BorrowingChannel, CatalogChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		logger.WithError(err).Errorf("error subscribing %s", err)
		return err
	}
	defer func() { _ = pubsub.Close() }()
	ch := pubsub.Channel()
	close(l.ready)

	logger.Infoln("starting the event listener")
	for {
		select {
		case <-ctx.Done():
			logger.Infoln("stopping the event listener")
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			e, err := Decode(msg.Payload)
			if err != nil {
				logger.WithError(err).Errorf("Unmarshal err: %s", err)
				continue
			}
			for _, h := range l.handlers {
				if err := h(ctx, e); err != nil {
					logger.WithError(err).Errorf("handling %s event %s failed", e.Type, e.ID)
				}
			}
		}
	}
}

func NewListener(c *redis.Client, handlers ...Handler) *Listener {
	return &Listener{
		c:        c,
		handlers: handlers,
		ready:    make(chan struct{}),
	}
}

// LogHandler records every event it sees.
func LogHandler(ctx context.Context, e Event) error {
	log.GetLogger(ctx).WithField("event_id", e.ID).
		Infof("received %s for %s", e.Type, e.EntityID)
	return nil
}
