package services

import (
	"context"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
)

// publisher signals topics after committed writes. A failed signal is
// logged; the write stands.
type publisher struct {
	notifier notify.Notifier
	logger   logging.Logger
}

// watch sends load's result now and after every signal on topic until ctx
// is done. The subscription is taken before the first load so no change
// in between is missed.
func watch[T any](ctx context.Context, n notify.Notifier, topic string, load func(context.Context) (T, error), send func(T) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signals, err := n.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	push := func() error {
		v, err := load(ctx)
		if err != nil {
			return err
		}
		return send(v)
	}

	if err := push(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-signals:
			if !ok {
				return nil
			}
			if err := push(); err != nil {
				return err
			}
		}
	}
}

func (p publisher) publish(ctx context.Context, topics ...string) {
	for _, topic := range topics {
		if err := p.notifier.Publish(ctx, topic); err != nil {
			p.logger.Warn(ctx, "publish failed", "topic", topic, "error", err)
		}
	}
}
