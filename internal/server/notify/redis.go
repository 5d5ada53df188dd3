package notify

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis notifier.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// RedisNotifier shares signals between server instances over one Redis
// pub/sub channel. Every instance, the publisher included, delivers a
// signal to its local subscribers when it comes back from Redis.
type RedisNotifier struct {
	rdb     *redis.Client
	channel string
	local   *Hub
	logger  logging.Logger
	pubsub  *redis.PubSub
	stopped chan struct{}
}

// NewRedisNotifier connects to Redis and starts the subscription loop.
func NewRedisNotifier(ctx context.Context, opts RedisOptions, logger logging.Logger) (*RedisNotifier, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	n := &RedisNotifier{
		rdb:     rdb,
		channel: opts.Channel,
		local:   NewHub(),
		logger:  logger.With("module", "notify"),
		pubsub:  rdb.Subscribe(ctx, opts.Channel),
		stopped: make(chan struct{}),
	}
	if _, err := n.pubsub.Receive(ctx); err != nil {
		_ = n.pubsub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}
	go n.loop()
	return n, nil
}

func (n *RedisNotifier) loop() {
	defer close(n.stopped)
	for msg := range n.pubsub.Channel() {
		n.handle(msg.Payload)
	}
}

func (n *RedisNotifier) handle(topic string) {
	if topic == "" {
		return
	}
	n.local.deliver(topic)
}

func (n *RedisNotifier) Publish(ctx context.Context, topic string) error {
	if err := n.rdb.Publish(ctx, n.channel, topic).Err(); err != nil {
		n.logger.Error(ctx, "redis publish failed", "topic", topic, "error", err)
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(ctx context.Context, topic string) (<-chan struct{}, error) {
	return n.local.Subscribe(ctx, topic)
}

func (n *RedisNotifier) Close() error {
	err := n.pubsub.Close()
	<-n.stopped
	_ = n.local.Close()
	if cerr := n.rdb.Close(); err == nil {
		err = cerr
	}
	return err
}
