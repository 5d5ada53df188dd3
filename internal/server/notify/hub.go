package notify

import (
	"context"
	"sync"
)

type subscriber struct {
	ch chan struct{}
}

// Hub is the in-process Notifier.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[*subscriber]struct{}
	closed bool
	wg     sync.WaitGroup
	done   chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Publish(_ context.Context, topic string) error {
	h.deliver(topic)
	return nil
}

func (h *Hub) deliver(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.topics[topic] {
		select {
		case s.ch <- struct{}{}:
		default:
		}
	}
}

func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan struct{}, error) {
	s := &subscriber{ch: make(chan struct{}, 1)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*subscriber]struct{})
	}
	h.topics[topic][s] = struct{}{}
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		select {
		case <-ctx.Done():
		case <-h.done:
		}
		h.remove(topic, s)
	}()
	return s.ch, nil
}

func (h *Hub) remove(topic string, s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		if _, ok := subs[s]; ok {
			delete(subs, s)
			close(s.ch)
		}
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Subscribers reports how many subscriptions topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.topics[topic])
}

// Close ends every subscription and waits for them to be released.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}
