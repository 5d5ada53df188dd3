package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestHub_PublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := DreamTopic("u1", "doc1")
	a, err := h.Subscribe(ctx, topic)
	require.NoError(t, err)
	b, err := h.Subscribe(ctx, topic)
	require.NoError(t, err)
	other, err := h.Subscribe(ctx, UserTopic("u1"))
	require.NoError(t, err)

	require.NoError(t, h.Publish(ctx, topic))

	for _, ch := range []<-chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("signal not delivered")
		}
	}
	select {
	case <-other:
		t.Fatal("unrelated topic signalled")
	default:
	}
}

func TestHub_SignalsCoalesce(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := h.Subscribe(ctx, "t")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, h.Publish(ctx, "t"))
	}
	<-ch
	select {
	case <-ch:
		t.Fatal("expected a single pending signal")
	default:
	}
}

func TestHub_CancelClosesChannel(t *testing.T) {
	h := NewHub()
	defer h.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := h.Subscribe(ctx, "t")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return h.Subscribers("t") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	h := NewHub()
	ch, err := h.Subscribe(context.Background(), "t")
	require.NoError(t, err)

	require.NoError(t, h.Close())
	_, ok := <-ch
	assert.False(t, ok)

	_, err = h.Subscribe(context.Background(), "t")
	assert.ErrorIs(t, err, ErrClosed)
	require.NoError(t, h.Close())
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "dream:u1/d1", DreamTopic("u1", "d1"))
	assert.Equal(t, "user:u1", UserTopic("u1"))
}
