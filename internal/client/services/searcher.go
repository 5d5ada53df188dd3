package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/models"
)

// DefaultSearchDelay is the quiet period before a typed query runs.
const DefaultSearchDelay = 300 * time.Millisecond

// Searcher debounces username searches. A new query cancels the previous
// one if it has not delivered yet.
type Searcher struct {
	search func(ctx context.Context, query string) []*models.UserProfile
	delay  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSearcher(search func(ctx context.Context, query string) []*models.UserProfile, delay time.Duration) *Searcher {
	return &Searcher{search: search, delay: delay}
}

// Search schedules query. deliver runs on a background goroutine unless
// the query is superseded, cancelled through ctx, or the Searcher is
// closed first.
func (s *Searcher) Search(ctx context.Context, query string, deliver func([]*models.UserProfile)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		users := s.search(ctx, query)
		if ctx.Err() != nil {
			return
		}
		deliver(users)
	}()
}

// Close cancels any pending query and waits for it to finish.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
