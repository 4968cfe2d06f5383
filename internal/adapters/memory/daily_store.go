package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jsamuelsen/quote-catalog/internal/domain"
	"github.com/jsamuelsen/quote-catalog/internal/ports"
)

var _ ports.DailyQuoteStore = (*DailyQuoteStore)(nil)

// DailyQuoteStore keeps daily picks in memory. Picks are lost on restart.
type DailyQuoteStore struct {
	mu    sync.RWMutex
	picks map[time.Time]int64
}

// NewDailyQuoteStore creates an empty store.
func NewDailyQuoteStore() *DailyQuoteStore {
	return &DailyQuoteStore{picks: make(map[time.Time]int64)}
}

// GetDaily implements ports.DailyQuoteStore.
func (s *DailyQuoteStore) GetDaily(ctx context.Context, day time.Time) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.picks[domain.Day(day)]

	return id, ok, nil
}

// PutDaily implements ports.DailyQuoteStore.
func (s *DailyQuoteStore) PutDaily(ctx context.Context, day time.Time, quoteID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.picks[domain.Day(day)] = quoteID
	s.mu.Unlock()

	return nil
}
