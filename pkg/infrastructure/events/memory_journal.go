package events

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
)

const (
	defaultListLimit       = 50
	defaultRetainPerTenant = 1000
)

// MemoryJournal keeps the most recent events of each company in memory
type MemoryJournal struct {
	mu      sync.RWMutex
	retain  int
	streams map[entities.CompanyID][]entities.Event
}

// NewMemoryJournal creates a journal that retains at most retain events per
// company; older events are discarded first
func NewMemoryJournal(retain int) *MemoryJournal {
	if retain <= 0 {
		retain = defaultRetainPerTenant
	}
	return &MemoryJournal{
		retain:  retain,
		streams: make(map[entities.CompanyID][]entities.Event),
	}
}

var _ repositories.EventJournal = (*MemoryJournal)(nil)

func (j *MemoryJournal) Append(_ context.Context, event entities.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	stream := append(j.streams[event.CompanyID], event)
	if len(stream) > j.retain {
		stream = append([]entities.Event(nil), stream[len(stream)-j.retain:]...)
	}
	j.streams[event.CompanyID] = stream
	return nil
}

func (j *MemoryJournal) List(_ context.Context, companyID entities.CompanyID, since time.Time, limit int) ([]entities.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}

	stream := j.streams[companyID]
	result := make([]entities.Event, 0, limit)
	for i := len(stream) - 1; i >= 0 && len(result) < limit; i-- {
		if !stream[i].OccurredAt.After(since) {
			continue
		}
		result = append(result, stream[i])
	}
	return result, nil
}

func (j *MemoryJournal) Close() error { return nil }
