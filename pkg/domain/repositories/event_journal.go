package repositories

import (
	"context"
	"time"

	"github.com/vsinha/vantax/pkg/domain/entities"
)

// EventJournal stores the per-company activity feed
type EventJournal interface {
	Append(ctx context.Context, event entities.Event) error

	// List returns events newer than since, newest first, at most limit of them.
	List(ctx context.Context, companyID entities.CompanyID, since time.Time, limit int) ([]entities.Event, error)
	Close() error
}
