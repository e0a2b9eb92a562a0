package events

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteJournal persists the activity feed in a SQLite database so it
// survives restarts
type SQLiteJournal struct {
	db  *sqlx.DB
	log *zap.Logger
}

type eventRow struct {
	ID         string `db:"id"`
	CompanyID  string `db:"company_id"`
	Type       string `db:"type"`
	Subject    string `db:"subject"`
	Actor      string `db:"actor"`
	Data       string `db:"data"`
	OccurredAt int64  `db:"occurred_at"`
}

// OpenSQLiteJournal opens (creating if needed) the database at path and
// applies pending migrations
func OpenSQLiteJournal(ctx context.Context, path string, log *zap.Logger) (*SQLiteJournal, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases coherent and serializes writers
	db.SetMaxOpenConns(1)

	j := &SQLiteJournal{db: db, log: log}
	if err := j.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

var _ repositories.EventJournal = (*SQLiteJournal)(nil)

func (j *SQLiteJournal) migrate(ctx context.Context) error {
	list, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}
	sort.Slice(list, func(i, k int) bool {
		return list[i].Name() < list[k].Name()
	})

	var current int
	if err := j.db.GetContext(ctx, &current, "PRAGMA user_version"); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	for _, f := range list {
		v, err := scriptVersion(f.Name())
		if err != nil {
			return err
		}
		if v <= current {
			continue
		}

		j.log.Debug("Executing journal migration", zap.String("migration_name", f.Name()))
		script, err := migrations.ReadFile("migrations/" + f.Name())
		if err != nil {
			return err
		}

		tx, err := j.db.BeginTxx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(script)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %s: %w", f.Name(), err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", v)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		current = v
	}
	return nil
}

// scriptVersion extracts the leading number of a migration name such as 0001_events.sql
func scriptVersion(name string) (int, error) {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok {
		return 0, fmt.Errorf("migration %s has no version prefix", name)
	}
	return strconv.Atoi(prefix)
}

func (j *SQLiteJournal) Append(ctx context.Context, event entities.Event) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}

	row := eventRow{
		ID:         event.ID,
		CompanyID:  string(event.CompanyID),
		Type:       event.Type,
		Subject:    event.Subject,
		Actor:      string(event.Actor),
		Data:       string(data),
		OccurredAt: event.OccurredAt.UnixNano(),
	}
	_, err = j.db.NamedExecContext(ctx, `
		INSERT INTO events (id, company_id, type, subject, actor, data, occurred_at)
		VALUES (:id, :company_id, :type, :subject, :actor, :data, :occurred_at)`, row)
	return err
}

func (j *SQLiteJournal) List(ctx context.Context, companyID entities.CompanyID, since time.Time, limit int) ([]entities.Event, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	var sinceNanos int64
	if !since.IsZero() {
		sinceNanos = since.UnixNano()
	}

	var rows []eventRow
	if err := j.db.SelectContext(ctx, &rows, `
		SELECT id, company_id, type, subject, actor, data, occurred_at
		FROM events
		WHERE company_id = ? AND occurred_at > ?
		ORDER BY occurred_at DESC, rowid DESC
		LIMIT ?`, string(companyID), sinceNanos, limit); err != nil {
		return nil, err
	}

	result := make([]entities.Event, 0, len(rows))
	for _, r := range rows {
		var data map[string]interface{}
		if r.Data != "" && r.Data != "null" {
			if err := json.Unmarshal([]byte(r.Data), &data); err != nil {
				return nil, fmt.Errorf("decode event %s: %w", r.ID, err)
			}
		}
		result = append(result, entities.Event{
			ID:         r.ID,
			CompanyID:  entities.CompanyID(r.CompanyID),
			Type:       r.Type,
			Subject:    r.Subject,
			Actor:      entities.UserID(r.Actor),
			Data:       data,
			OccurredAt: time.Unix(0, r.OccurredAt).UTC(),
		})
	}
	return result, nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
