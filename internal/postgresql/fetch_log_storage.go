package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-exchange/internal/service/logger"
)

type FetchLogStorage struct {
	pgpool *pgxpool.Pool
}

func NewFetchLogStorage(pgpool *pgxpool.Pool) *FetchLogStorage {
	return &FetchLogStorage{pgpool: pgpool}
}

func (s *FetchLogStorage) InsertFetch(ctx context.Context, e logger.FetchEntry) error {
	var asOf *time.Time
	if e.DateAsOf != nil && !e.DateAsOf.IsZero() {
		t := time.Date(e.DateAsOf.Year(), e.DateAsOf.Month(), e.DateAsOf.Day(), 0, 0, 0, 0, time.UTC)
		asOf = &t
	}

	var errText *string
	if e.Error != "" {
		errText = &e.Error
	}

	_, err := s.pgpool.Exec(ctx, `
insert into fetch_log (cycle_id, driver, status, date_as_of, records, error, duration_ms)
values ($1::uuid, $2, $3, $4::date, $5, $6, $7);
`, e.CycleID, e.Driver, e.Status, asOf, e.Records, errText, e.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert fetch_log: %w", err)
	}
	return nil
}
