package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-exchange/internal/service/logger"
)

type RequestLogStorage struct {
	pgpool *pgxpool.Pool
}

func NewRequestLogStorage(pgpool *pgxpool.Pool) *RequestLogStorage {
	return &RequestLogStorage{pgpool: pgpool}
}

func (s *RequestLogStorage) InsertRequest(ctx context.Context, e logger.RequestEntry) error {
	var driver *string
	if e.Driver != "" {
		driver = &e.Driver
	}

	var asOf *time.Time
	if e.DateAsOf != nil && !e.DateAsOf.IsZero() {
		t := time.Date(e.DateAsOf.Year(), e.DateAsOf.Month(), e.DateAsOf.Day(), 0, 0, 0, 0, time.UTC)
		asOf = &t
	}

	_, err := s.pgpool.Exec(ctx, `
insert into request_log (path, driver, status, date_as_of)
values ($1, $2, $3, $4::date);
`, e.Path, driver, e.Status, asOf)
	if err != nil {
		return fmt.Errorf("insert request_log: %w", err)
	}
	return nil
}
