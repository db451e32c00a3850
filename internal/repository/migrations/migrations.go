package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migrations struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Migrations {
	return &Migrations{pool: pool}
}

func (m *Migrations) Setup(ctx context.Context) error {
	if err := m.setupFetchLogTable(ctx); err != nil {
		return fmt.Errorf("setup fetch_log: %w", err)
	}
	if err := m.setupRequestLogTable(ctx); err != nil {
		return fmt.Errorf("setup request_log: %w", err)
	}
	if err := m.setupAPIKeysTable(ctx); err != nil {
		return fmt.Errorf("setup api_keys: %w", err)
	}
	return nil
}

func (m *Migrations) setupFetchLogTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists fetch_log (
  id          bigserial primary key,
  cycle_id    uuid not null,
  driver      text not null,
  status      text not null,
  date_as_of  date,
  records     integer not null default 0,
  error       text,
  duration_ms bigint not null default 0,
  created_at  timestamptz not null default now()
);

create index if not exists idx_fetch_log_driver_created_at
  on fetch_log (driver, created_at desc);
`)
	if err != nil {
		return fmt.Errorf("ensure table fetch_log: %w", err)
	}
	return nil
}

func (m *Migrations) setupRequestLogTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists request_log (
  id          bigserial primary key,
  path        text not null,
  driver      text,
  status      integer not null,
  date_as_of  date,
  created_at  timestamptz not null default now()
);

alter table request_log add column if not exists driver text;

create index if not exists idx_request_log_driver_created_at
  on request_log (driver, created_at desc);

create index if not exists idx_request_log_created_at
  on request_log (created_at desc);

create index if not exists idx_request_log_path_created_at
  on request_log (path, created_at desc);
`)
	if err != nil {
		return fmt.Errorf("ensure table request_log: %w", err)
	}
	return nil
}

func (m *Migrations) setupAPIKeysTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists api_keys (
  key_hash    text primary key,
  is_active   boolean not null default true,
  drivers     text[] not null default '{}',
  created_at  timestamptz not null default now()
);

alter table api_keys add column if not exists drivers text[] not null default '{}';
`)
	if err != nil {
		return fmt.Errorf("ensure table api_keys: %w", err)
	}
	return nil
}
