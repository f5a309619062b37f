package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgQuerier is the subset of *pgxpool.Pool the driver needs.
type pgQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresDriver stores session keys in the client_session table, scoped by
// namespace. The schema is created by database.EnsureSchema.
type PostgresDriver struct {
	db        pgQuerier
	namespace string
	closeFn   func()
}

var _ Driver = (*PostgresDriver)(nil)

func NewPostgresDriver(db pgQuerier, namespace string, closeFn func()) *PostgresDriver {
	return &PostgresDriver{db: db, namespace: namespace, closeFn: closeFn}
}

func (d *PostgresDriver) Load(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(ctx,
		`SELECT value FROM client_session WHERE namespace = $1 AND key = $2`,
		d.namespace, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load session key: %w", err)
	}
	return value, true, nil
}

func (d *PostgresDriver) Save(ctx context.Context, key string, value string) error {
	_, err := d.db.Exec(ctx,
		`INSERT INTO client_session (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		d.namespace, key, value)
	if err != nil {
		return fmt.Errorf("save session key: %w", err)
	}
	return nil
}

func (d *PostgresDriver) Delete(ctx context.Context, key string) error {
	_, err := d.db.Exec(ctx,
		`DELETE FROM client_session WHERE namespace = $1 AND key = $2`,
		d.namespace, key)
	if err != nil {
		return fmt.Errorf("delete session key: %w", err)
	}
	return nil
}

func (d *PostgresDriver) Close() error {
	if d.closeFn != nil {
		d.closeFn()
	}
	return nil
}
