package migrations

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/Skotchmaster/travel_app/pkg/logging"
)

func all() []*goose.Migration {
	return []*goose.Migration{
		goose.NewGoMigration(1, &goose.GoFunc{RunTx: upInit}, &goose.GoFunc{RunTx: downInit}),
	}
}

type Migrator struct {
	db       *sql.DB
	provider *goose.Provider
}

// Open connects to a postgres database for schema changes.
func Open(dsn string) (*Migrator, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration db: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, nil,
		goose.WithDisableGlobalRegistry(true),
		goose.WithGoMigrations(all()...),
	)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return &Migrator{db: db, provider: p}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	res, err := m.provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range res {
		logging.FromContext(ctx).Info("migration_applied", "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}
	return nil
}

func (m *Migrator) Down(ctx context.Context) error {
	r, err := m.provider.Down(ctx)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Info("migration_rolled_back", "version", r.Source.Version)
	return nil
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return m.provider.GetDBVersion(ctx)
}

func (m *Migrator) Close() error {
	return m.db.Close()
}
