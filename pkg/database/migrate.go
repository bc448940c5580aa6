package database

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

const (
	migrationsTable    = "schema_migrations"
	migrationsLockWait = time.Minute
)

// Migrator applies versioned SQL files (NNNNNN_name.up.sql / .down.sql).
// Every run holds a Postgres advisory lock, so replicas starting together
// apply each version exactly once.
type Migrator struct {
	m *migrate.Migrate
}

// newSource reads migrations from the root of fsys and fails when there are none.
func newSource(fsys fs.FS) (source.Driver, error) {
	src, err := iofs.New(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	if _, err := src.First(); err != nil {
		src.Close()
		return nil, fmt.Errorf("no migrations found: %w", err)
	}
	return src, nil
}

func NewMigrator(pool *pgxpool.Pool, fsys fs.FS) (*Migrator, error) {
	src, err := newSource(fsys)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: migrationsTable})
	if err != nil {
		src.Close()
		db.Close()
		return nil, fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		src.Close()
		driver.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	m.LockTimeout = migrationsLockWait
	return &Migrator{m: m}, nil
}

// Up applies every pending migration. changed is false when the schema was
// already current.
func (m *Migrator) Up() (version uint, changed bool, err error) {
	err = m.m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, false, fmt.Errorf("migrate up: %w", err)
	}
	version, _, verr := m.Version()
	if verr != nil {
		return 0, false, verr
	}
	return version, err == nil, nil
}

// Down rolls back the given number of applied migrations; steps <= 0 rolls
// back everything.
func (m *Migrator) Down(steps int) (uint, error) {
	var err error
	if steps <= 0 {
		err = m.m.Down()
	} else {
		err = m.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrate down: %w", err)
	}
	version, _, err := m.Version()
	return version, err
}

// Version reports the current schema version; 0 means nothing is applied.
func (m *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Migrate brings the schema up to date using the migrations in fsys.
func Migrate(pool *pgxpool.Pool, fsys fs.FS) (version uint, changed bool, err error) {
	m, err := NewMigrator(pool, fsys)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()
	return m.Up()
}
