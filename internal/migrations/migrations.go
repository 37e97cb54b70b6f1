package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Source отдаёт встроенные миграции как источник golang-migrate.
func Source() (source.Driver, error) {
	return iofs.New(files, "sql")
}

// open берёт отдельное соединение: m.Close() закрывает *sql.DB драйвера.
func open(dsn string) (*migrate.Migrate, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	drv, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate driver: %w", err)
	}
	src, err := Source()
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", drv)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate init: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate, log *zap.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		log.Warn("migrate close", zap.Error(err))
	}
}

// Up применяет все новые миграции.
func Up(dsn string, log *zap.Logger) error {
	m, err := open(dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("no migrations to apply")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}
	logVersion(m, log)
	return nil
}

// Down откатывает steps миграций (steps <= 0 откатывает все).
func Down(dsn string, steps int, log *zap.Logger) error {
	m, err := open(dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m, log)

	if steps > 0 {
		err = m.Steps(-steps)
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	logVersion(m, log)
	return nil
}

func logVersion(m *migrate.Migrate, log *zap.Logger) {
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("schema is empty")
	case err != nil:
		log.Warn("migrate version", zap.Error(err))
	default:
		log.Info("schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	}
}
