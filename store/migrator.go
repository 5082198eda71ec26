package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Migration layout:
//
//	migration/{driver}/LATEST.sql            full schema for a fresh database
//	migration/{driver}/NN__description.sql   incremental patch NN
//
// A fresh database gets LATEST.sql and is stamped with the highest patch
// number, since LATEST already contains every patch. An existing database
// gets every patch above its recorded version, in order, in one transaction.

//go:embed migration
var migrationFS embed.FS

const (
	// MigrateFileNameSplit separates the patch number from the description, as in "01__add_index.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName is the full schema applied to fresh installations.
	LatestSchemaFileName = "LATEST.sql"
)

type migrationFile struct {
	version int
	path    string
}

// validateMigrationFileName checks the "NN__description.sql" convention.
func validateMigrationFileName(filename string) (int, error) {
	prefix, _, ok := strings.Cut(filename, MigrateFileNameSplit)
	if !ok {
		return 0, errors.Errorf("invalid migration filename format (missing %s): %s", MigrateFileNameSplit, filename)
	}
	v, err := strconv.Atoi(prefix)
	if err != nil || v <= 0 {
		return 0, errors.Errorf("migration filename must start with a positive number: %s", filename)
	}
	return v, nil
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

func (s *Store) migrationFiles() ([]migrationFile, error) {
	paths, err := fs.Glob(migrationFS, s.getMigrationBasePath()+"*"+MigrateFileNameSplit+"*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration files")
	}
	files := make([]migrationFile, 0, len(paths))
	for _, p := range paths {
		v, err := validateMigrationFileName(filepath.Base(p))
		if err != nil {
			return nil, err
		}
		files = append(files, migrationFile{version: v, path: p})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// Migrate brings the schema up to date.
func (s *Store) Migrate(ctx context.Context) error {
	files, err := s.migrationFiles()
	if err != nil {
		return err
	}
	latest := 0
	if len(files) > 0 {
		latest = files[len(files)-1].version
	}

	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}

	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	if !initialized {
		slog.Info("initializing database schema", slog.String("driver", s.profile.Driver), slog.Int("version", latest))
		stmt, err := migrationFS.ReadFile(s.getMigrationBasePath() + LatestSchemaFileName)
		if err != nil {
			return errors.Wrapf(err, "failed to read %s", LatestSchemaFileName)
		}
		if err := s.execute(ctx, tx, string(stmt)); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.recordVersion(ctx, tx, latest); err != nil {
			return err
		}
		return errors.Wrap(tx.Commit(), "failed to commit schema")
	}

	current, err := s.currentVersion(ctx, tx)
	if err != nil {
		return err
	}
	applied := 0
	for _, f := range files {
		if f.version <= current {
			continue
		}
		slog.Info("applying migration", slog.String("file", f.path), slog.Int("version", f.version))
		stmt, err := migrationFS.ReadFile(f.path)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %s", f.path)
		}
		if err := s.execute(ctx, tx, string(stmt)); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", f.path)
		}
		if err := s.recordVersion(ctx, tx, f.version); err != nil {
			return err
		}
		applied++
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migrations")
	}
	if applied > 0 {
		slog.Info("migration completed", slog.Int("applied", applied), slog.Int("version", latest))
	}
	return nil
}

// SchemaVersion returns the highest recorded patch number.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()
	return s.currentVersion(ctx, tx)
}

func (s *Store) currentVersion(ctx context.Context, tx *sql.Tx) (int, error) {
	var v sql.NullInt64
	if err := tx.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migration").Scan(&v); err != nil {
		return 0, errors.Wrap(err, "failed to read schema version")
	}
	return int(v.Int64), nil
}

func (s *Store) recordVersion(ctx context.Context, tx *sql.Tx, version int) error {
	if version == 0 {
		return nil
	}
	var stmt string
	switch s.profile.Driver {
	case "postgres":
		stmt = "INSERT INTO schema_migration (version) VALUES ($1) ON CONFLICT (version) DO NOTHING"
	default:
		stmt = "INSERT INTO schema_migration (version) VALUES (?) ON CONFLICT (version) DO NOTHING"
	}
	if _, err := tx.ExecContext(ctx, stmt, version); err != nil {
		return errors.Wrapf(err, "failed to record schema version %d", version)
	}
	return nil
}

// execute runs a multi-statement script inside tx.
func (*Store) execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to execute statement")
	}
	return nil
}
