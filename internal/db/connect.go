package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:classledger.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/classledger?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  class TEXT NOT NULL,
  published INTEGER NOT NULL DEFAULT 0,
  catalog_json TEXT NOT NULL DEFAULT '[]',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  student_name TEXT NOT NULL,
  roll_number INTEGER NOT NULL DEFAULT 0,
  academic_year TEXT NOT NULL,
  class TEXT NOT NULL,
  section TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS marks (
  enrollment_id TEXT NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  component_code TEXT NOT NULL,
  marks REAL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (enrollment_id, exam_id, component_code)
);

CREATE TABLE IF NOT EXISTS optional_choices (
  enrollment_id TEXT NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
  group_name TEXT NOT NULL,
  subject_id INTEGER NOT NULL,
  subject_name TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (enrollment_id, group_name)
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS exams (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  academic_year TEXT NOT NULL,
  class TEXT NOT NULL,
  published BOOLEAN NOT NULL DEFAULT FALSE,
  catalog_json TEXT NOT NULL DEFAULT '[]',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
  id TEXT PRIMARY KEY,
  student_name TEXT NOT NULL,
  roll_number INTEGER NOT NULL DEFAULT 0,
  academic_year TEXT NOT NULL,
  class TEXT NOT NULL,
  section TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS marks (
  enrollment_id TEXT NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
  exam_id TEXT NOT NULL REFERENCES exams(id) ON DELETE CASCADE,
  component_code TEXT NOT NULL,
  marks DOUBLE PRECISION,
  updated_at BIGINT NOT NULL,
  PRIMARY KEY (enrollment_id, exam_id, component_code)
);

CREATE TABLE IF NOT EXISTS optional_choices (
  enrollment_id TEXT NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
  group_name TEXT NOT NULL,
  subject_id BIGINT NOT NULL,
  subject_name TEXT NOT NULL DEFAULT '',
  PRIMARY KEY (enrollment_id, group_name)
);
`
