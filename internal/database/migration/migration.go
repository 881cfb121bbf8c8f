package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// Driver names the engine registers its connections under.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

type migrationStep struct {
	Name     string
	SQLite   string
	Postgres string
}

func (s migrationStep) statement(driverName string) (string, error) {
	switch driverName {
	case DriverSQLite:
		return s.SQLite, nil
	case DriverPostgres:
		return s.Postgres, nil
	default:
		return "", fmt.Errorf("migration step %s: unsupported driver %q", s.Name, driverName)
	}
}

// Table binds one mapped entity to the statements that create its storage.
// Every statement must be create-if-absent so the whole registry can be replayed.
type Table struct {
	Name  string
	Steps []migrationStep
}

var papersTable = Table{
	Name: "papers",
	Steps: []migrationStep{
		{
			Name: "create_table_papers",
			SQLite: `CREATE TABLE IF NOT EXISTS papers (
  id         INTEGER  PRIMARY KEY AUTOINCREMENT,
  title      VARCHAR  NOT NULL,
  level      VARCHAR  NOT NULL,
  config     JSON     NOT NULL,
  created_at DATETIME
);`,
			Postgres: `CREATE TABLE IF NOT EXISTS papers (
  id         SERIAL    PRIMARY KEY,
  title      VARCHAR   NOT NULL,
  level      VARCHAR   NOT NULL,
  config     JSON      NOT NULL,
  created_at TIMESTAMP
);`,
		},
		{
			Name:     "create_index_papers_id",
			SQLite:   `CREATE INDEX IF NOT EXISTS ix_papers_id ON papers (id);`,
			Postgres: `CREATE INDEX IF NOT EXISTS ix_papers_id ON papers (id);`,
		},
	},
}

// tables is the registry of every declared table, in creation order.
var tables = []Table{papersTable}

// Tables returns the names of all registered tables.
func Tables() []string {
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names
}

// EnsureMigrated creates every registered table and index that does not exist yet.
// It is idempotent: running it against an initialized store changes nothing.
func EnsureMigrated(ctx context.Context, db *sqlx.DB, loc *time.Location) error {
	start := time.Now()
	driverName := db.DriverName()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"driver":    driverName,
		"tables":    Tables(),
	})

	for _, table := range tables {
		for _, step := range table.Steps {
			stepStart := time.Now()
			stmt, err := step.statement(driverName)
			if err == nil {
				_, err = db.ExecContext(ctx, stmt)
			}
			if err != nil {
				logJSON(loc, map[string]any{
					"component":        "database",
					"event":            "db_migration_failed",
					"status":           "error",
					"table":            table.Name,
					"migration_step":   step.Name,
					"error_message":    err.Error(),
					"driver":           driverName,
					"duration_ms":      time.Since(start).Milliseconds(),
					"step_duration_ms": time.Since(stepStart).Milliseconds(),
				})
				return fmt.Errorf("migration step %s failed: %w", step.Name, err)
			}

			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_step",
				"status":           "success",
				"table":            table.Name,
				"migration_step":   step.Name,
				"driver":           driverName,
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
		}
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"driver":      driverName,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	if loc == nil {
		loc = time.UTC
	}
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
