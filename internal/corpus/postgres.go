package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore is a Store in a PostgreSQL database.
// Corpora are tables in the connection's current schema.
type PostgresStore struct {
	sqlStore
}

// OpenPostgres connects to the database at dsn and creates the crawl
// history table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PostgresStore{sqlStore: sqlStore{db: db, dialect: postgresDialect()}}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func postgresDialect() dialect {
	return dialect{
		numbered: true,
		corpusColumns: `
			seq BIGSERIAL PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT ''`,
		tableExists: `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1`,
		listTables: `SELECT table_name FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
			ORDER BY table_name`,
		quote: pq.QuoteIdentifier,
	}
}
