package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/crawlsearch/internal/model"
)

// Store persists corpora. Implementations are safe for concurrent use.
type Store interface {
	// CreateCorpus creates an empty corpus.
	CreateCorpus(ctx context.Context, name string) error
	// DropCorpus deletes a corpus and all of its records.
	DropCorpus(ctx context.Context, name string) error
	// CorpusExists reports whether the corpus exists.
	CorpusExists(ctx context.Context, name string) (bool, error)
	// ResetCorpus drops the corpus if present and creates it empty.
	ResetCorpus(ctx context.Context, name string) error

	// AppendRecord stores rec. A record for an already stored URL replaces
	// the old content but keeps its position.
	AppendRecord(ctx context.Context, name string, rec *model.PageRecord) error
	// FetchAll returns every record in insertion order.
	FetchAll(ctx context.Context, name string) ([]*model.PageRecord, error)
	// RowCount returns the number of records.
	RowCount(ctx context.Context, name string) (int, error)
	// DeleteRecord removes the record of url.
	DeleteRecord(ctx context.Context, name, url string) error
	// UpdateBody replaces the body text of url.
	UpdateBody(ctx context.Context, name, url, body string) error

	// RenameCorpus renames oldName to newName.
	RenameCorpus(ctx context.Context, oldName, newName string) error
	// CopyCorpus creates dst holding the records of src in the same order.
	CopyCorpus(ctx context.Context, src, dst string) error
	// ListCorpora returns every corpus with its row count, sorted by name.
	ListCorpora(ctx context.Context) ([]model.CorpusInfo, error)

	// SaveCrawlRun records the summary of a finished crawl.
	SaveCrawlRun(ctx context.Context, summary *model.CrawlSummary) error
	// CrawlRuns returns the crawl history of a corpus, newest first.
	CrawlRuns(ctx context.Context, name string) ([]model.CrawlSummary, error)

	// Close releases the database connection.
	Close() error
}

// dialect captures the SQL differences between the backends.
type dialect struct {
	// numbered placeholders ($1, $2, ...) instead of '?'.
	numbered bool
	// corpusColumns is the column list of a corpus table.
	corpusColumns string
	// tableExists counts tables with the name given as the only argument.
	tableExists string
	// listTables lists every table name.
	listTables string
	// quote quotes an identifier.
	quote func(string) string
}

// rebind rewrites '?' placeholders for dialects with numbered placeholders.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sqlStore implements Store on top of database/sql.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*sqlStore)(nil)

const crawlRunsSchema = `
CREATE TABLE IF NOT EXISTS crawl_runs (
	job_id TEXT PRIMARY KEY,
	corpus TEXT NOT NULL,
	origin_url TEXT NOT NULL,
	state TEXT NOT NULL,
	visited INTEGER NOT NULL DEFAULT 0,
	stored INTEGER NOT NULL DEFAULT 0,
	failed INTEGER NOT NULL DEFAULT 0,
	elapsed_ms BIGINT NOT NULL DEFAULT 0,
	timed_out INTEGER NOT NULL DEFAULT 0,
	started_at TEXT NOT NULL,
	error TEXT NOT NULL DEFAULT ''
)`

func (s *sqlStore) createTables(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, crawlRunsSchema); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_crawl_runs_corpus ON crawl_runs(corpus)")
	return err
}

// Close implements Store.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

func (s *sqlStore) table(name string) string {
	return s.dialect.quote(name)
}

// CorpusExists implements Store.
func (s *sqlStore) CorpusExists(ctx context.Context, name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	return s.tableExists(ctx, name)
}

func (s *sqlStore) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.dialect.tableExists, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check corpus %s: %w", name, err)
	}
	return count > 0, nil
}

// requireCorpus validates name and returns ErrCorpusNotFound if it is missing.
func (s *sqlStore) requireCorpus(ctx context.Context, name string) error {
	ok, err := s.CorpusExists(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrCorpusNotFound, name)
	}
	return nil
}

// CreateCorpus implements Store.
func (s *sqlStore) CreateCorpus(ctx context.Context, name string) error {
	ok, err := s.CorpusExists(ctx, name)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrCorpusExists, name)
	}
	if _, err := s.db.ExecContext(ctx, s.createQuery(name)); err != nil {
		return fmt.Errorf("failed to create corpus %s: %w", name, err)
	}
	return nil
}

func (s *sqlStore) createQuery(name string) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", s.table(name), s.dialect.corpusColumns)
}

// DropCorpus implements Store.
func (s *sqlStore) DropCorpus(ctx context.Context, name string) error {
	if err := s.requireCorpus(ctx, name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE "+s.table(name)); err != nil {
		return fmt.Errorf("failed to drop corpus %s: %w", name, err)
	}
	return nil
}

// ResetCorpus implements Store.
func (s *sqlStore) ResetCorpus(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.table(name)); err != nil {
		return fmt.Errorf("failed to drop corpus %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, s.createQuery(name)); err != nil {
		return fmt.Errorf("failed to create corpus %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset of %s: %w", name, err)
	}
	return nil
}

// AppendRecord implements Store.
func (s *sqlStore) AppendRecord(ctx context.Context, name string, rec *model.PageRecord) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	query := s.dialect.rebind(fmt.Sprintf(`
	INSERT INTO %s (url, title, description, body)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (url) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		body = excluded.body
	`, s.table(name)))

	if _, err := s.db.ExecContext(ctx, query, rec.URL, rec.Title, rec.Description, rec.BodyText); err != nil {
		return fmt.Errorf("failed to append %s to corpus %s: %w", rec.URL, name, err)
	}
	return nil
}

// FetchAll implements Store.
func (s *sqlStore) FetchAll(ctx context.Context, name string) ([]*model.PageRecord, error) {
	if err := s.requireCorpus(ctx, name); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT url, title, description, body FROM %s ORDER BY seq", s.table(name))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus %s: %w", name, err)
	}
	defer rows.Close()

	records := make([]*model.PageRecord, 0)
	for rows.Next() {
		var rec model.PageRecord
		if err := rows.Scan(&rec.URL, &rec.Title, &rec.Description, &rec.BodyText); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corpus %s: %w", name, err)
	}
	return records, nil
}

// RowCount implements Store.
func (s *sqlStore) RowCount(ctx context.Context, name string) (int, error) {
	if err := s.requireCorpus(ctx, name); err != nil {
		return 0, err
	}
	return s.rowCount(ctx, name)
}

func (s *sqlStore) rowCount(ctx context.Context, name string) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+s.table(name)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count corpus %s: %w", name, err)
	}
	return count, nil
}

// DeleteRecord implements Store.
func (s *sqlStore) DeleteRecord(ctx context.Context, name, url string) error {
	if err := s.requireCorpus(ctx, name); err != nil {
		return err
	}
	query := s.dialect.rebind(fmt.Sprintf("DELETE FROM %s WHERE url = ?", s.table(name)))
	return s.execOne(ctx, query, name, url, url)
}

// UpdateBody implements Store.
func (s *sqlStore) UpdateBody(ctx context.Context, name, url, body string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	query := s.dialect.rebind(fmt.Sprintf("UPDATE %s SET body = ? WHERE url = ?", s.table(name)))
	return s.execOne(ctx, query, name, url, body, url)
}

// execOne runs a statement expected to affect exactly one record of url.
func (s *sqlStore) execOne(ctx context.Context, query, name, url string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to modify %s in corpus %s: %w", url, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s in %s", ErrPageNotFound, url, name)
	}
	return nil
}

// RenameCorpus implements Store.
func (s *sqlStore) RenameCorpus(ctx context.Context, oldName, newName string) error {
	if err := s.requireCorpus(ctx, oldName); err != nil {
		return err
	}
	exists, err := s.CorpusExists(ctx, newName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrCorpusExists, newName)
	}

	query := fmt.Sprintf("ALTER TABLE %s RENAME TO %s", s.table(oldName), s.table(newName))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to rename corpus %s to %s: %w", oldName, newName, err)
	}
	return nil
}

// CopyCorpus implements Store.
func (s *sqlStore) CopyCorpus(ctx context.Context, src, dst string) error {
	if err := s.requireCorpus(ctx, src); err != nil {
		return err
	}
	if err := s.CreateCorpus(ctx, dst); err != nil {
		return err
	}

	query := fmt.Sprintf(`
	INSERT INTO %s (url, title, description, body)
	SELECT url, title, description, body FROM %s ORDER BY seq
	`, s.table(dst), s.table(src))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to copy corpus %s to %s: %w", src, dst, err)
	}
	return nil
}

// ListCorpora implements Store.
func (s *sqlStore) ListCorpora(ctx context.Context) ([]model.CorpusInfo, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.listTables)
	if err != nil {
		return nil, fmt.Errorf("failed to list corpora: %w", err)
	}

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		if ValidateName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}
	_ = rows.Close()

	infos := make([]model.CorpusInfo, 0, len(names))
	for _, name := range names {
		n, err := s.rowCount(ctx, name)
		if err != nil {
			return nil, err
		}
		infos = append(infos, model.CorpusInfo{Name: name, Rows: n})
	}
	return infos, nil
}

// SaveCrawlRun implements Store.
func (s *sqlStore) SaveCrawlRun(ctx context.Context, summary *model.CrawlSummary) error {
	query := s.dialect.rebind(`
	INSERT INTO crawl_runs (job_id, corpus, origin_url, state, visited, stored, failed, elapsed_ms, timed_out, started_at, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	timedOut := 0
	if summary.TimedOut {
		timedOut = 1
	}
	_, err := s.db.ExecContext(ctx, query,
		summary.JobID,
		summary.Corpus,
		summary.OriginURL,
		summary.State.String(),
		summary.Visited,
		summary.Stored,
		summary.Failed,
		summary.Elapsed.Milliseconds(),
		timedOut,
		summary.StartedAt.UTC().Format(timestampLayout),
		summary.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}
	return nil
}

// CrawlRuns implements Store.
func (s *sqlStore) CrawlRuns(ctx context.Context, name string) ([]model.CrawlSummary, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	query := s.dialect.rebind(`
	SELECT job_id, corpus, origin_url, state, visited, stored, failed, elapsed_ms, timed_out, started_at, error
	FROM crawl_runs
	WHERE corpus = ?
	ORDER BY started_at DESC
	`)
	rows, err := s.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []model.CrawlSummary
	for rows.Next() {
		var (
			run       model.CrawlSummary
			state     string
			elapsedMS int64
			timedOut  int
			startedAt string
		)
		if err := rows.Scan(&run.JobID, &run.Corpus, &run.OriginURL, &state,
			&run.Visited, &run.Stored, &run.Failed, &elapsedMS, &timedOut, &startedAt, &run.Error); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}
		run.State = parseState(state)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		run.TimedOut = timedOut != 0
		run.StartedAt = parseTimestamp(startedAt)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate crawl runs: %w", err)
	}
	return runs, nil
}

func parseState(s string) model.CrawlState {
	for _, st := range []model.CrawlState{model.CrawlSeeding, model.CrawlRunning, model.CrawlDraining, model.CrawlDone, model.CrawlFailed} {
		if st.String() == s {
			return st
		}
	}
	return model.CrawlFailed
}

// timestampLayout has a fixed width so stored values sort chronologically as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// parseTimestamp accepts the values written by SaveCrawlRun.
// It returns the zero time for anything else.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
