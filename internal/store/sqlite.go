package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seantiz/rtwork/internal/model"

	_ "modernc.org/sqlite"
)

const createCyclesTable = `
CREATE TABLE IF NOT EXISTS cycles (
    id                TEXT PRIMARY KEY,
    seq               INTEGER NOT NULL,
    instances         INTEGER NOT NULL,
    scheduled         INTEGER NOT NULL,
    schedule_rejected INTEGER NOT NULL,
    executed          INTEGER NOT NULL,
    work_failed       INTEGER NOT NULL,
    responses         INTEGER NOT NULL,
    response_rejected INTEGER NOT NULL,
    response_failed   INTEGER NOT NULL,
    barriers          INTEGER NOT NULL,
    status            TEXT NOT NULL,
    duration_us       INTEGER NOT NULL,
    started_at        DATETIME NOT NULL,
    finished_at       DATETIME NOT NULL
)`

const createCyclesStartedIndex = `CREATE INDEX IF NOT EXISTS idx_cycles_started ON cycles (started_at)`

const cycleColumns = `id, seq, instances, scheduled, schedule_rejected, executed,
	work_failed, responses, response_rejected, response_failed, barriers,
	status, duration_us, started_at, finished_at`

// ErrNotFound is returned when a cycle is not found.
var ErrNotFound = errors.New("cycle not found")

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A :memory: database is per connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	for _, stmt := range []string{createCyclesTable, createCyclesStartedIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertCycle appends a cycle report to the journal.
func (s *SQLiteStore) InsertCycle(ctx context.Context, c *model.Cycle) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (`+cycleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, int64(c.Seq), c.Instances, c.Scheduled, c.ScheduleRejected, c.Executed,
		c.WorkFailed, c.Responses, c.ResponseRejected, c.ResponseFailed, c.Barriers,
		c.Status, c.DurationUS, c.StartedAt, c.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cycle: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCycle(sc scanner) (*model.Cycle, error) {
	c := &model.Cycle{}
	var seq int64
	err := sc.Scan(
		&c.ID, &seq, &c.Instances, &c.Scheduled, &c.ScheduleRejected, &c.Executed,
		&c.WorkFailed, &c.Responses, &c.ResponseRejected, &c.ResponseFailed, &c.Barriers,
		&c.Status, &c.DurationUS, &c.StartedAt, &c.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Seq = uint64(seq)
	return c, nil
}

// GetCycle retrieves a cycle by ID.
func (s *SQLiteStore) GetCycle(ctx context.Context, id string) (*model.Cycle, error) {
	c, err := scanCycle(s.db.QueryRowContext(ctx,
		`SELECT `+cycleColumns+` FROM cycles WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cycle: %w", err)
	}
	return c, nil
}

// ListCycles returns a page of cycles, newest first, along with the total
// number of cycles in the journal.
func (s *SQLiteStore) ListCycles(ctx context.Context, limit, offset int) ([]*model.Cycle, int, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM cycles").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cycles: %w", err)
	}

	// ULIDs sort by creation time, so id breaks ties within one timestamp.
	rows, err := tx.QueryContext(ctx,
		`SELECT `+cycleColumns+` FROM cycles ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*model.Cycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cycle: %w", err)
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate cycles: %w", err)
	}

	return cycles, total, nil
}

// GetCycleStats aggregates counters over the whole journal.
func (s *SQLiteStore) GetCycleStats(ctx context.Context) (*CycleStats, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read tx: %w", err)
	}
	defer tx.Rollback()

	stats := &CycleStats{CountByStatus: make(map[string]int)}
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(scheduled), 0), COALESCE(SUM(schedule_rejected), 0),
			COALESCE(SUM(executed), 0), COALESCE(SUM(work_failed), 0),
			COALESCE(SUM(responses), 0), COALESCE(SUM(response_rejected), 0),
			COALESCE(SUM(response_failed), 0),
			COALESCE(AVG(duration_us), 0), COALESCE(MAX(duration_us), 0)
		FROM cycles`,
	).Scan(
		&stats.Total,
		&stats.Scheduled, &stats.ScheduleRejected,
		&stats.Executed, &stats.WorkFailed,
		&stats.Responses, &stats.ResponseRejected,
		&stats.ResponseFailed,
		&stats.AvgDurationUS, &stats.MaxDurationUS,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate cycles: %w", err)
	}

	rows, err := tx.QueryContext(ctx, "SELECT status, COUNT(*) FROM cycles GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.CountByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return stats, nil
}

// PruneCycles deletes all but the newest keep cycles and returns how many
// were removed.
func (s *SQLiteStore) PruneCycles(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM cycles WHERE id NOT IN (
			SELECT id FROM cycles ORDER BY started_at DESC, id DESC LIMIT ?
		)`, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune cycles: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return int(n), nil
}
