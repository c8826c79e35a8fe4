package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"akifune.dev/availability"
)

// Run statuses.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// SlotRow is a persisted slot snapshot.
type SlotRow struct {
	ID          string
	MarinaCd    string
	SlotDate    string
	GroupTitle  string
	TimeText    string
	StatusKey   string
	StatusLabel string
	Note        string
	BoatName    string
	SortKey     int
	FetchedAt   time.Time
}

// Run is one month-fetch bookkeeping record.
type Run struct {
	ID           string
	MarinaCd     string
	MonthID      string
	Status       string
	DaysFetched  int
	SlotsFound   int
	ErrorMessage string
}

// Store persists availability snapshots and fetch-run records.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// StartRun creates a running fetch-run record and returns its id.
func (s *Store) StartRun(ctx context.Context, marinaCd, monthID string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_runs (id, marina_cd, month_id, status, started_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		id, marinaCd, monthID, RunRunning)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a run completed with its final counts.
func (s *Store) CompleteRun(ctx context.Context, runID string, daysFetched, slotsFound int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE fetch_runs
		SET status = ?, days_fetched = ?, slots_found = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		RunCompleted, daysFetched, slotsFound, runID)
	if err != nil {
		return fmt.Errorf("complete run: %w", err)
	}
	return nil
}

// FailRun marks a run failed, keeping whatever progress was made.
func (s *Store) FailRun(ctx context.Context, runID string, daysFetched, slotsFound int, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE fetch_runs
		SET status = ?, days_fetched = ?, slots_found = ?, error_message = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		RunFailed, daysFetched, slotsFound, msg, runID)
	if err != nil {
		return fmt.Errorf("fail run: %w", err)
	}
	return nil
}

// SaveDay replaces the stored snapshot for one marina and date with the
// given normalized result. Returns the number of slots written.
func (s *Store) SaveDay(ctx context.Context, marinaCd, isoDate string, result *availability.Result) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM slots WHERE marina_cd = ? AND slot_date = ?",
		marinaCd, isoDate); err != nil {
		return 0, fmt.Errorf("clear previous snapshot: %w", err)
	}

	saved := 0
	if result != nil {
		for _, group := range result.Groups {
			for _, slot := range group.Slots {
				_, err := tx.ExecContext(ctx, `
					INSERT INTO slots
						(id, marina_cd, slot_date, group_title, time_text,
						 status_key, status_label, note, boat_name, sort_key)
					VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
					ON CONFLICT (marina_cd, slot_date, group_title, time_text, boat_name)
					DO UPDATE SET
						status_key = excluded.status_key,
						status_label = excluded.status_label,
						note = excluded.note,
						sort_key = excluded.sort_key,
						fetched_at = CURRENT_TIMESTAMP`,
					uuid.New().String(), marinaCd, isoDate, group.Title, slot.TimeText,
					string(slot.Status.Key), slot.Status.Label, slot.Note, slot.BoatName, slot.SortKey)
				if err != nil {
					return 0, fmt.Errorf("insert slot: %w", err)
				}
				saved++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	slog.Debug("store: saved day snapshot", "marinaCd", marinaCd, "date", isoDate, "slots", saved)
	return saved, nil
}

// DaySlots returns the stored snapshot for one marina and date, in
// group then sort-key order.
func (s *Store) DaySlots(ctx context.Context, marinaCd, isoDate string) ([]SlotRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, marina_cd, slot_date, group_title, time_text,
		       status_key, status_label, note, boat_name, sort_key, fetched_at
		FROM slots
		WHERE marina_cd = ? AND slot_date = ?
		ORDER BY group_title, sort_key, time_text`,
		marinaCd, isoDate)
	if err != nil {
		return nil, fmt.Errorf("query day slots: %w", err)
	}
	defer rows.Close()
	return scanSlotRows(rows)
}

// RecentSlots returns the newest stored slots for a marina, most
// recently fetched first.
func (s *Store) RecentSlots(ctx context.Context, marinaCd string, limit int) ([]SlotRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, marina_cd, slot_date, group_title, time_text,
		       status_key, status_label, note, boat_name, sort_key, fetched_at
		FROM slots
		WHERE marina_cd = ?
		ORDER BY fetched_at DESC, slot_date DESC, sort_key
		LIMIT ?`,
		marinaCd, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent slots: %w", err)
	}
	defer rows.Close()
	return scanSlotRows(rows)
}

// RecentRuns returns the latest fetch-run records for a marina.
func (s *Store) RecentRuns(ctx context.Context, marinaCd string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, marina_cd, month_id, status, days_fetched, slots_found, error_message
		FROM fetch_runs
		WHERE marina_cd = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		marinaCd, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.MarinaCd, &r.MonthID, &r.Status,
			&r.DaysFetched, &r.SlotsFound, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func scanSlotRows(rows *sql.Rows) ([]SlotRow, error) {
	var out []SlotRow
	for rows.Next() {
		var r SlotRow
		if err := rows.Scan(&r.ID, &r.MarinaCd, &r.SlotDate, &r.GroupTitle, &r.TimeText,
			&r.StatusKey, &r.StatusLabel, &r.Note, &r.BoatName, &r.SortKey, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
