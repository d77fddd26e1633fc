// Package store handles SQLite persistence of registrations.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for archived registrations.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS registrations (
			id TEXT PRIMARY KEY,
			registered_at TEXT NOT NULL,
			name TEXT NOT NULL,
			grade_level TEXT NOT NULL,
			absences INTEGER NOT NULL,
			passed INTEGER NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS registration_scores (
			registration_id TEXT NOT NULL,
			subject INTEGER NOT NULL,
			position INTEGER NOT NULL,
			score REAL NOT NULL,
			PRIMARY KEY (registration_id, subject, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_registered_at ON registrations(registered_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRegistration archives a student record with its evaluation and returns
// the stored registration.
func (s *Store) InsertRegistration(ctx context.Context, rec model.StudentRecord, res model.EvaluationResult) (reg model.Registration, err error) {
	reg = model.Registration{
		ID:           uuid.NewString(),
		RegisteredAt: s.now().UTC(),
		Record:       rec,
		Result:       res,
		Averages:     grading.SubjectAverages(rec),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Registration{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (id, registered_at, name, grade_level, absences, passed, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		reg.ID,
		reg.RegisteredAt.Format(timeLayout),
		rec.Name,
		rec.GradeLevel,
		rec.Absences,
		res.Passed,
		res.Reason,
	)
	if err != nil {
		return model.Registration{}, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO registration_scores (registration_id, subject, position, score)
		 VALUES (?, ?, ?, ?)`)
	if err != nil {
		return model.Registration{}, err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, subject := range model.Subjects {
		for pos, score := range rec.Scores[subject] {
			if _, err = stmt.ExecContext(ctx, reg.ID, int(subject), pos, score); err != nil {
				return model.Registration{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Registration{}, err
	}
	return reg, nil
}

// ListRegistrations returns every archived registration, oldest first.
func (s *Store) ListRegistrations(ctx context.Context) ([]model.Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, registered_at, name, grade_level, absences, passed, reason
		 FROM registrations
		 ORDER BY registered_at ASC, rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var regs []model.Registration
	index := map[string]int{}
	for rows.Next() {
		var reg model.Registration
		var registeredAt string
		if err := rows.Scan(&reg.ID, &registeredAt, &reg.Record.Name, &reg.Record.GradeLevel,
			&reg.Record.Absences, &reg.Result.Passed, &reg.Result.Reason); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, registeredAt)
		if err != nil {
			return nil, err
		}
		reg.RegisteredAt = parsed
		index[reg.ID] = len(regs)
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(regs) == 0 {
		return nil, nil
	}

	if err := s.loadScores(ctx, regs, index); err != nil {
		return nil, err
	}
	for i := range regs {
		regs[i].Averages = grading.SubjectAverages(regs[i].Record)
	}
	return regs, nil
}

func (s *Store) loadScores(ctx context.Context, regs []model.Registration, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT registration_id, subject, position, score FROM registration_scores`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var id string
		var subject, pos int
		var score float64
		if err := rows.Scan(&id, &subject, &pos, &score); err != nil {
			return err
		}
		i, ok := index[id]
		if !ok {
			continue
		}
		if subject < 0 || subject >= model.SubjectCount || pos < 0 || pos >= model.ScoresPerSubject {
			return fmt.Errorf("score out of range for registration %s: subject %d position %d", id, subject, pos)
		}
		regs[i].Record.Scores[subject][pos] = score
	}
	return rows.Err()
}
