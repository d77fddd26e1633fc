// Package ledger maintains the append-only CSV log of registered students.
package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/model"
)

// Ledger appends one row per student to a CSV file.
type Ledger struct {
	path string
}

// New returns a ledger writing to path.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the CSV file location.
func (l *Ledger) Path() string {
	return l.path
}

// Header returns the fixed header row, without the trailing newline.
func Header() string {
	cols := []string{"Nome", "Série", "Faltas", "Aprovado", "Motivo"}
	for _, s := range model.Subjects {
		cols = append(cols, s.Column())
	}
	return strings.Join(cols, ",")
}

// Reset removes the log file. A missing file is not an error.
func (l *Ledger) Reset() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to reset log: %w", err)
	}
	return nil
}

// Append writes the header when the file is new, then one row for the student.
func (l *Ledger) Append(rec model.StudentRecord, res model.EvaluationResult) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close; the row was already written.
			_ = cerr
		}
	}()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat log: %w", err)
	}
	if info.Size() == 0 {
		if _, err := file.WriteString(Header() + "\n"); err != nil {
			return fmt.Errorf("failed to write log header: %w", err)
		}
	}
	if _, err := file.WriteString(Row(rec, res) + "\n"); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	return nil
}

// Row formats one data row. Text fields are always quoted; numbers are not.
func Row(rec model.StudentRecord, res model.EvaluationResult) string {
	approved := "Não"
	if res.Passed {
		approved = "Sim"
	}
	fields := []string{
		quote(rec.Name),
		quote(rec.GradeLevel),
		strconv.Itoa(rec.Absences),
		approved,
		quote(res.Reason),
	}
	for _, avg := range grading.SubjectAverages(rec) {
		fields = append(fields, grading.FormatOneDecimal(avg))
	}
	return strings.Join(fields, ",")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
