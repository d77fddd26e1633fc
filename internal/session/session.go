// Package session drives the interactive registration loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/ledger"
	"github.com/verte-zerg/gradebook/internal/model"
	"github.com/verte-zerg/gradebook/internal/report"
)

const (
	menuRegister = "1"
	menuExit     = "2"
)

// Archive persists registrations beyond the current process.
type Archive interface {
	InsertRegistration(ctx context.Context, rec model.StudentRecord, res model.EvaluationResult) (model.Registration, error)
}

// Session owns the prompt stream and the students registered so far.
type Session struct {
	opts    model.Options
	out     io.Writer
	prompt  *Prompter
	ledger  *ledger.Ledger
	archive Archive
	logger  *slog.Logger
	styles  styles
	now     func() time.Time

	students []model.Registration
}

// New constructs a session reading answers from in. archive may be nil.
func New(opts model.Options, in io.Reader, out io.Writer, archive Archive, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		opts:    opts,
		out:     out,
		prompt:  NewPrompter(in, out),
		ledger:  ledger.New(filepath.Join(opts.OutputDir, opts.LogName)),
		archive: archive,
		logger:  logger,
		styles:  newStyles(out),
		now:     time.Now,
	}
}

// Students returns the registrations made during this session, in order.
func (s *Session) Students() []model.Registration {
	return append([]model.Registration(nil), s.students...)
}

// Run resets the log and serves the menu until the user exits or input ends.
func (s *Session) Run(ctx context.Context) error {
	defer s.prompt.Close()

	if err := s.ledger.Reset(); err != nil {
		return err
	}
	s.logger.Debug("log reset", "path", s.ledger.Path())

	s.println(s.styles.paint(s.styles.title, "Bem-vindo ao Sistema Escolar!"))
	for {
		s.println()
		s.println(s.styles.paint(s.styles.title, "=== SISTEMA ESCOLAR ==="))
		s.println("1. Cadastrar novo aluno")
		s.println("2. Sair")

		choice, err := s.prompt.Ask(ctx, "\nEscolha uma opção: ")
		if err != nil {
			return s.finish(err)
		}
		switch strings.TrimSpace(choice) {
		case menuRegister:
			if _, err := s.Register(ctx); err != nil {
				return s.finish(err)
			}
		case menuExit:
			return s.finish(nil)
		default:
			s.println(s.styles.paint(s.styles.warning, "Opção inválida!"))
		}
	}
}

func (s *Session) finish(err error) error {
	if errors.Is(err, ErrInputClosed) {
		s.logger.Debug("input closed; leaving menu")
		err = nil
	}
	if err != nil {
		return err
	}
	s.println("Saindo do sistema...")
	if len(s.students) > 0 {
		s.println()
		s.println(s.styles.paint(s.styles.section, fmt.Sprintf("Alunos cadastrados: %d", len(s.students))))
		for _, line := range report.RenderRoster(s.students) {
			s.println(line)
		}
	}
	return nil
}

// Register collects one student, evaluates it and writes its report and log row.
func (s *Session) Register(ctx context.Context) (model.Registration, error) {
	s.println()
	s.println(s.styles.paint(s.styles.title, "=== CADASTRO DE ALUNO ==="))
	s.println()

	rec, err := s.collectRecord(ctx)
	if err != nil {
		if errors.Is(err, ErrInputClosed) {
			s.logger.Warn("input closed during registration; record discarded")
		}
		return model.Registration{}, err
	}

	res := grading.Evaluate(rec)
	text := report.Render(rec, res)

	// Archive first so a failed insert leaves no report or log row behind.
	reg, err := s.archiveRecord(ctx, rec, res)
	if err != nil {
		return model.Registration{}, err
	}

	reportPath := filepath.Join(s.opts.OutputDir, ReportFileName(rec.Name))
	if err := writeFileAtomic(reportPath, []byte(text)); err != nil {
		return model.Registration{}, fmt.Errorf("failed to write report: %w", err)
	}
	if err := s.ledger.Append(rec, res); err != nil {
		return model.Registration{}, err
	}
	s.students = append(s.students, reg)
	s.logger.Info("student registered", "id", reg.ID, "passed", res.Passed, "report", reportPath)

	s.println()
	s.println(s.styles.paint(s.styles.success, "✅ Boletim gerado com sucesso: "+reportPath))
	s.println(s.styles.paint(s.styles.success, "✅ Dados do aluno salvos em "+s.ledger.Path()))
	s.println()
	s.println(text)
	return reg, nil
}

func (s *Session) archiveRecord(ctx context.Context, rec model.StudentRecord, res model.EvaluationResult) (model.Registration, error) {
	if s.archive == nil {
		return model.Registration{
			ID:           uuid.NewString(),
			RegisteredAt: s.now().UTC(),
			Record:       rec,
			Result:       res,
			Averages:     grading.SubjectAverages(rec),
		}, nil
	}
	reg, err := s.archive.InsertRegistration(ctx, rec, res)
	if err != nil {
		return model.Registration{}, fmt.Errorf("failed to archive registration: %w", err)
	}
	return reg, nil
}

func (s *Session) collectRecord(ctx context.Context) (model.StudentRecord, error) {
	var rec model.StudentRecord
	var err error

	if rec.Name, err = s.prompt.Ask(ctx, "Nome do aluno: "); err != nil {
		return rec, err
	}
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.GradeLevel, err = s.prompt.Ask(ctx, "Série do aluno: "); err != nil {
		return rec, err
	}
	rec.GradeLevel = strings.TrimSpace(rec.GradeLevel)

	rec.Absences, err = s.prompt.AskInt(ctx, "Número de faltas: ",
		fmt.Sprintf("Por favor, digite um número válido de faltas (0-%d).", model.MaxAbsences),
		0, model.MaxAbsences)
	if err != nil {
		return rec, err
	}

	s.println()
	s.println(s.styles.paint(s.styles.section, "--- Coletando notas das matérias ---"))
	for _, subject := range model.Subjects {
		if rec.Scores[subject], err = s.collectScores(ctx, subject); err != nil {
			return rec, err
		}
	}
	return rec, nil
}

func (s *Session) collectScores(ctx context.Context, subject model.Subject) (model.Scores, error) {
	var scores model.Scores
	s.println()
	s.println(s.styles.paint(s.styles.muted, fmt.Sprintf("Coletando notas de %s:", subject.Label())))
	for i := range scores {
		question := fmt.Sprintf("Nota %d (%g-%g): ", i+1, model.MinScore, model.MaxScore)
		v, err := s.prompt.AskFloat(ctx, question, "Por favor, digite uma nota válida entre 0 e 10.", model.MinScore, model.MaxScore)
		if err != nil {
			return scores, err
		}
		scores[i] = v
	}
	return scores, nil
}

// ReportFileName derives the report file name from a student name. Each run of
// whitespace becomes one underscore; path separators are replaced too.
func ReportFileName(name string) string {
	var b strings.Builder
	b.WriteString("boletim_")
	inSpace := false
	for _, r := range name {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		if r == '/' || r == '\\' {
			r = '_'
		}
		b.WriteRune(r)
	}
	b.WriteString(".txt")
	return b.String()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmpFile, err := os.CreateTemp(dir, "boletim-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

func (s *Session) println(args ...any) {
	if _, err := fmt.Fprintln(s.out, args...); err != nil {
		// Best-effort console output.
		_ = err
	}
}
