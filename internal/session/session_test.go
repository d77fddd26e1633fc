package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/ledger"
	"github.com/verte-zerg/gradebook/internal/model"
	"github.com/verte-zerg/gradebook/internal/report"
)

// studentInput builds the answers for one registration, every score set to score.
func studentInput(name, grade, absences, score string) []string {
	lines := []string{menuRegister, name, grade, absences}
	for range model.Subjects {
		for i := 0; i < model.ScoresPerSubject; i++ {
			lines = append(lines, score)
		}
	}
	return lines
}

func script(parts ...[]string) string {
	var all []string
	for _, p := range parts {
		all = append(all, p...)
	}
	return strings.Join(all, "\n") + "\n"
}

func newTestSession(t *testing.T, input string, archive Archive) (*Session, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	var out bytes.Buffer
	opts := model.Options{OutputDir: dir, LogName: "alunos.csv"}
	return New(opts, strings.NewReader(input), &out, archive, nil), &out, dir
}

func TestRunRegistersPassingStudent(t *testing.T) {
	s, out, dir := newTestSession(t, script(studentInput("Ana Maria  Souza", "9A", "0", "10"), []string{menuExit}), nil)

	require.NoError(t, s.Run(context.Background()))

	students := s.Students()
	require.Len(t, students, 1)
	reg := students[0]
	assert.NotEmpty(t, reg.ID)
	assert.Equal(t, "Ana Maria  Souza", reg.Record.Name)
	assert.True(t, reg.Result.Passed)
	assert.Equal(t, grading.ApprovedReason, reg.Result.Reason)

	data, err := os.ReadFile(filepath.Join(dir, "boletim_Ana_Maria_Souza.txt"))
	require.NoError(t, err)
	assert.Equal(t, report.Render(reg.Record, reg.Result), string(data))
	assert.Equal(t, 5, strings.Count(string(data), report.PassGlyph))

	console := out.String()
	assert.Contains(t, console, "Bem-vindo ao Sistema Escolar!")
	assert.Contains(t, console, "✅ Boletim gerado com sucesso: "+filepath.Join(dir, "boletim_Ana_Maria_Souza.txt"))
	assert.Contains(t, console, "Coletando notas de Matemática:")
	assert.Contains(t, console, "Nota 8 (0-10): ")
	assert.Contains(t, console, "Saindo do sistema...")
	assert.Contains(t, console, "Alunos cadastrados: 1")
}

func TestRunAppendsOneRowPerStudent(t *testing.T) {
	input := script(
		studentInput("Ana", "9A", "0", "10"),
		[]string{"3"},
		studentInput("Bruno Lima", "9B", "26", "8"),
		[]string{menuExit},
	)
	s, out, dir := newTestSession(t, input, nil)

	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, out.String(), "Opção inválida!")

	data, err := os.ReadFile(filepath.Join(dir, "alunos.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, ledger.Header(), lines[0])
	assert.Equal(t, `"Ana","9A",0,Sim,"Approved in all subjects and adequate attendance.",10.0,10.0,10.0,10.0,10.0`, lines[1])
	assert.Equal(t, `"Bruno Lima","9B",26,Não,"Frequência insuficiente: 74.0%",8.0,8.0,8.0,8.0,8.0`, lines[2])

	students := s.Students()
	require.Len(t, students, 2)
	assert.Equal(t, "Ana", students[0].Record.Name)
	assert.Equal(t, "Bruno Lima", students[1].Record.Name)
}

func TestRunRepromptsInvalidAnswers(t *testing.T) {
	lines := []string{menuRegister, "Caio", "8C", "abc", "101", "4"}
	for range model.Subjects {
		lines = append(lines, "11", "x")
		for i := 0; i < model.ScoresPerSubject; i++ {
			lines = append(lines, "6.5")
		}
	}
	lines = append(lines, menuExit)
	s, out, _ := newTestSession(t, script(lines), nil)

	require.NoError(t, s.Run(context.Background()))

	console := out.String()
	assert.Equal(t, 2, strings.Count(console, "Por favor, digite um número válido de faltas (0-100)."))
	assert.Equal(t, 10, strings.Count(console, "Por favor, digite uma nota válida entre 0 e 10."))

	students := s.Students()
	require.Len(t, students, 1)
	assert.Equal(t, 4, students[0].Record.Absences)
	assert.False(t, students[0].Result.Passed)
	assert.Equal(t, "Média insuficiente em matematica: 6.5", students[0].Result.Reason)
}

func TestRunResetsLogAtStartup(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "alunos.csv")
	require.NoError(t, os.WriteFile(logPath, []byte("stale\n"), 0o644))

	s := New(model.Options{OutputDir: dir, LogName: "alunos.csv"}, strings.NewReader(menuExit+"\n"), io.Discard, nil, nil)
	require.NoError(t, s.Run(context.Background()))
	assert.NoFileExists(t, logPath)
}

func TestRunEndOfInputDiscardsPartialRecord(t *testing.T) {
	s, out, dir := newTestSession(t, script([]string{menuRegister, "Dora", "7A", "3", "9", "9"}), nil)

	require.NoError(t, s.Run(context.Background()))
	assert.Empty(t, s.Students())
	assert.NoFileExists(t, filepath.Join(dir, "boletim_Dora.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "alunos.csv"))
	assert.NotContains(t, out.String(), "Alunos cadastrados")
}

func TestRunReturnsOnCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() {
		_ = pw.Close()
	}()
	s := New(model.Options{OutputDir: t.TempDir(), LogName: "alunos.csv"}, pr, io.Discard, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not stop after cancellation")
	}
}

type fakeArchive struct {
	calls int
	err   error
}

func (f *fakeArchive) InsertRegistration(_ context.Context, rec model.StudentRecord, res model.EvaluationResult) (model.Registration, error) {
	f.calls++
	if f.err != nil {
		return model.Registration{}, f.err
	}
	return model.Registration{ID: "archived", Record: rec, Result: res, Averages: grading.SubjectAverages(rec)}, nil
}

func TestRunUsesArchive(t *testing.T) {
	archive := &fakeArchive{}
	s, _, _ := newTestSession(t, script(studentInput("Eva", "6A", "1", "9"), []string{menuExit}), archive)

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, 1, archive.calls)
	require.Len(t, s.Students(), 1)
	assert.Equal(t, "archived", s.Students()[0].ID)
}

func TestRunFailsWhenArchiveFails(t *testing.T) {
	archive := &fakeArchive{err: errors.New("disk full")}
	s, _, dir := newTestSession(t, script(studentInput("Eva", "6A", "1", "9"), []string{menuExit}), archive)

	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, s.Students())
	assert.NoFileExists(t, filepath.Join(dir, "boletim_Eva.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "alunos.csv"))
}

func TestRegisterTrimsNameBeforeNamingReport(t *testing.T) {
	s, _, dir := newTestSession(t, script(studentInput("  João  ", " 9A ", "0", "10"), []string{menuExit}), nil)

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, s.Students(), 1)
	assert.Equal(t, "João", s.Students()[0].Record.Name)
	assert.Equal(t, "9A", s.Students()[0].Record.GradeLevel)
	assert.FileExists(t, filepath.Join(dir, "boletim_João.txt"))
}

func TestReportFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Ana", want: "boletim_Ana.txt"},
		{in: "Ana Souza", want: "boletim_Ana_Souza.txt"},
		{in: "Ana \t Maria", want: "boletim_Ana_Maria.txt"},
		{in: "../etc/passwd", want: "boletim_.._etc_passwd.txt"},
		{in: "Luíza Gomes", want: "boletim_Luíza_Gomes.txt"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReportFileName(tt.in), "input %q", tt.in)
	}
}
