// Package report renders student report cards and roster summaries.
package report

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/model"
)

// Glyphs marking a subject average as passing or failing.
const (
	PassGlyph = "✓"
	FailGlyph = "✗"
)

// Render formats the report card of a student. Output depends only on its inputs.
func Render(rec model.StudentRecord, res model.EvaluationResult) string {
	var b strings.Builder

	b.WriteString("BOLETIM ESCOLAR\n")
	b.WriteString("================\n\n")
	fmt.Fprintf(&b, "Aluno: %s\n", rec.Name)
	fmt.Fprintf(&b, "Série: %s\n", rec.GradeLevel)
	fmt.Fprintf(&b, "Faltas: %d\n", rec.Absences)
	fmt.Fprintf(&b, "Frequência: %s%%\n\n", grading.FormatOneDecimal(grading.AttendancePercent(rec.Absences)))

	b.WriteString("NOTAS POR MATÉRIA:\n")
	b.WriteString("==================\n")
	for _, s := range model.Subjects {
		scores := rec.SubjectScores(s)
		avg := grading.Average(scores)
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(s.Key()))
		fmt.Fprintf(&b, "  Notas: %s\n", joinScores(scores))
		fmt.Fprintf(&b, "  Média: %s %s\n\n", grading.FormatOneDecimal(avg), Glyph(avg))
	}

	b.WriteString("RESULTADO FINAL:\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Status: %s\n", Status(res))
	fmt.Fprintf(&b, "Motivo: %s\n", res.Reason)

	return b.String()
}

// Glyph returns the pass or fail marker for a subject average.
func Glyph(avg float64) string {
	if grading.PassesAverage(avg) {
		return PassGlyph
	}
	return FailGlyph
}

// Status returns the overall status label.
func Status(res model.EvaluationResult) string {
	if res.Passed {
		return "APROVADO"
	}
	return "REPROVADO"
}

func joinScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = grading.FormatScore(s)
	}
	return strings.Join(parts, ", ")
}
