package grading

import (
	"fmt"

	"github.com/verte-zerg/gradebook/internal/model"
)

// ApprovedReason is reported when every check passes.
const ApprovedReason = "Approved in all subjects and adequate attendance."

// AttendancePercent converts an absence count into attendance over the fixed term.
func AttendancePercent(absences int) float64 {
	return float64(model.TotalSessions-absences) * 100 / float64(model.TotalSessions)
}

// SubjectAverages returns the average of every subject in declared order.
func SubjectAverages(rec model.StudentRecord) [model.SubjectCount]float64 {
	var avgs [model.SubjectCount]float64
	for _, s := range model.Subjects {
		avgs[s] = Average(rec.SubjectScores(s))
	}
	return avgs
}

// PassesAverage reports whether a subject average meets the minimum.
func PassesAverage(avg float64) bool {
	return avg >= model.MinAverage
}

// Evaluate applies the attendance check and then the subject checks in
// declared order. The first failing check decides the reason.
func Evaluate(rec model.StudentRecord) model.EvaluationResult {
	attendance := AttendancePercent(rec.Absences)
	if attendance < model.MinAttendance {
		return model.EvaluationResult{
			Passed: false,
			Reason: fmt.Sprintf("Frequência insuficiente: %s%%", FormatOneDecimal(attendance)),
		}
	}

	for _, s := range model.Subjects {
		avg := Average(rec.SubjectScores(s))
		if !PassesAverage(avg) {
			return model.EvaluationResult{
				Passed: false,
				Reason: fmt.Sprintf("Média insuficiente em %s: %s", s.Key(), FormatOneDecimal(avg)),
			}
		}
	}

	return model.EvaluationResult{Passed: true, Reason: ApprovedReason}
}
