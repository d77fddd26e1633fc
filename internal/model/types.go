// Package model defines shared data structures.
package model

import "time"

// Grading policy constants. These are fixed; there is no per-school override.
const (
	// TotalSessions is the number of class sessions in a term. Attendance is
	// always computed against this value regardless of the real term length.
	TotalSessions = 100
	MinAttendance = 75.0
	MinAverage    = 7.0

	ScoresPerSubject = 8
	MinScore         = 0.0
	MaxScore         = 10.0
	MaxAbsences      = TotalSessions
)

// Subject identifies one of the fixed graded subjects.
type Subject int

// Subjects in their declared order. Evaluation and report sections follow it.
const (
	Mathematics Subject = iota
	Language
	Geography
	History
	Chemistry

	SubjectCount = 5
)

// Subjects lists every subject in declared order.
var Subjects = [SubjectCount]Subject{Mathematics, Language, Geography, History, Chemistry}

var subjectKeys = [SubjectCount]string{"matematica", "portugues", "geografia", "historia", "quimica"}

var subjectLabels = [SubjectCount]string{"Matemática", "Português", "Geografia", "História", "Química"}

var subjectColumns = [SubjectCount]string{"MediaMatematica", "MediaPortugues", "MediaGeografia", "MediaHistoria", "MediaQuimica"}

// Key returns the short identifier used in reasons and report headings.
func (s Subject) Key() string {
	if !s.valid() {
		return "unknown"
	}
	return subjectKeys[s]
}

// Label returns the human-readable subject name used in prompts.
func (s Subject) Label() string {
	if !s.valid() {
		return "Unknown"
	}
	return subjectLabels[s]
}

// Column returns the CSV column name holding the subject average.
func (s Subject) Column() string {
	if !s.valid() {
		return "MediaUnknown"
	}
	return subjectColumns[s]
}

func (s Subject) String() string {
	return s.Key()
}

func (s Subject) valid() bool {
	return s >= 0 && int(s) < SubjectCount
}

// Scores holds the ordered scores of one subject.
type Scores [ScoresPerSubject]float64

// StudentRecord captures one registered student.
type StudentRecord struct {
	Name       string
	GradeLevel string
	Absences   int
	Scores     [SubjectCount]Scores
}

// SubjectScores returns the scores of a subject as a slice.
func (r StudentRecord) SubjectScores(s Subject) []float64 {
	scores := r.Scores[s]
	return scores[:]
}

// EvaluationResult is the pass/fail outcome of a student record.
type EvaluationResult struct {
	Passed bool
	Reason string
}

// Options defines session output settings.
type Options struct {
	OutputDir string
	LogName   string
	DBPath    string
}

// Registration is an archived student record with its evaluation.
type Registration struct {
	ID           string
	RegisteredAt time.Time
	Record       StudentRecord
	Result       EvaluationResult
	Averages     [SubjectCount]float64
}
