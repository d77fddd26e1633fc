package report

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/gradebook/internal/grading"
	"github.com/verte-zerg/gradebook/internal/model"
)

// RenderRoster lays out one aligned line per registration under a header line.
func RenderRoster(regs []model.Registration) []string {
	headers := []string{"Aluno", "Série", "Faltas", "Status"}
	rightAlign := map[int]bool{2: true}
	for _, s := range model.Subjects {
		rightAlign[len(headers)] = true
		headers = append(headers, strings.ToUpper(s.Key()[:3]))
	}

	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		row := []string{
			reg.Record.Name,
			reg.Record.GradeLevel,
			strconv.Itoa(reg.Record.Absences),
			Status(reg.Result),
		}
		for _, avg := range reg.Averages {
			row = append(row, grading.FormatOneDecimal(avg))
		}
		rows = append(rows, row)
	}
	return formatTable(headers, rows, rightAlign)
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, formatRow(headers, widths, rightAlignCols))
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
