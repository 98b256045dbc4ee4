package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iudanet/liftlog/internal/models"
)

const (
	headerFormat = "%-3s %-8s %8s %6s %4s  %s"
	rowFormat    = "%-3d %-8s %8d %6s %4s  %s"
)

// renderSets пишет таблицу подходов и строку сводки одним вызовом Write
func renderSets(w io.Writer, sets []models.Set, summary models.Summary) {
	var b strings.Builder

	writeLine(&b, fmt.Sprintf(headerFormat, "#", "ID", "EXERCISE", "WEIGHT", "REPS", "NOTE"))
	for i, s := range sets {
		writeLine(&b, fmt.Sprintf(rowFormat,
			i+1,
			s.ID.String(),
			s.ExerciseID,
			formatWeight(s.Weight),
			formatReps(s.Reps),
			s.Note,
		))
	}
	if len(sets) == 0 {
		writeLine(&b, "(no sets yet)")
	}
	writeLine(&b, summaryLine(summary))

	_, _ = io.WriteString(w, b.String())
}

func writeLine(b *strings.Builder, line string) {
	b.WriteString(strings.TrimRight(line, " "))
	b.WriteByte('\n')
}

func summaryLine(s models.Summary) string {
	return fmt.Sprintf("%d sets, %d reps, volume %s kg, top weight %s kg",
		s.Sets, s.TotalReps, formatFloat(s.Volume), formatFloat(s.TopWeight))
}

func formatWeight(w *float64) string {
	if w == nil {
		return "-"
	}
	return formatFloat(*w)
}

func formatReps(r *int) string {
	if r == nil {
		return "-"
	}
	return strconv.Itoa(*r)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
