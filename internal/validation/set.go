package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/iudanet/liftlog/internal/models"
)

const (
	// MaxWeight максимальный рабочий вес, кг
	MaxWeight = 1000.0
	// MaxReps максимальное количество повторений в подходе
	MaxReps = 1000
	// MaxNoteLen максимальная длина заметки в символах
	MaxNoteLen = 500
)

// FieldErrors содержит сообщения об ошибках по именам полей
type FieldErrors map[string]string

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+fe[name])
	}
	return "invalid set: " + strings.Join(parts, "; ")
}

// ValidateSetInput проверяет payload создания подхода.
// Вес и повторения могут отсутствовать: подход заполняется по ходу тренировки.
func ValidateSetInput(in models.SetInput) error {
	fe := FieldErrors{}
	if in.ExerciseID <= 0 {
		fe["exercise_id"] = "is required"
	}
	checkWeight(fe, in.Weight)
	checkReps(fe, in.Reps)
	checkNote(fe, in.Note)
	return fe.orNil()
}

// ValidateSetUpdate проверяет частичное обновление подхода
func ValidateSetUpdate(u models.SetUpdate) error {
	fe := FieldErrors{}
	if u.IsEmpty() {
		fe["body"] = "no fields to update"
		return fe
	}
	checkWeight(fe, u.Weight)
	checkReps(fe, u.Reps)
	if u.Note != nil {
		checkNote(fe, *u.Note)
	}
	return fe.orNil()
}

func checkWeight(fe FieldErrors, w *float64) {
	if w == nil {
		return
	}
	switch {
	case math.IsNaN(*w) || math.IsInf(*w, 0):
		fe["weight"] = "must be a number"
	case *w < 0:
		fe["weight"] = "must not be negative"
	case *w > MaxWeight:
		fe["weight"] = fmt.Sprintf("must not exceed %g", MaxWeight)
	}
}

func checkReps(fe FieldErrors, r *int) {
	if r == nil {
		return
	}
	switch {
	case *r < 1:
		fe["reps"] = "must be at least 1"
	case *r > MaxReps:
		fe["reps"] = fmt.Sprintf("must not exceed %d", MaxReps)
	}
}

func checkNote(fe FieldErrors, note string) {
	if utf8.RuneCountInString(note) > MaxNoteLen {
		fe["note"] = fmt.Sprintf("must not exceed %d characters", MaxNoteLen)
	}
}

// NormalizeNote приводит заметку к NFC и убирает пробелы по краям
func NormalizeNote(note string) string {
	return strings.TrimSpace(norm.NFC.String(note))
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
