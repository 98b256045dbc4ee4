package models

// Summary агрегирует подходы одной тренировки или одного упражнения.
type Summary struct {
	TopWeight float64 `json:"top_weight"` // TopWeight максимальный вес среди подходов
	Volume    float64 `json:"volume"`     // Volume сумма weight*reps по заполненным подходам
	Sets      int     `json:"sets"`       // Sets количество подходов
	TotalReps int     `json:"total_reps"` // TotalReps сумма повторений
}

// Summarize computes the summary over sets. Sets without weight or reps count
// toward Sets but contribute nothing to Volume.
func Summarize(sets []Set) Summary {
	var s Summary
	for _, set := range sets {
		s.Sets++
		if set.Reps != nil {
			s.TotalReps += *set.Reps
		}
		if set.Weight != nil && *set.Weight > s.TopWeight {
			s.TopWeight = *set.Weight
		}
		if set.Weight != nil && set.Reps != nil {
			s.Volume += *set.Weight * float64(*set.Reps)
		}
	}
	return s
}
