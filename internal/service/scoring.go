package service

import (
	"math"
	"sort"

	"feedback/internal/models"
)

// ScoreWithWeight is one input item for the weighted average
type ScoreWithWeight struct {
	Value  float64
	Weight *float64
}

// WeightedScore computes the weighted average of the given items, rounded to
// two decimals. Weighting is all-or-nothing: if any item's weight is missing
// the whole batch falls back to the plain arithmetic mean. An empty input
// yields 0.
func WeightedScore(items []ScoreWithWeight) float64 {
	weightsSum := 0.0
	weighted := true
	for _, item := range items {
		if item.Weight == nil {
			weighted = false
			break
		}
		weightsSum += *item.Weight
	}

	var value float64
	if weighted && weightsSum > 0 {
		// dividing by weightsSum rescales the weights to sum to 1.0
		for _, item := range items {
			value += item.Value * *item.Weight / weightsSum
		}
	} else if len(items) > 0 {
		for _, item := range items {
			value += item.Value
		}
		value /= float64(len(items))
	}

	return round2(value)
}

// round2 rounds half-up to two decimal places
func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

// deriveSheet computes a sheet's read-time fields from its answers and verdict
func deriveSheet(sheet models.Sheet, answers []models.Answer, sheetAnswer *models.SheetAnswer) models.SheetWithAnswers {
	filled := true
	for _, answer := range answers {
		if answer.Score == nil {
			filled = false
			break
		}
		if answer.Comment == nil && *answer.Score != models.ScoreNone {
			filled = false
			break
		}
	}
	if sheetAnswer == nil || sheetAnswer.Comment == nil || sheetAnswer.TotalScore == nil {
		filled = false
	}

	// mean over positive ordinals; NONE and unanswered entries don't count
	sum, count := 0.0, 0
	for _, answer := range answers {
		if answer.Score != nil && answer.Score.Ordinal() > 0 {
			sum += float64(answer.Score.Ordinal())
			count++
		}
	}
	if sheetAnswer != nil && sheetAnswer.TotalScore != nil && sheetAnswer.TotalScore.Ordinal() > 0 {
		sum += float64(sheetAnswer.TotalScore.Ordinal())
		count++
	}

	avgScoreValue := 0.0
	if count > 0 {
		avgScoreValue = sum / float64(count)
	}

	return models.SheetWithAnswers{
		Sheet:         sheet,
		Answers:       answers,
		SheetAnswer:   sheetAnswer,
		IsFilled:      filled,
		AvgScoreValue: avgScoreValue,
		AvgScore:      models.ScoreForValue(avgScoreValue),
	}
}

// criteriaResults groups all answers of a review's sheets by criteria and
// aggregates each group into a weighted result
func criteriaResults(sheets []models.SheetWithAnswers, criteriaNames map[uint]string) []models.CriteriaResult {
	type group struct {
		items    []ScoreWithWeight
		comments []models.Comment
		minOrd   int
		maxOrd   int
		hasOrd   bool
	}

	groups := make(map[uint]*group)
	var order []uint

	for _, sheet := range sheets {
		for _, answer := range sheet.Answers {
			if answer.Score == nil {
				continue
			}

			g := groups[answer.CriteriaID]
			if g == nil {
				g = &group{}
				groups[answer.CriteriaID] = g
				order = append(order, answer.CriteriaID)
			}

			if answer.Comment != nil {
				g.comments = append(g.comments, models.Comment{Text: *answer.Comment})
			}

			if *answer.Score == models.ScoreNone {
				continue
			}

			ordinal := answer.Score.Ordinal()
			g.items = append(g.items, ScoreWithWeight{Value: float64(ordinal), Weight: sheet.Weight})
			if !g.hasOrd || ordinal < g.minOrd {
				g.minOrd = ordinal
			}
			if !g.hasOrd || ordinal > g.maxOrd {
				g.maxOrd = ordinal
			}
			g.hasOrd = true
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	results := make([]models.CriteriaResult, 0, len(order))
	for _, criteriaID := range order {
		g := groups[criteriaID]
		scoreValue := WeightedScore(g.items)
		minValue, maxValue := float64(g.minOrd), float64(g.maxOrd)

		comments := g.comments
		if comments == nil {
			comments = []models.Comment{}
		}

		results = append(results, models.CriteriaResult{
			CriteriaID:    criteriaID,
			CriteriaName:  criteriaNames[criteriaID],
			ScoreValue:    scoreValue,
			MinScoreValue: minValue,
			MaxScoreValue: maxValue,
			Score:         models.ScoreForValue(scoreValue),
			MinScore:      models.ScoreForValue(minValue),
			MaxScore:      models.ScoreForValue(maxValue),
			Comments:      comments,
		})
	}

	return results
}

// totalResult aggregates sheet averages into the review-level score. Only
// sheets with a positive average contribute to the score; comments come from
// every sheet verdict regardless of score.
func totalResult(sheets []models.SheetWithAnswers) models.TotalResult {
	var items []ScoreWithWeight
	comments := []models.Comment{}

	for _, sheet := range sheets {
		if sheet.SheetAnswer != nil && sheet.SheetAnswer.Comment != nil {
			comments = append(comments, models.Comment{Text: *sheet.SheetAnswer.Comment})
		}
		if sheet.AvgScoreValue > 0 {
			items = append(items, ScoreWithWeight{Value: sheet.AvgScoreValue, Weight: sheet.Weight})
		}
	}

	scoreValue := WeightedScore(items)
	return models.TotalResult{
		ScoreValue: scoreValue,
		Score:      models.ScoreForValue(scoreValue),
		Comments:   comments,
	}
}

// sheetCounters summarizes sheet progress for a review
func sheetCounters(sheets []models.SheetWithAnswers) models.SheetCounters {
	counters := models.SheetCounters{Total: len(sheets)}
	for _, sheet := range sheets {
		if sheet.Completed {
			counters.Completed++
		} else if sheet.IsFilled {
			counters.Filled++
		}
	}
	return counters
}
