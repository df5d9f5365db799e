package service

import (
	"math"
	"testing"

	"feedback/internal/models"
)

func scorePtr(s models.Score) *models.Score { return &s }
func strPtr(s string) *string               { return &s }
func weightPtr(w float64) *float64          { return &w }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWeightedScoreRenormalizesWeights(t *testing.T) {
	items := []ScoreWithWeight{
		{Value: 1.0, Weight: weightPtr(0.3)},
		{Value: 5.0, Weight: weightPtr(0.2)},
	}

	got := WeightedScore(items)
	if !almostEqual(got, 2.6) {
		t.Errorf("Expected 2.6, got %v", got)
	}
}

func TestWeightedScoreRoundsToTwoDecimals(t *testing.T) {
	items := []ScoreWithWeight{
		{Value: 3.0, Weight: weightPtr(0.5)},
		{Value: 2.0, Weight: weightPtr(0.3)},
	}

	// (0.5*3 + 0.3*2) / 0.8 = 2.625, rounded half-up
	got := WeightedScore(items)
	if !almostEqual(got, 2.63) {
		t.Errorf("Expected 2.63, got %v", got)
	}
}

func TestWeightedScoreMissingWeightFallsBackToMean(t *testing.T) {
	items := []ScoreWithWeight{
		{Value: 1.0, Weight: weightPtr(0.9)},
		{Value: 5.0, Weight: nil},
	}

	got := WeightedScore(items)
	if !almostEqual(got, 3.0) {
		t.Errorf("Expected plain mean 3.0, got %v", got)
	}
}

func TestWeightedScoreEmpty(t *testing.T) {
	if got := WeightedScore(nil); got != 0 {
		t.Errorf("Expected 0 for empty input, got %v", got)
	}
}

func TestScoreForValue(t *testing.T) {
	tests := []struct {
		value float64
		want  models.Score
	}{
		{0, models.ScoreNone},
		{0.4, models.ScoreNone},
		{1.2, models.ScoreWayBelow},
		{2.6, models.ScoreMeet},
		{3.4, models.ScoreMeet},
		{4.8, models.ScoreWayAbove},
		{7.3, models.ScoreWayAbove},
		{-1.5, models.ScoreNone},
	}

	for _, tt := range tests {
		if got := models.ScoreForValue(tt.value); got != tt.want {
			t.Errorf("ScoreForValue(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDeriveSheetFilled(t *testing.T) {
	sheet := models.Sheet{ID: 1}
	answers := []models.Answer{
		{SheetID: 1, CriteriaID: 1, Score: scorePtr(models.ScoreMeet), Comment: strPtr("solid")},
		{SheetID: 1, CriteriaID: 2, Score: scorePtr(models.ScoreNone)},
	}
	sheetAnswer := &models.SheetAnswer{
		SheetID:    1,
		TotalScore: scorePtr(models.ScoreAbove),
		Comment:    strPtr("good overall"),
	}

	result := deriveSheet(sheet, answers, sheetAnswer)

	if !result.IsFilled {
		t.Error("Expected sheet to be filled: NONE scores need no comment")
	}
	// mean of MEET (3) and total ABOVE (4); NONE does not count
	if !almostEqual(result.AvgScoreValue, 3.5) {
		t.Errorf("Expected avg 3.5, got %v", result.AvgScoreValue)
	}
	if result.AvgScore != models.ScoreAbove {
		t.Errorf("Expected avg score %v, got %v", models.ScoreAbove, result.AvgScore)
	}
}

func TestDeriveSheetNotFilled(t *testing.T) {
	sheet := models.Sheet{ID: 1}
	sheetAnswer := &models.SheetAnswer{
		SheetID:    1,
		TotalScore: scorePtr(models.ScoreMeet),
		Comment:    strPtr("ok"),
	}

	tests := []struct {
		name    string
		answers []models.Answer
		verdict *models.SheetAnswer
	}{
		{
			name:    "answer without score",
			answers: []models.Answer{{SheetID: 1, CriteriaID: 1}},
			verdict: sheetAnswer,
		},
		{
			name: "scored answer without comment",
			answers: []models.Answer{
				{SheetID: 1, CriteriaID: 1, Score: scorePtr(models.ScoreMeet)},
			},
			verdict: sheetAnswer,
		},
		{
			name:    "verdict without total score",
			answers: nil,
			verdict: &models.SheetAnswer{SheetID: 1, Comment: strPtr("ok")},
		},
		{
			name:    "verdict without comment",
			answers: nil,
			verdict: &models.SheetAnswer{SheetID: 1, TotalScore: scorePtr(models.ScoreMeet)},
		},
		{
			name:    "missing verdict",
			answers: nil,
			verdict: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := deriveSheet(sheet, tt.answers, tt.verdict); result.IsFilled {
				t.Error("Expected sheet not to be filled")
			}
		})
	}
}

func TestDeriveSheetNoAnswersIsFilledWithVerdict(t *testing.T) {
	sheet := models.Sheet{ID: 1}
	sheetAnswer := &models.SheetAnswer{
		SheetID:    1,
		TotalScore: scorePtr(models.ScoreNone),
		Comment:    strPtr("no criteria yet"),
	}

	result := deriveSheet(sheet, nil, sheetAnswer)
	if !result.IsFilled {
		t.Error("Expected sheet with no answers and a complete verdict to count as filled")
	}
	if result.AvgScoreValue != 0 {
		t.Errorf("Expected avg 0, got %v", result.AvgScoreValue)
	}
	if result.AvgScore != models.ScoreNone {
		t.Errorf("Expected avg score NONE, got %v", result.AvgScore)
	}
}

func TestCriteriaResultsAggregation(t *testing.T) {
	names := map[uint]string{1: "Code Quality", 2: "Communication"}

	sheets := []models.SheetWithAnswers{
		{
			Sheet: models.Sheet{ID: 10, Weight: weightPtr(0.3)},
			Answers: []models.Answer{
				{SheetID: 10, CriteriaID: 1, Score: scorePtr(models.ScoreWayBelow), Comment: strPtr("needs work")},
				{SheetID: 10, CriteriaID: 2, Score: scorePtr(models.ScoreNone), Comment: strPtr("no opinion")},
			},
		},
		{
			Sheet: models.Sheet{ID: 11, Weight: weightPtr(0.2)},
			Answers: []models.Answer{
				{SheetID: 11, CriteriaID: 1, Score: scorePtr(models.ScoreWayAbove)},
				{SheetID: 11, CriteriaID: 2, Score: nil, Comment: strPtr("ignored, no score")},
			},
		},
	}

	results := criteriaResults(sheets, names)
	if len(results) != 2 {
		t.Fatalf("Expected 2 criteria results, got %d", len(results))
	}

	first := results[0]
	if first.CriteriaID != 1 || first.CriteriaName != "Code Quality" {
		t.Errorf("Unexpected first result: %+v", first)
	}
	if !almostEqual(first.ScoreValue, 2.6) {
		t.Errorf("Expected weighted score 2.6, got %v", first.ScoreValue)
	}
	if first.MinScoreValue != 1 || first.MaxScoreValue != 5 {
		t.Errorf("Expected min 1 max 5, got %v and %v", first.MinScoreValue, first.MaxScoreValue)
	}
	if len(first.Comments) != 1 || first.Comments[0].Text != "needs work" {
		t.Errorf("Unexpected comments: %+v", first.Comments)
	}

	second := results[1]
	if second.ScoreValue != 0 {
		t.Errorf("Expected score 0 for NONE-only criteria, got %v", second.ScoreValue)
	}
	if second.Score != models.ScoreNone {
		t.Errorf("Expected NONE, got %v", second.Score)
	}
	// a NONE score still surfaces its comment; an unscored answer does not
	if len(second.Comments) != 1 || second.Comments[0].Text != "no opinion" {
		t.Errorf("Unexpected comments: %+v", second.Comments)
	}
}

func TestCriteriaResultsEmpty(t *testing.T) {
	results := criteriaResults(nil, nil)
	if len(results) != 0 {
		t.Errorf("Expected no results, got %d", len(results))
	}
}

func TestTotalResult(t *testing.T) {
	sheets := []models.SheetWithAnswers{
		{
			Sheet:         models.Sheet{ID: 1, Weight: weightPtr(0.5)},
			SheetAnswer:   &models.SheetAnswer{SheetID: 1, Comment: strPtr("first")},
			AvgScoreValue: 2.6,
		},
		{
			Sheet:         models.Sheet{ID: 2, Weight: weightPtr(0.5)},
			SheetAnswer:   &models.SheetAnswer{SheetID: 2, Comment: strPtr("second")},
			AvgScoreValue: 3.4,
		},
		{
			// untouched sheet contributes nothing to the score
			Sheet:         models.Sheet{ID: 3, Weight: weightPtr(0.5)},
			AvgScoreValue: 0,
		},
	}

	result := totalResult(sheets)
	if !almostEqual(result.ScoreValue, 3.0) {
		t.Errorf("Expected 3.0, got %v", result.ScoreValue)
	}
	if result.Score != models.ScoreMeet {
		t.Errorf("Expected MEET_EXPECTATIONS, got %v", result.Score)
	}
	if len(result.Comments) != 2 {
		t.Errorf("Expected 2 comments, got %d", len(result.Comments))
	}
}

func TestTotalResultEmptyReview(t *testing.T) {
	result := totalResult(nil)
	if result.ScoreValue != 0 {
		t.Errorf("Expected 0.0, got %v", result.ScoreValue)
	}
	if result.Score != models.ScoreNone {
		t.Errorf("Expected NONE, got %v", result.Score)
	}
	if result.Comments == nil || len(result.Comments) != 0 {
		t.Errorf("Expected empty comment list, got %+v", result.Comments)
	}
}

func TestSheetCounters(t *testing.T) {
	sheets := []models.SheetWithAnswers{
		{Sheet: models.Sheet{ID: 1, Completed: true}, IsFilled: true},
		{Sheet: models.Sheet{ID: 2}, IsFilled: true},
		{Sheet: models.Sheet{ID: 3}},
	}

	counters := sheetCounters(sheets)
	if counters.Total != 3 {
		t.Errorf("Expected total 3, got %d", counters.Total)
	}
	if counters.Completed != 1 {
		t.Errorf("Expected completed 1, got %d", counters.Completed)
	}
	// completed sheets are not double counted as filled
	if counters.Filled != 1 {
		t.Errorf("Expected filled 1, got %d", counters.Filled)
	}
}
