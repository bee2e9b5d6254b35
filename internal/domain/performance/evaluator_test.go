package performance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func testPeriod(t *testing.T) valueobject.Period {
	p, err := valueobject.NewPeriod(2026, time.January)
	require.NoError(t, err)
	return p
}

func createTestParameter(t *testing.T, tenantID uuid.UUID, code string, weight float64) *ScoreParameter {
	p, err := NewScoreParameter(tenantID, code, "Param "+code, weight)
	require.NoError(t, err)
	return p
}

// ============================================
// ParameterScore Tests
// ============================================

func TestNewParameterScore(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	period := testPeriod(t)

	t.Run("computes weighted score from normalized value and weight", func(t *testing.T) {
		param := createTestParameter(t, tenantID, "task_completion", 30)
		score, err := NewParameterScore(tenantID, userID, period, param, 80)
		require.NoError(t, err)

		assert.Equal(t, 80.0, score.RawValue)
		assert.Equal(t, 80.0, score.NormalizedScore)
		assert.InDelta(t, 24.0, score.WeightedScore, 1e-9)
		assert.Equal(t, param.ID, score.ParameterID)
		assert.Equal(t, "task_completion", score.ParameterCode)
		assert.Equal(t, 30.0, score.Weight)
	})

	t.Run("clamps raw value above the scale", func(t *testing.T) {
		param := createTestParameter(t, tenantID, "task_accuracy", 50)
		score, err := NewParameterScore(tenantID, userID, period, param, 130)
		require.NoError(t, err)

		assert.Equal(t, 130.0, score.RawValue)
		assert.Equal(t, 100.0, score.NormalizedScore)
		assert.InDelta(t, 50.0, score.WeightedScore, 1e-9)
	})

	t.Run("clamps negative raw value to zero", func(t *testing.T) {
		param := createTestParameter(t, tenantID, "attendance_punctuality", 40)
		score, err := NewParameterScore(tenantID, userID, period, param, -3)
		require.NoError(t, err)

		assert.Equal(t, 0.0, score.NormalizedScore)
		assert.Equal(t, 0.0, score.WeightedScore)
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		param := createTestParameter(t, tenantID, "task_completion", 30)

		_, err := NewParameterScore(uuid.Nil, userID, period, param, 50)
		assert.Error(t, err)

		_, err = NewParameterScore(tenantID, uuid.Nil, period, param, 50)
		assert.Error(t, err)

		_, err = NewParameterScore(tenantID, userID, valueobject.Period{}, param, 50)
		assert.Error(t, err)

		_, err = NewParameterScore(tenantID, userID, period, nil, 50)
		assert.Error(t, err)
	})
}

// ============================================
// Aggregation Tests
// ============================================

func TestTotalScore(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	period, _ := valueobject.ParsePeriod("2025-11")

	build := func(t *testing.T, entries []struct {
		weight float64
		value  float64
	}) []ParameterScore {
		scores := make([]ParameterScore, 0, len(entries))
		for i, e := range entries {
			param := createTestParameter(t, tenantID, "metric_"+string(rune('a'+i)), e.weight)
			s, err := NewParameterScore(tenantID, userID, period, param, e.value)
			require.NoError(t, err)
			scores = append(scores, *s)
		}
		return scores
	}

	t.Run("weighted average over normalized scale", func(t *testing.T) {
		scores := build(t, []struct {
			weight float64
			value  float64
		}{
			{30, 80},
			{30, 90},
			{40, 100},
		})
		// (24 + 27 + 40) / 100 * 100 = 91
		assert.Equal(t, 91.0, TotalScore(scores))
	})

	t.Run("weights need not sum to one hundred", func(t *testing.T) {
		scores := build(t, []struct {
			weight float64
			value  float64
		}{
			{20, 50},
			{60, 75},
		})
		// (10 + 45) / 80 * 100 = 68.75
		assert.Equal(t, 68.75, TotalScore(scores))
	})

	t.Run("rounds a repeating quotient to two decimals", func(t *testing.T) {
		scores := build(t, []struct {
			weight float64
			value  float64
		}{
			{1, 50},
			{1, 60},
			{1, 71},
		})
		// (0.5 + 0.6 + 0.71) / 3 * 100 = 60.333... -> 60.33
		assert.Equal(t, 60.33, TotalScore(scores))
	})

	t.Run("empty score set yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, TotalScore(nil))
	})

	t.Run("result stays within the scale", func(t *testing.T) {
		scores := build(t, []struct {
			weight float64
			value  float64
		}{
			{10, 100},
			{90, 100},
		})
		total := TotalScore(scores)
		assert.GreaterOrEqual(t, total, 0.0)
		assert.LessOrEqual(t, total, 100.0)
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 85.56, Round2(85.555))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, 91.0, Round2(91.0000001))
}

// ============================================
// Evaluator Tests
// ============================================

func TestEvaluator_Evaluate(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	period := testPeriod(t)
	evaluator := NewEvaluator(DefaultTierPolicy())

	t.Run("scores active parameters with raw values", func(t *testing.T) {
		params := []ScoreParameter{
			*createTestParameter(t, tenantID, "attendance_punctuality", 40),
			*createTestParameter(t, tenantID, "task_completion", 30),
			*createTestParameter(t, tenantID, "task_accuracy", 30),
		}
		raw := map[string]float64{
			"attendance_punctuality": 95,
			"task_completion":        80,
			"task_accuracy":          90,
		}

		eval, err := evaluator.Evaluate(tenantID, userID, period, params, raw)
		require.NoError(t, err)
		require.Len(t, eval.Scores, 3)

		// (38 + 24 + 27) / 100 * 100 = 89
		assert.Equal(t, 89.0, eval.TotalScore)
		assert.Equal(t, "Gold", eval.Assignment.Tier)
		assert.Equal(t, 10.0, eval.Assignment.BonusPercentage)
	})

	t.Run("skips parameters without raw values", func(t *testing.T) {
		params := []ScoreParameter{
			*createTestParameter(t, tenantID, "attendance_punctuality", 50),
			*createTestParameter(t, tenantID, "task_completion", 50),
		}
		raw := map[string]float64{"attendance_punctuality": 100}

		eval, err := evaluator.Evaluate(tenantID, userID, period, params, raw)
		require.NoError(t, err)
		require.Len(t, eval.Scores, 1)

		// Only the scored parameter participates in the sums.
		assert.Equal(t, 100.0, eval.TotalScore)
	})

	t.Run("skips inactive parameters", func(t *testing.T) {
		active := createTestParameter(t, tenantID, "task_completion", 50)
		inactive := createTestParameter(t, tenantID, "task_accuracy", 50)
		inactive.Deactivate()

		raw := map[string]float64{"task_completion": 60, "task_accuracy": 100}
		eval, err := evaluator.Evaluate(tenantID, userID, period, []ScoreParameter{*active, *inactive}, raw)
		require.NoError(t, err)
		require.Len(t, eval.Scores, 1)
		assert.Equal(t, "task_completion", eval.Scores[0].ParameterCode)
		assert.Equal(t, 60.0, eval.TotalScore)
	})

	t.Run("no scored parameters yields zero total and lowest tier", func(t *testing.T) {
		eval, err := evaluator.Evaluate(tenantID, userID, period, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, eval.Scores)
		assert.Equal(t, 0.0, eval.TotalScore)
		assert.Equal(t, "None", eval.Assignment.Tier)
		assert.Equal(t, 0.0, eval.Assignment.BonusPercentage)
	})
}

func TestEvaluator_Aggregate(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	period := testPeriod(t)
	evaluator := NewEvaluator(DefaultTierPolicy())

	params := []ScoreParameter{
		*createTestParameter(t, tenantID, "attendance_punctuality", 40),
		*createTestParameter(t, tenantID, "task_completion", 60),
	}
	raw := map[string]float64{"attendance_punctuality": 90, "task_completion": 95}

	fresh, err := evaluator.Evaluate(tenantID, userID, period, params, raw)
	require.NoError(t, err)

	// Aggregating the stored rows reproduces the fresh outcome exactly.
	cached := evaluator.Aggregate(fresh.Scores)
	assert.Equal(t, fresh.TotalScore, cached.TotalScore)
	assert.Equal(t, fresh.Assignment, cached.Assignment)
}

func TestNewEvaluator_DefaultsPolicy(t *testing.T) {
	evaluator := NewEvaluator(nil)
	require.NotNil(t, evaluator.Policy())
	assert.Equal(t, "Platinum", evaluator.Policy().TierFor(100).Tier)
}

// ============================================
// Registry Validation Tests
// ============================================

func TestValidateRegistry(t *testing.T) {
	tenantID := uuid.New()

	t.Run("accepts unique codes", func(t *testing.T) {
		params := []ScoreParameter{
			*createTestParameter(t, tenantID, "task_completion", 50),
			*createTestParameter(t, tenantID, "task_accuracy", 50),
		}
		assert.NoError(t, ValidateRegistry(params))
	})

	t.Run("rejects duplicate codes", func(t *testing.T) {
		params := []ScoreParameter{
			*createTestParameter(t, tenantID, "task_completion", 50),
			*createTestParameter(t, tenantID, "task_completion", 30),
		}
		assert.Error(t, ValidateRegistry(params))
	})
}
