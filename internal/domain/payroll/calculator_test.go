package payroll

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helpers
// ============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestComponents() SalaryComponents {
	return SalaryComponents{
		Basic:            dec("20000"),
		HRA:              dec("8000"),
		DA:               dec("0"),
		TA:               dec("0"),
		SpecialAllowance: dec("2000"),
		PF:               dec("2400"),
		ESI:              dec("0"),
		Tax:              dec("1500"),
		OtherDeductions:  dec("0"),
		NetSalary:        dec("26100"),
	}
}

func createTestStructure(t *testing.T) *SalaryStructure {
	t.Helper()
	structure, err := NewSalaryStructure(
		uuid.New(),
		uuid.New(),
		createTestComponents(),
		valueobject.INR,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return structure
}

// ============================================================================
// ComputeSystemFigures Tests
// ============================================================================

func TestComputeSystemFigures(t *testing.T) {
	t.Run("derives figures from structure and bonus percentage", func(t *testing.T) {
		structure := createTestStructure(t)

		comp, err := ComputeSystemFigures(structure, 10)
		require.NoError(t, err)

		// 26100 * 10% = 2610
		assert.True(t, comp.BonusAmount.Equal(dec("2610")), "bonus amount: %s", comp.BonusAmount)
		// 20000 + 8000 + 0 + 0 + 2000 + 2610 = 32610
		assert.True(t, comp.Gross.Equal(dec("32610")), "gross: %s", comp.Gross)
		// 2400 + 0 + 1500 + 0 = 3900
		assert.True(t, comp.Deductions.Equal(dec("3900")), "deductions: %s", comp.Deductions)
		// 32610 - 3900 = 28710
		assert.True(t, comp.Net.Equal(dec("28710")), "net: %s", comp.Net)
		assert.Equal(t, float64(10), comp.BonusPercentage)
		assert.Equal(t, valueobject.INR, comp.Currency)
	})

	t.Run("zero bonus percentage yields zero bonus amount", func(t *testing.T) {
		structure := createTestStructure(t)

		comp, err := ComputeSystemFigures(structure, 0)
		require.NoError(t, err)

		assert.True(t, comp.BonusAmount.IsZero())
		assert.True(t, comp.Gross.Equal(dec("30000")))
		assert.True(t, comp.Net.Equal(dec("26100")))
	})

	t.Run("fractional percentage rounds bonus to two decimals", func(t *testing.T) {
		structure := createTestStructure(t)

		// 26100 * 2.5% = 652.50
		comp, err := ComputeSystemFigures(structure, 2.5)
		require.NoError(t, err)
		assert.True(t, comp.BonusAmount.Equal(dec("652.5")), "bonus amount: %s", comp.BonusAmount)

		// 26100 * 3.33% = 869.13
		comp, err = ComputeSystemFigures(structure, 3.33)
		require.NoError(t, err)
		assert.True(t, comp.BonusAmount.Equal(dec("869.13")), "bonus amount: %s", comp.BonusAmount)
	})

	t.Run("breakdown carries every component and the bonus", func(t *testing.T) {
		structure := createTestStructure(t)

		comp, err := ComputeSystemFigures(structure, 10)
		require.NoError(t, err)

		require.Len(t, comp.Breakdown, 10)
		assert.True(t, comp.Breakdown[ComponentBasic].Equal(dec("20000")))
		assert.True(t, comp.Breakdown[ComponentHRA].Equal(dec("8000")))
		assert.True(t, comp.Breakdown[ComponentSpecialAllowance].Equal(dec("2000")))
		assert.True(t, comp.Breakdown[ComponentBonus].Equal(dec("2610")))
		assert.True(t, comp.Breakdown[ComponentPF].Equal(dec("2400")))
		assert.True(t, comp.Breakdown[ComponentTax].Equal(dec("1500")))
		assert.True(t, comp.Breakdown[ComponentDA].IsZero())
		assert.True(t, comp.Breakdown[ComponentESI].IsZero())
	})

	t.Run("is deterministic for identical inputs", func(t *testing.T) {
		structure := createTestStructure(t)

		first, err := ComputeSystemFigures(structure, 10)
		require.NoError(t, err)
		second, err := ComputeSystemFigures(structure, 10)
		require.NoError(t, err)

		assert.True(t, first.Net.Equal(second.Net))
		assert.True(t, first.Gross.Equal(second.Gross))
		assert.True(t, first.BonusAmount.Equal(second.BonusAmount))
	})

	t.Run("rejects nil structure", func(t *testing.T) {
		_, err := ComputeSystemFigures(nil, 10)
		assert.Error(t, err)
	})

	t.Run("rejects negative bonus percentage", func(t *testing.T) {
		structure := createTestStructure(t)

		_, err := ComputeSystemFigures(structure, -1)
		assert.Error(t, err)
	})
}

// ============================================================================
// SalaryComponents Tests
// ============================================================================

func TestSalaryComponents_Totals(t *testing.T) {
	c := createTestComponents()

	assert.True(t, c.TotalEarnings().Equal(dec("30000")))
	assert.True(t, c.TotalDeductions().Equal(dec("3900")))
}
