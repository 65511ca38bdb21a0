package derived

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studioboard/internal/model"
)

func TestBudgetRollup(t *testing.T) {
	categories := []model.BudgetCategory{
		{Name: "Art", Allocation: 1000},
		{Name: "Audio", Allocation: 500},
	}
	txs := []model.Transaction{
		{Type: model.TxTypeExpense, Category: "Art", Amount: 400},
		{Type: model.TxTypeExpense, Category: "Art", Amount: 350},
		{Type: model.TxTypeExpense, Category: "Audio", Amount: 600},
		{Type: model.TxTypeIncome, Amount: 2000},
	}

	summary := Budget(10000, categories, txs)

	assert.Equal(t, 1350.0, summary.Spent)
	assert.Equal(t, 2000.0, summary.Income)
	assert.Equal(t, 10650.0, summary.Remaining)

	require.Len(t, summary.Categories, 2)

	art := summary.Categories[0]
	assert.Equal(t, "Art", art.Name)
	assert.Equal(t, 750.0, art.Spent)
	assert.Equal(t, 75.0, art.PercentOfAllocation)
	assert.False(t, art.OverBudget)

	audio := summary.Categories[1]
	assert.Equal(t, 600.0, audio.Spent)
	assert.Equal(t, 120.0, audio.PercentOfAllocation)
	assert.True(t, audio.OverBudget)
}

func TestBudgetUncategorizedExpense(t *testing.T) {
	txs := []model.Transaction{
		{Type: model.TxTypeExpense, Category: "Marketing", Amount: 100},
	}

	summary := Budget(500, nil, txs)

	assert.Equal(t, 100.0, summary.Spent)
	assert.Equal(t, 400.0, summary.Remaining)
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, "Marketing", summary.Categories[0].Name)
	assert.True(t, summary.Categories[0].OverBudget)
	assert.Equal(t, 0.0, summary.Categories[0].PercentOfAllocation)
}

func TestBudgetOverspend(t *testing.T) {
	txs := []model.Transaction{
		{Type: model.TxTypeExpense, Category: "Art", Amount: 800},
	}

	summary := Budget(500, nil, txs)
	assert.Equal(t, -300.0, summary.Remaining)
}

func TestBudgetEmptyLedger(t *testing.T) {
	summary := Budget(1200, []model.BudgetCategory{{Name: "Art", Allocation: 300}}, nil)

	assert.Equal(t, 0.0, summary.Spent)
	assert.Equal(t, 1200.0, summary.Remaining)
	require.Len(t, summary.Categories, 1)
	assert.Equal(t, 0.0, summary.Categories[0].PercentOfAllocation)
	assert.False(t, summary.Categories[0].OverBudget)
}

func TestBudgetRounding(t *testing.T) {
	txs := []model.Transaction{
		{Type: model.TxTypeExpense, Category: "Art", Amount: 33.333},
	}
	categories := []model.BudgetCategory{{Name: "Art", Allocation: 100}}

	summary := Budget(100, categories, txs)
	assert.Equal(t, 33.33, summary.Spent)
	assert.Equal(t, 33.3, summary.Categories[0].PercentOfAllocation)
}
