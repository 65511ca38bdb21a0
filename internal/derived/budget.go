package derived

import (
	"math"

	"studioboard/internal/model"
)

// CategoryBreakdown is the per-category slice of a budget summary.
type CategoryBreakdown struct {
	Name                string  `json:"name"`
	Allocation          float64 `json:"allocation"`
	Spent               float64 `json:"spent"`
	PercentOfAllocation float64 `json:"percent_of_allocation"`
	OverBudget          bool    `json:"over_budget"`
}

// BudgetSummary is the full rollup for a project's budget view. Spent and
// Remaining are the values cached back onto the project row.
type BudgetSummary struct {
	InitialBudget float64             `json:"initial_budget"`
	Spent         float64             `json:"spent"`
	Income        float64             `json:"income"`
	Remaining     float64             `json:"remaining"`
	Categories    []CategoryBreakdown `json:"categories"`
}

// Budget recomputes the rollup from the transaction collection. Category
// allocation edits never change Spent; only expense transactions do. Income
// raises Remaining but is never attributed to a category's spend.
func Budget(initialBudget float64, categories []model.BudgetCategory, txs []model.Transaction) BudgetSummary {
	var spent, income float64
	perCategory := make(map[string]float64)

	for _, tx := range txs {
		switch tx.Type {
		case model.TxTypeExpense:
			spent += tx.Amount
			perCategory[tx.Category] += tx.Amount
		case model.TxTypeIncome:
			income += tx.Amount
		}
	}

	summary := BudgetSummary{
		InitialBudget: round2(initialBudget),
		Spent:         round2(spent),
		Income:        round2(income),
		Remaining:     round2(initialBudget + income - spent),
		Categories:    make([]CategoryBreakdown, 0, len(categories)),
	}

	seen := make(map[string]bool, len(categories))
	for _, cat := range categories {
		catSpent := perCategory[cat.Name]
		summary.Categories = append(summary.Categories, CategoryBreakdown{
			Name:                cat.Name,
			Allocation:          round2(cat.Allocation),
			Spent:               round2(catSpent),
			PercentOfAllocation: percentOf(catSpent, cat.Allocation),
			OverBudget:          catSpent > cat.Allocation,
		})
		seen[cat.Name] = true
	}

	// 未分配类别的支出也要能看到
	for _, tx := range txs {
		if tx.Type != model.TxTypeExpense || seen[tx.Category] {
			continue
		}
		catSpent := perCategory[tx.Category]
		summary.Categories = append(summary.Categories, CategoryBreakdown{
			Name:       tx.Category,
			Spent:      round2(catSpent),
			OverBudget: catSpent > 0,
		})
		seen[tx.Category] = true
	}

	return summary
}

// percentOf returns 100 * spent / allocation rounded to one decimal,
// or 0 when the allocation is zero.
func percentOf(spent, allocation float64) float64 {
	if allocation <= 0 {
		return 0
	}
	return math.Round(1000*spent/allocation) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
