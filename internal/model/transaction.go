package model

import "time"

// 收支类型
const (
	TxTypeExpense = "expense"
	TxTypeIncome  = "income"
)

type Transaction struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Type        string    `json:"type"` // expense / income
	EntryDate   time.Time `json:"entry_date"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValidTxType reports whether t is a known transaction type.
func IsValidTxType(t string) bool {
	return t == TxTypeExpense || t == TxTypeIncome
}
