package models

// Category types.
const (
	CategoryExpense = "expense"
	CategoryIncome  = "income"
)

// Category labels expenses (e.g. "Groceries"). Categories with an empty
// CreatedBy are global; otherwise they belong to one user.
type Category struct {
	ID        string
	Name      string
	Icon      string
	Type      string // CategoryExpense or CategoryIncome
	CreatedBy string
	CreatedAt int64
}
