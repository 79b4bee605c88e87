package core

// Suggested category vocabularies per kind. These back the dropdowns in
// the UI; the server does not enforce them, categories stay free-form.
var (
	ExpenseCategories = []string{
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Personal Care",
		"Other",
	}

	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Business",
		"Investment",
		"Gift",
		"Other",
	}
)

// SuggestedCategories returns the vocabulary for a kind. Unknown kinds
// get the expense list, matching the UI default.
func SuggestedCategories(k Kind) []string {
	if k == KindIncome {
		return IncomeCategories
	}
	return ExpenseCategories
}
