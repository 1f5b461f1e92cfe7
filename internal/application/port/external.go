package port

import "context"

// CurrencyConverter supplies a converted amount in the company currency at
// expense-submission time. The core stores the result and never recomputes it.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, error)
}
