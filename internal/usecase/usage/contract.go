package usage

// DailyWindow reads the counters of the current UTC day.
type DailyWindow interface {
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
}

// MonthlyWindow reads the counters of the current UTC month.
type MonthlyWindow interface {
	MonthlyLimit() int64
	MonthlyUsed() int64
	RemainingMonthly() int64
}

// BudgetReader is the read side of the token budget tracker. A zero limit
// means unlimited and Remaining* then reports -1.
type BudgetReader interface {
	DailyWindow
	MonthlyWindow
}
