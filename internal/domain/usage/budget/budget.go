package budget

// Budget tracks completion API token budget state.
type Budget struct {
	tokensLimit     int
	tokensUsed      int
	tokensRemaining int
	isExhausted     bool
	resetsAt        int64 // unix millis, converted to RFC 3339 at transport layer
}

// New creates a Budget snapshot. A zero limit means unlimited.
func New(limit, used, remaining int, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensUsed:      used,
		tokensRemaining: remaining,
		isExhausted:     limit > 0 && remaining <= 0,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap (0 = unlimited).
func (b Budget) TokensLimit() int { return b.tokensLimit }

// TokensUsed returns tokens consumed in the period.
func (b Budget) TokensUsed() int { return b.tokensUsed }

// TokensRemaining returns tokens left (-1 = unlimited).
func (b Budget) TokensRemaining() int { return b.tokensRemaining }

// IsExhausted reports whether the budget is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// ResetsAt returns the reset timestamp (unix millis, 0 when the period never resets).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
