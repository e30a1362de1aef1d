package enum

// QuoteStatus represents the status of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusDeclined QuoteStatus = "declined"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// quoteTransitions lists the statuses a quote may move to from each status.
// Accepted, declined and expired are terminal.
var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusDraft: {QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired},
	QuoteStatusSent:  {QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired},
}

func (s QuoteStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known quote status
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusDeclined, QuoteStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether a quote in status s may move to next
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
