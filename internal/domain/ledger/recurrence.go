package ledger

import "time"

// RecurrenceKind is the fixed period governing automatic generation of the
// next installment of a repeating obligation
type RecurrenceKind string

const (
	RecurrenceWeekly    RecurrenceKind = "WEEKLY"    // +7 days
	RecurrenceBiweekly  RecurrenceKind = "BIWEEKLY"  // +15 days
	RecurrenceMonthly   RecurrenceKind = "MONTHLY"   // +1 month
	RecurrenceBimonthly RecurrenceKind = "BIMONTHLY" // +2 months
	RecurrenceQuarterly RecurrenceKind = "QUARTERLY" // +3 months
	RecurrenceYearly    RecurrenceKind = "YEARLY"    // +1 year
)

// IsValid checks if the recurrence kind is valid
func (k RecurrenceKind) IsValid() bool {
	switch k {
	case RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly,
		RecurrenceBimonthly, RecurrenceQuarterly, RecurrenceYearly:
		return true
	}
	return false
}

// String returns the string representation of RecurrenceKind
func (k RecurrenceKind) String() string {
	return string(k)
}

// NextDueDate advances an anchor date by one recurrence period. Month and
// year arithmetic follows time.AddDate semantics, so a January 31 monthly
// anchor normalizes into early March rather than clamping to February's end.
// An unknown kind returns the anchor unchanged; callers guard with IsValid.
func NextDueDate(anchor time.Time, kind RecurrenceKind) time.Time {
	switch kind {
	case RecurrenceWeekly:
		return anchor.AddDate(0, 0, 7)
	case RecurrenceBiweekly:
		return anchor.AddDate(0, 0, 15)
	case RecurrenceMonthly:
		return anchor.AddDate(0, 1, 0)
	case RecurrenceBimonthly:
		return anchor.AddDate(0, 2, 0)
	case RecurrenceQuarterly:
		return anchor.AddDate(0, 3, 0)
	case RecurrenceYearly:
		return anchor.AddDate(1, 0, 0)
	}
	return anchor
}
