package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Movement is a single debit/credit posting against an account. Seq is the
// journal line sequence assigned at posting time; it provides the
// deterministic tie-break for movements sharing a posting date.
type Movement struct {
	ID      uuid.UUID       `json:"id"`
	EntryNo string          `json:"entry_no"`
	Date    time.Time       `json:"date"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
	Seq     int64           `json:"seq"`
	Memo    string          `json:"memo"`
}

// Entry is a movement annotated with the running balance after applying it.
type Entry struct {
	Movement
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// Report is the result of accumulating movements over an opening balance.
type Report struct {
	Opening     decimal.Decimal `json:"opening_balance"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Closing     decimal.Decimal `json:"closing_balance"`
	Entries     []Entry         `json:"entries"`
}

// MalformedMovementError reports a movement that cannot be accumulated.
type MalformedMovementError struct {
	ID     uuid.UUID
	Reason string
}

func (e *MalformedMovementError) Error() string {
	return fmt.Sprintf("malformed movement %s: %s", e.ID, e.Reason)
}

// ComputeReport accumulates movements in chronological order starting from
// the opening balance. Input order does not matter: movements are stable
// sorted by date ascending with Seq as the secondary key, so the result
// is deterministic and identical across repeated calls on the same input.
//
// Each line must carry a posting date, non-negative amounts, and at most
// one non-zero side; anything else fails with MalformedMovementError rather
// than being coerced to zero.
func ComputeReport(opening decimal.Decimal, movements []Movement) (*Report, error) {
	for i := range movements {
		if err := checkMovement(&movements[i]); err != nil {
			return nil, err
		}
	}

	ordered := make([]Movement, len(movements))
	copy(ordered, movements)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Seq < ordered[j].Seq
		}
		return ordered[i].Date.Before(ordered[j].Date)
	})

	report := &Report{
		Opening:     opening,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Entries:     make([]Entry, 0, len(ordered)),
	}

	running := opening
	for _, m := range ordered {
		running = running.Add(m.Debit).Sub(m.Credit)
		report.TotalDebit = report.TotalDebit.Add(m.Debit)
		report.TotalCredit = report.TotalCredit.Add(m.Credit)
		report.Entries = append(report.Entries, Entry{Movement: m, BalanceAfter: running})
	}
	report.Closing = running

	return report, nil
}

func checkMovement(m *Movement) error {
	if m.Date.IsZero() {
		return &MalformedMovementError{ID: m.ID, Reason: "missing posting date"}
	}
	if m.Debit.IsNegative() || m.Credit.IsNegative() {
		return &MalformedMovementError{ID: m.ID, Reason: "negative amount"}
	}
	if !m.Debit.IsZero() && !m.Credit.IsZero() {
		return &MalformedMovementError{ID: m.ID, Reason: "both debit and credit are non-zero"}
	}
	return nil
}
