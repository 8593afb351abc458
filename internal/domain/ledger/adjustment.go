package ledger

import "time"

// Adjustment is an accounting entry. The task engine writes one per fine;
// payroll and invoicing pick them up from the same table.
// Corresponds to the 'ledger_adjustments' table.
type Adjustment struct {
	ID        int64
	TaskID    int64
	BranchID  int64
	Amount    float64
	Reason    string
	CreatedAt time.Time
}
