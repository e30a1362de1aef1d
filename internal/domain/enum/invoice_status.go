package enum

// InvoiceStatus represents the status of an invoice.
// InvoiceStatusPartial is only ever derived, never persisted.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusPartial InvoiceStatus = "partial"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid reports whether s may be persisted on an invoice row
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}
