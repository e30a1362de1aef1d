package enum

// Trigger is a business event that may move a deal to another stage
type Trigger string

const (
	TriggerQuoteCreated   Trigger = "quote_created"
	TriggerQuoteAccepted  Trigger = "quote_accepted"
	TriggerQuoteDeclined  Trigger = "quote_declined"
	TriggerOrderCreated   Trigger = "order_created"
	TriggerOrderCancelled Trigger = "order_cancelled"
	TriggerInvoiceCreated Trigger = "invoice_created"
	TriggerInvoicePaid    Trigger = "invoice_paid"
)

func (t Trigger) String() string {
	return string(t)
}

// IsValid reports whether t is a known trigger
func (t Trigger) IsValid() bool {
	switch t {
	case TriggerQuoteCreated, TriggerQuoteAccepted, TriggerQuoteDeclined,
		TriggerOrderCreated, TriggerOrderCancelled,
		TriggerInvoiceCreated, TriggerInvoicePaid:
		return true
	}
	return false
}
