package enum

// ActivityType names an entry in a deal's activity log
type ActivityType string

const (
	ActivityStageChanged            ActivityType = "stage_changed"
	ActivityQuoteCreated            ActivityType = "quote_created"
	ActivityQuoteStatusChanged      ActivityType = "quote_status_changed"
	ActivityOrderCreatedFromQuote   ActivityType = "order_created_from_quote"
	ActivityOrderStatusChanged      ActivityType = "order_status_changed"
	ActivityInvoiceCreatedFromOrder ActivityType = "invoice_created_from_order"
	ActivityPaymentRecorded         ActivityType = "payment_recorded"
)

func (a ActivityType) String() string {
	return string(a)
}
