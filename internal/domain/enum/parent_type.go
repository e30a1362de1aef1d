package enum

// ParentType tags a line item row with the kind of document owning it
type ParentType string

const (
	ParentTypeQuote   ParentType = "quote"
	ParentTypeOrder   ParentType = "order"
	ParentTypeInvoice ParentType = "invoice"
)

func (p ParentType) String() string {
	return string(p)
}
