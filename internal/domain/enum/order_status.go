package enum

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "draft"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusBackorder OrderStatus = "backorder"
	OrderStatusInvoiced  OrderStatus = "invoiced"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:     {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:  {OrderStatusInvoiced, OrderStatusCancelled, OrderStatusBackorder},
	OrderStatusBackorder: {OrderStatusAccepted, OrderStatusInvoiced, OrderStatusCancelled},
}

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known order status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusAccepted, OrderStatusCancelled, OrderStatusBackorder, OrderStatusInvoiced:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
