package models

// OrderStatus is the canonical order-level status. It uses the lowercase
// website vocabulary; the titlecase admin vocabulary is a projection obtained
// via MapWebsiteStatusToAdmin and is never stored.
type OrderStatus = string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
	OrderStatusCompleted  OrderStatus = "completed"
)

// ItemStatus is the canonical per-item status. Items use the titlecase admin
// vocabulary, with "Confirmed" as an extra pre-dispatch state that has no
// order-level counterpart.
type ItemStatus = string

const (
	ItemStatusNotProcessed     ItemStatus = "Not Processed"
	ItemStatusConfirmed        ItemStatus = "Confirmed"
	ItemStatusProcessing       ItemStatus = "Processing"
	ItemStatusDispatched       ItemStatus = "Dispatched"
	ItemStatusDelivered        ItemStatus = "Delivered"
	ItemStatusCancelled        ItemStatus = "Cancelled"
	ItemStatusProcessingRefund ItemStatus = "Processing Refund"
	ItemStatusCompleted        ItemStatus = "Completed"
)

// Payment statuses and methods.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	PaymentMethodOnline = "online"
	PaymentMethodCOD    = "cod"
)

var websiteToAdmin = map[string]string{
	OrderStatusPending:    ItemStatusNotProcessed,
	OrderStatusProcessing: ItemStatusProcessing,
	OrderStatusShipped:    ItemStatusDispatched,
	OrderStatusDelivered:  ItemStatusDelivered,
	OrderStatusCancelled:  ItemStatusCancelled,
	OrderStatusRefunded:   ItemStatusProcessingRefund,
	OrderStatusCompleted:  ItemStatusCompleted,
}

var adminToWebsite = map[string]string{
	ItemStatusNotProcessed:     OrderStatusPending,
	ItemStatusProcessing:       OrderStatusProcessing,
	ItemStatusDispatched:       OrderStatusShipped,
	ItemStatusDelivered:        OrderStatusDelivered,
	ItemStatusCancelled:        OrderStatusCancelled,
	ItemStatusProcessingRefund: OrderStatusRefunded,
	ItemStatusCompleted:        OrderStatusCompleted,
}

// MapWebsiteStatusToAdmin converts a website-vocabulary status to its admin
// counterpart. Unknown input coerces to "Not Processed" rather than erroring,
// so legacy records with stray status strings stay readable.
func MapWebsiteStatusToAdmin(status string) string {
	if admin, ok := websiteToAdmin[status]; ok {
		return admin
	}
	return ItemStatusNotProcessed
}

// MapAdminStatusToWebsite is the inverse of MapWebsiteStatusToAdmin. Unknown
// input coerces to "pending".
func MapAdminStatusToWebsite(status string) string {
	if website, ok := adminToWebsite[status]; ok {
		return website
	}
	return OrderStatusPending
}

// IsWebsiteStatus reports whether s belongs to the website vocabulary.
func IsWebsiteStatus(s string) bool {
	_, ok := websiteToAdmin[s]
	return ok
}

// IsAdminStatus reports whether s belongs to the admin vocabulary.
func IsAdminStatus(s string) bool {
	_, ok := adminToWebsite[s]
	return ok
}

var cancellableItemStatuses = map[ItemStatus]struct{}{
	ItemStatusNotProcessed: {},
	ItemStatusProcessing:   {},
	ItemStatusConfirmed:    {},
}

var cancelBlockingItemStatuses = map[ItemStatus]struct{}{
	ItemStatusDispatched: {},
	ItemStatusDelivered:  {},
	ItemStatusCompleted:  {},
}

// ItemCancellable reports whether an item in the given status may still be
// cancelled by the customer.
func ItemCancellable(status ItemStatus) bool {
	_, ok := cancellableItemStatuses[status]
	return ok
}

// ItemBlocksOrderCancellation reports whether an item in the given status
// prevents cancelling the whole order.
func ItemBlocksOrderCancellation(status ItemStatus) bool {
	_, ok := cancelBlockingItemStatuses[status]
	return ok
}
