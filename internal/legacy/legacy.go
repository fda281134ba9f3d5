// Package legacy produces the historical dual-shape order representation at
// the API boundary. Older clients read two parallel item arrays ("orderItems"
// and "products"), two total fields and two address fields; internally there
// is exactly one canonical shape (models.Order) and the duplication only ever
// exists in serialized responses.
package legacy

import (
	"encoding/json"

	"storefront/internal/models"
)

// LegacyItem is an order line item in the historical wire shape. "qty" and
// "quantity" are the same value under both historical keys.
type LegacyItem struct {
	ID              string  `json:"id,omitempty"`
	ProductID       string  `json:"productId,omitempty"`
	Name            string  `json:"name,omitempty"`
	Quantity        int     `json:"quantity,omitempty"`
	Qty             int     `json:"qty,omitempty"`
	Price           float64 `json:"price,omitempty"`
	Status          string  `json:"status,omitempty"`
	CancelRequested bool    `json:"cancelRequested,omitempty"`
	CancelReason    string  `json:"cancelReason,omitempty"`
	Reviewed        bool    `json:"reviewed,omitempty"`
}

// LegacyOrder is an order in the historical wire shape, with every field pair
// the two old UI code paths read.
type LegacyOrder struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`

	OrderItems []LegacyItem `json:"orderItems,omitempty"`
	Products   []LegacyItem `json:"products,omitempty"`

	Total       float64 `json:"total,omitempty"`
	TotalAmount float64 `json:"totalAmount,omitempty"`

	Status string `json:"status,omitempty"`

	PaymentStatus   string `json:"paymentStatus,omitempty"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
	IsPaid          bool   `json:"isPaid,omitempty"`

	ShippingAddress *models.DeliveryAddress `json:"shippingAddress,omitempty"`
	DeliveryAddress *models.DeliveryAddress `json:"deliveryAddress,omitempty"`

	TrackingNumber string `json:"trackingNumber,omitempty"`
	ManifestID     string `json:"manifestId,omitempty"`
	DeliveryStatus string `json:"deliveryStatus,omitempty"`
}

// toAdminStatus coerces any status string into the admin vocabulary: admin
// values pass through, website values map across, anything else falls back to
// the default. Idempotent.
func toAdminStatus(s string) string {
	if models.IsAdminStatus(s) {
		return s
	}
	return models.MapWebsiteStatusToAdmin(s)
}

// NormalizeOrderForAdmin backfills whichever half of each legacy field pair
// is missing and projects the order status into the admin vocabulary. The
// input is cloned via a JSON round trip and never mutated. Every backfill is
// guarded on the target being empty, so the function is idempotent.
func NormalizeOrderForAdmin(in LegacyOrder) LegacyOrder {
	out := clone(in)

	if len(out.Products) == 0 && len(out.OrderItems) > 0 {
		out.Products = make([]LegacyItem, 0, len(out.OrderItems))
		for _, it := range out.OrderItems {
			qty := it.Quantity
			if qty == 0 {
				qty = it.Qty
			}
			p := it
			p.Quantity = qty
			p.Qty = qty
			p.Status = toAdminStatus(it.Status)
			out.Products = append(out.Products, p)
		}
	}

	if out.ShippingAddress == nil && out.DeliveryAddress != nil {
		addr := *out.DeliveryAddress
		out.ShippingAddress = &addr
	}
	if out.DeliveryAddress == nil && out.ShippingAddress != nil {
		addr := *out.ShippingAddress
		out.DeliveryAddress = &addr
	}

	if out.Total == 0 && out.TotalAmount != 0 {
		out.Total = out.TotalAmount
	}
	if out.TotalAmount == 0 && out.Total != 0 {
		out.TotalAmount = out.Total
	}

	if models.IsWebsiteStatus(out.Status) {
		out.Status = models.MapWebsiteStatusToAdmin(out.Status)
	}

	return out
}

// FromOrder builds the customer-facing legacy view of a canonical order. Both
// item arrays are emitted from the single canonical collection, so they can
// never disagree; the order status stays in the website vocabulary.
func FromOrder(o models.Order) LegacyOrder {
	items := make([]LegacyItem, 0, len(o.Items))
	products := make([]LegacyItem, 0, len(o.Items))
	for _, it := range o.Items {
		li := LegacyItem{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Name:            it.ProductName,
			Quantity:        it.Quantity,
			Price:           it.Price,
			Status:          it.Status,
			CancelRequested: it.CancelRequested,
			CancelReason:    it.CancelReason,
			Reviewed:        it.Reviewed,
		}
		items = append(items, li)

		p := li
		p.Qty = it.Quantity
		products = append(products, p)
	}

	addr := o.DeliveryAddress
	shipping := addr

	return LegacyOrder{
		ID:              o.ID,
		UserID:          o.UserID,
		OrderItems:      items,
		Products:        products,
		Total:           o.TotalAmount,
		TotalAmount:     o.TotalAmount,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentIntentID: o.PaymentIntentID,
		IsPaid:          o.IsPaid,
		ShippingAddress: &shipping,
		DeliveryAddress: &addr,
		TrackingNumber:  o.TrackingNumber,
		ManifestID:      o.ManifestID,
		DeliveryStatus:  o.DeliveryStatus,
	}
}

// AdminView is FromOrder followed by NormalizeOrderForAdmin, the shape the
// admin panel consumes.
func AdminView(o models.Order) LegacyOrder {
	return NormalizeOrderForAdmin(FromOrder(o))
}

// clone deep-copies a legacy order through a JSON round trip. Marshaling a
// value that itself round-tripped from JSON cannot fail, so errors are
// ignored.
func clone(in LegacyOrder) LegacyOrder {
	var out LegacyOrder
	b, _ := json.Marshal(in)
	_ = json.Unmarshal(b, &out)
	return out
}
