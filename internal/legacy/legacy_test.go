package legacy_test

import (
	"testing"

	"storefront/internal/legacy"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func sampleAddress() *models.DeliveryAddress {
	return &models.DeliveryAddress{
		FullName: "A Customer",
		Phone:    "+15550100",
		Line1:    "1 Test Street",
		City:     "Testville",
		State:    "TS",
		PostCode: "00100",
		Country:  "Testland",
	}
}

func TestNormalizeBackfillsProductsFromOrderItems(t *testing.T) {
	in := legacy.LegacyOrder{
		ID:     "order-1",
		Status: "pending",
		Total:  120,
		OrderItems: []legacy.LegacyItem{
			{ID: "item-1", ProductID: "prod-1", Name: "Widget", Quantity: 3, Price: 40, Status: "pending"},
		},
		DeliveryAddress: sampleAddress(),
	}

	out := legacy.NormalizeOrderForAdmin(in)

	// Both item arrays exist with the same line
	assert.Len(t, out.OrderItems, 1)
	assert.Len(t, out.Products, 1)
	assert.Equal(t, "prod-1", out.Products[0].ProductID)

	// qty and quantity agree on the backfilled side
	assert.Equal(t, 3, out.Products[0].Quantity)
	assert.Equal(t, 3, out.Products[0].Qty)

	// Item and order statuses are projected into the admin vocabulary
	assert.Equal(t, models.ItemStatusNotProcessed, out.Products[0].Status)
	assert.Equal(t, models.ItemStatusNotProcessed, out.Status)

	// Both address fields and both total fields are populated
	assert.NotNil(t, out.ShippingAddress)
	assert.NotNil(t, out.DeliveryAddress)
	assert.Equal(t, *out.DeliveryAddress, *out.ShippingAddress)
	assert.Equal(t, 120.0, out.Total)
	assert.Equal(t, 120.0, out.TotalAmount)
}

func TestNormalizeBackfillsFromQtyWhenQuantityMissing(t *testing.T) {
	in := legacy.LegacyOrder{
		ID: "order-2",
		OrderItems: []legacy.LegacyItem{
			{ID: "item-1", ProductID: "prod-1", Qty: 5, Price: 10, Status: models.ItemStatusProcessing},
		},
	}

	out := legacy.NormalizeOrderForAdmin(in)

	assert.Equal(t, 5, out.Products[0].Quantity)
	assert.Equal(t, 5, out.Products[0].Qty)
	// An admin-vocabulary status passes through unchanged
	assert.Equal(t, models.ItemStatusProcessing, out.Products[0].Status)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := legacy.LegacyOrder{
		ID:     "order-3",
		Status: "shipped",
		Total:  60,
		OrderItems: []legacy.LegacyItem{
			{ID: "item-1", ProductID: "prod-1", Name: "Widget", Quantity: 2, Price: 30, Status: "shipped"},
		},
		ShippingAddress: sampleAddress(),
	}

	once := legacy.NormalizeOrderForAdmin(in)
	twice := legacy.NormalizeOrderForAdmin(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, models.ItemStatusDispatched, once.Status)
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := legacy.LegacyOrder{
		ID:     "order-4",
		Status: "pending",
		OrderItems: []legacy.LegacyItem{
			{ID: "item-1", ProductID: "prod-1", Quantity: 1, Status: "pending"},
		},
	}

	_ = legacy.NormalizeOrderForAdmin(in)

	assert.Equal(t, "pending", in.Status)
	assert.Empty(t, in.Products)
	assert.Equal(t, "pending", in.OrderItems[0].Status)
}

func TestFromOrderEmitsMatchingArrays(t *testing.T) {
	order := models.Order{
		ID:     "order-5",
		UserID: "user-1",
		Status: models.OrderStatusProcessing,
		Items: []models.OrderItem{
			{ID: "item-1", ProductID: "prod-1", ProductName: "Widget", Quantity: 2, Price: 30, Status: models.ItemStatusProcessing},
			{ID: "item-2", ProductID: "prod-2", ProductName: "Gadget", Quantity: 1, Price: 15, Status: models.ItemStatusConfirmed},
		},
		TotalAmount:     75,
		PaymentStatus:   models.PaymentStatusPaid,
		IsPaid:          true,
		DeliveryAddress: *sampleAddress(),
	}

	view := legacy.FromOrder(order)

	assert.Len(t, view.OrderItems, 2)
	assert.Len(t, view.Products, 2)
	for i := range view.OrderItems {
		assert.Equal(t, view.OrderItems[i].ID, view.Products[i].ID)
		assert.Equal(t, view.OrderItems[i].Status, view.Products[i].Status)
		assert.Equal(t, view.OrderItems[i].Quantity, view.Products[i].Qty)
	}

	assert.Equal(t, 75.0, view.Total)
	assert.Equal(t, 75.0, view.TotalAmount)
	assert.Equal(t, models.OrderStatusProcessing, view.Status)
	assert.True(t, view.IsPaid)
	assert.Equal(t, *sampleAddress(), *view.ShippingAddress)
	assert.Equal(t, *sampleAddress(), *view.DeliveryAddress)
}

func TestAdminViewProjectsStatus(t *testing.T) {
	order := models.Order{
		ID:     "order-6",
		Status: models.OrderStatusShipped,
		Items: []models.OrderItem{
			{ID: "item-1", ProductID: "prod-1", Quantity: 1, Price: 10, Status: models.ItemStatusDispatched},
		},
		TotalAmount: 10,
	}

	view := legacy.AdminView(order)

	assert.Equal(t, models.ItemStatusDispatched, view.Status)
	assert.Equal(t, models.ItemStatusDispatched, view.OrderItems[0].Status)
	assert.Equal(t, models.ItemStatusDispatched, view.Products[0].Status)
}
