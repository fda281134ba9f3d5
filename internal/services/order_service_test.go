package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

// stubCartRepo is a single-user in-memory CartRepository.
type stubCartRepo struct {
	cart    models.Cart
	cleared bool
}

func (s *stubCartRepo) GetByUserID(userID string) (*models.Cart, error) {
	c := s.cart
	c.UserID = userID
	return &c, nil
}

func (s *stubCartRepo) Save(cart *models.Cart) error {
	s.cart = *cart
	return nil
}

func (s *stubCartRepo) Clear(userID string) error {
	s.cart.Items = nil
	s.cleared = true
	return nil
}

// stubAddressRepo is an in-memory AddressRepository.
type stubAddressRepo struct {
	addresses map[string]models.Address
}

func (s *stubAddressRepo) GetByUserID(userID string) ([]models.Address, error) {
	var out []models.Address
	for _, a := range s.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubAddressRepo) GetByID(id string) (*models.Address, error) {
	a, ok := s.addresses[id]
	if !ok {
		return nil, assert.AnError
	}
	return &a, nil
}

func (s *stubAddressRepo) Create(address *models.Address) error {
	s.addresses[address.ID] = *address
	return nil
}

func (s *stubAddressRepo) Update(address *models.Address) error {
	s.addresses[address.ID] = *address
	return nil
}

func (s *stubAddressRepo) Delete(id string) error {
	delete(s.addresses, id)
	return nil
}

type orderServiceFixture struct {
	service   *services.OrderService
	orderRepo *repositories.MockOrderRepository
	products  *MockProductRepository
	cart      *stubCartRepo
}

func newOrderServiceFixture() *orderServiceFixture {
	orderRepo := repositories.NewMockOrderRepository()
	products := new(MockProductRepository)
	cart := &stubCartRepo{
		cart: models.Cart{
			ID: "cart-1",
			Items: []models.CartItem{
				{ProductID: "prod-1", Quantity: 2},
			},
		},
	}
	addresses := &stubAddressRepo{addresses: map[string]models.Address{
		"addr-1": {
			ID:       "addr-1",
			UserID:   "user-1",
			FullName: "A Customer",
			Phone:    "+15550100",
			Line1:    "1 Test Street",
			City:     "Testville",
			State:    "TS",
			PostCode: "00100",
			Country:  "Testland",
		},
	}}
	notifications := services.NewNotificationService(nil, services.LogMailer{}, services.LogSMSSender{})
	return &orderServiceFixture{
		service:   services.NewOrderService(orderRepo, products, cart, addresses, notifications, nil, "admin@example.com"),
		orderRepo: orderRepo,
		products:  products,
		cart:      cart,
	}
}

func (f *orderServiceFixture) seedOrder(t *testing.T, statuses ...models.ItemStatus) *models.Order {
	t.Helper()
	order := &models.Order{
		UserID:        "user-1",
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
		TotalAmount:   40,
	}
	for i, st := range statuses {
		order.Items = append(order.Items, models.OrderItem{
			ID:        "item-" + string(rune('1'+i)),
			ProductID: "prod-" + string(rune('1'+i)),
			Quantity:  1,
			Price:     20,
			Status:    st,
		})
	}
	assert.NoError(t, f.orderRepo.Create(order))
	return order
}

func TestOrderService_Checkout(t *testing.T) {
	f := newOrderServiceFixture()
	f.products.On("GetByID", "prod-1").Return(&models.Product{
		ID: "prod-1", Name: "Widget", Price: 30, Stock: 5,
	}, nil)

	order, err := f.service.Checkout("user-1", "addr-1", "pay_intent_1")
	assert.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "pay_intent_1", order.PaymentIntentID)
	assert.False(t, order.IsPaid)

	// Price and address are captured at checkout time
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 30.0, order.Items[0].Price)
	assert.Equal(t, models.ItemStatusNotProcessed, order.Items[0].Status)
	assert.Equal(t, 60.0, order.TotalAmount)
	assert.Equal(t, "Testville", order.DeliveryAddress.City)

	stored, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
}

func TestOrderService_CheckoutEmptyCart(t *testing.T) {
	f := newOrderServiceFixture()
	f.cart.cart.Items = nil

	_, err := f.service.Checkout("user-1", "addr-1", "")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestOrderService_CheckoutInsufficientStock(t *testing.T) {
	f := newOrderServiceFixture()
	f.products.On("GetByID", "prod-1").Return(&models.Product{
		ID: "prod-1", Name: "Widget", Price: 30, Stock: 1,
	}, nil)

	_, err := f.service.Checkout("user-1", "addr-1", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient stock")
}

func TestOrderService_CheckoutForeignAddress(t *testing.T) {
	f := newOrderServiceFixture()
	f.products.On("GetByID", "prod-1").Return(&models.Product{
		ID: "prod-1", Name: "Widget", Price: 30, Stock: 5,
	}, nil)

	_, err := f.service.Checkout("user-2", "addr-1", "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

func TestOrderService_MarkOrderPaidIsIdempotent(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed, models.ItemStatusNotProcessed)

	result := models.PaymentResult{Provider: "razorpay", PaymentID: "pay_1", Status: "captured"}
	assert.NoError(t, f.service.MarkOrderPaid(order.ID, result))

	paid, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.NotNil(t, paid.PaidAt)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, models.OrderStatusProcessing, paid.Status)
	for _, it := range paid.Items {
		assert.Equal(t, models.ItemStatusProcessing, it.Status)
	}
	assert.True(t, f.cart.cleared)

	// A duplicate delivery changes nothing and reports no error
	firstPaidAt := *paid.PaidAt
	assert.NoError(t, f.service.MarkOrderPaid(order.ID, models.PaymentResult{PaymentID: "pay_dup"}))
	again, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, firstPaidAt, *again.PaidAt)
	assert.Equal(t, "pay_1", again.PaymentIntentID)
}

func TestOrderService_MarkOrderPaidUnknownOrder(t *testing.T) {
	f := newOrderServiceFixture()
	err := f.service.MarkOrderPaid("missing", models.PaymentResult{})
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_UpdateItemStatusSyncsOrderStatus(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusProcessing, models.ItemStatusProcessing)

	// One item dispatched: the items disagree, so the order status holds
	updated, err := f.service.UpdateItemStatus(order.ID, "item-1", models.ItemStatusDispatched)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	// Both dispatched: the order follows
	updated, err = f.service.UpdateItemStatus(order.ID, "item-2", models.ItemStatusDispatched)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
}

func TestOrderService_UpdateItemStatusByProductID(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed)

	updated, err := f.service.UpdateItemStatus(order.ID, "prod-1", models.ItemStatusConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusConfirmed, updated.Items[0].Status)
	// Confirmed has no order-level counterpart, so the order status holds
	assert.Equal(t, models.OrderStatusPending, updated.Status)
}

func TestOrderService_UpdateItemStatusRejectsUnknownVocabulary(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed)

	_, err := f.service.UpdateItemStatus(order.ID, "item-1", "shipped")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid item status")

	_, err = f.service.UpdateItemStatus(order.ID, "no-such-item", models.ItemStatusDispatched)
	assert.ErrorIs(t, err, services.ErrItemNotFound)
}

func TestOrderService_CancelOrder(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed, models.ItemStatusConfirmed)

	cancelled, err := f.service.CancelOrder(order.ID, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	for _, it := range cancelled.Items {
		assert.Equal(t, models.ItemStatusCancelled, it.Status)
	}
}

func TestOrderService_CancelOrderBlockedByDispatchedItem(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed, models.ItemStatusDispatched)

	_, err := f.service.CancelOrder(order.ID, "user-1")
	assert.ErrorIs(t, err, services.ErrNotCancellable)

	// Nothing was touched
	stored, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.Equal(t, models.ItemStatusNotProcessed, stored.Items[0].Status)
}

func TestOrderService_CancelOrderOwnership(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusNotProcessed)

	_, err := f.service.CancelOrder(order.ID, "someone-else")
	assert.ErrorIs(t, err, services.ErrNotOwner)
}

func TestOrderService_CancelItem(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusProcessing, models.ItemStatusDispatched)

	// A pre-dispatch item cancels, and the order status holds because the
	// items disagree
	updated, err := f.service.CancelItem(order.ID, "item-1", "user-1")
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusCancelled, updated.Items[0].Status)
	assert.Equal(t, models.OrderStatusPending, updated.Status)

	// A dispatched item does not
	_, err = f.service.CancelItem(order.ID, "item-2", "user-1")
	assert.ErrorIs(t, err, services.ErrNotCancellable)
}

func TestOrderService_RequestItemCancel(t *testing.T) {
	f := newOrderServiceFixture()
	order := f.seedOrder(t, models.ItemStatusDispatched)

	updated, err := f.service.RequestItemCancel(order.ID, "item-1", "user-1", "changed my mind")
	assert.NoError(t, err)
	assert.True(t, updated.Items[0].CancelRequested)
	assert.Equal(t, "changed my mind", updated.Items[0].CancelReason)
	// The item status itself is untouched; an admin decides
	assert.Equal(t, models.ItemStatusDispatched, updated.Items[0].Status)
}
