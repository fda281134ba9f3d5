package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"github.com/google/uuid"
)

// Sentinel errors the handlers translate into status codes.
var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrItemNotFound   = errors.New("order item not found")
	ErrNotOwner       = errors.New("order does not belong to this user")
	ErrNotCancellable = errors.New("order can no longer be cancelled")
	ErrEmptyCart      = errors.New("cart is empty")
)

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo     repositories.OrderRepository
	productRepo   repositories.ProductRepository
	cartRepo      repositories.CartRepository
	addressRepo   repositories.AddressRepository
	notifications *NotificationService
	publisher     EventPublisher
	adminEmail    string
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	cartRepo repositories.CartRepository,
	addressRepo repositories.AddressRepository,
	notifications *NotificationService,
	publisher EventPublisher,
	adminEmail string,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		addressRepo:   addressRepo,
		notifications: notifications,
		publisher:     publisher,
		adminEmail:    adminEmail,
	}
}

// GetAllOrders retrieves all orders. Admin only; the handler enforces that.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersForUser retrieves the orders owned by a user.
func (s *OrderService) GetOrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(userID)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return order, nil
}

// PrepareOrder builds an unsaved order from the user's cart and chosen
// address: stock is checked and prices are captured at order time. The cart
// is left untouched; it is cleared only once payment (or COD verification)
// succeeds.
func (s *OrderService) PrepareOrder(userID, addressID string) (*models.Order, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	address, err := s.addressRepo.GetByID(addressID)
	if err != nil {
		return nil, fmt.Errorf("address not found: %w", err)
	}
	if address.UserID != userID {
		return nil, fmt.Errorf("address %s does not belong to user %s", addressID, userID)
	}

	var totalAmount float64
	var items []models.OrderItem
	for _, ci := range cart.Items {
		product, err := s.productRepo.GetByID(ci.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s not found: %w", ci.ProductID, err)
		}
		if product.Stock < ci.Quantity {
			return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)",
				product.Name, ci.Quantity, product.Stock)
		}

		itemPrice := product.Price // Price at the time of order creation
		items = append(items, models.OrderItem{
			ID:          uuid.New().String(),
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    ci.Quantity,
			Price:       itemPrice,
			Status:      models.ItemStatusNotProcessed,
		})
		totalAmount += itemPrice * float64(ci.Quantity)
	}

	return &models.Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		DeliveryAddress: address.Snapshot(),
	}, nil
}

// Checkout places an online-payment order. paymentIntentID is the provider
// intent whose notes must carry this order's ID so the webhook can correlate
// the capture back to it.
func (s *OrderService) Checkout(userID, addressID, paymentIntentID string) (*models.Order, error) {
	order, err := s.PrepareOrder(userID, addressID)
	if err != nil {
		return nil, err
	}
	order.PaymentMethod = models.PaymentMethodOnline
	order.PaymentIntentID = paymentIntentID

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.publishEvent("order.created", order)
	return order, nil
}

// PlaceVerifiedCODOrder persists an order promoted from a verified COD
// pre-order and clears the cart.
func (s *OrderService) PlaceVerifiedCODOrder(order *models.Order) error {
	order.PaymentMethod = models.PaymentMethodCOD
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = models.PaymentStatusPending
	}
	if err := s.orderRepo.Create(order); err != nil {
		return fmt.Errorf("failed to create order in repository: %w", err)
	}
	if err := s.cartRepo.Clear(order.UserID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s: %v", order.UserID, err)
	}
	s.publishEvent("order.created", order)
	return nil
}

// MarkOrderPaid is the payment-success handler invoked by the webhook.
// Idempotent: an already-paid order is acknowledged without changes, so
// provider redeliveries are harmless.
func (s *OrderService) MarkOrderPaid(orderID string, result models.PaymentResult) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.IsPaid {
		log.Printf("Order %s already marked paid; ignoring duplicate payment %s", orderID, result.PaymentID)
		return nil
	}

	now := time.Now()
	order.IsPaid = true
	order.PaidAt = &now
	order.PaymentStatus = models.PaymentStatusPaid
	if result.PaymentID != "" {
		order.PaymentIntentID = result.PaymentID
	}
	if order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusProcessing
	}
	for i := range order.Items {
		if order.Items[i].Status == models.ItemStatusNotProcessed {
			order.Items[i].Status = models.ItemStatusProcessing
		}
	}

	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", orderID, err)
	}

	if err := s.cartRepo.Clear(order.UserID); err != nil {
		log.Printf("Warning: failed to clear cart for user %s: %v", order.UserID, err)
	}

	s.publishEvent("order.paid", order)
	return nil
}

// UpdateItemStatus sets a single item's status by subdocument ID and keeps
// the order-level status in step. The legacy dual-array views are emitted
// from this one canonical item collection, so they cannot desynchronize.
func (s *OrderService) UpdateItemStatus(orderID, itemID string, status models.ItemStatus) (*models.Order, error) {
	if !models.IsAdminStatus(status) && status != models.ItemStatusConfirmed {
		return nil, fmt.Errorf("invalid item status: %s", status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	found := false
	for i := range order.Items {
		if order.Items[i].ID == itemID || order.Items[i].ProductID == itemID {
			order.Items[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s in order %s", ErrItemNotFound, itemID, orderID)
	}

	s.deriveOrderStatus(order)

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to update item status: %w", err)
	}
	return order, nil
}

// deriveOrderStatus projects the order-level status from the item statuses:
// when every item agrees on a status with an order-level counterpart, the
// order follows it.
func (s *OrderService) deriveOrderStatus(order *models.Order) {
	if len(order.Items) == 0 {
		return
	}
	first := order.Items[0].Status
	for _, it := range order.Items[1:] {
		if it.Status != first {
			return
		}
	}
	if models.IsAdminStatus(first) {
		order.Status = models.MapAdminStatusToWebsite(first)
	}
}

// CancelOrder cancels a whole order on behalf of its owner. Rejected once
// any item has been dispatched, delivered or completed.
func (s *OrderService) CancelOrder(orderID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}

	for _, it := range order.Items {
		if models.ItemBlocksOrderCancellation(it.Status) {
			return nil, fmt.Errorf("%w: item %s is already %s", ErrNotCancellable, it.ID, it.Status)
		}
	}

	for i := range order.Items {
		if models.ItemCancellable(order.Items[i].Status) {
			order.Items[i].Status = models.ItemStatusCancelled
		}
	}
	order.Status = models.OrderStatusCancelled

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to cancel order %s: %w", orderID, err)
	}

	s.publishEvent("order.cancelled", order)
	return order, nil
}

// CancelItem cancels a single item. Allowed only while the item is still in
// a pre-dispatch state.
func (s *OrderService) CancelItem(orderID, itemID, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}

	for i := range order.Items {
		if order.Items[i].ID != itemID && order.Items[i].ProductID != itemID {
			continue
		}
		if !models.ItemCancellable(order.Items[i].Status) {
			return nil, fmt.Errorf("%w: item is %s", ErrNotCancellable, order.Items[i].Status)
		}
		order.Items[i].Status = models.ItemStatusCancelled
		s.deriveOrderStatus(order)
		if err := s.orderRepo.Update(order); err != nil {
			return nil, fmt.Errorf("failed to cancel item %s: %w", itemID, err)
		}
		return order, nil
	}
	return nil, fmt.Errorf("%w: %s in order %s", ErrItemNotFound, itemID, orderID)
}

// RequestItemCancel flags an item for admin review instead of cancelling it
// outright, and alerts the admin mailbox.
func (s *OrderService) RequestItemCancel(orderID, itemID, userID, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}

	for i := range order.Items {
		if order.Items[i].ID != itemID && order.Items[i].ProductID != itemID {
			continue
		}
		order.Items[i].CancelRequested = true
		order.Items[i].CancelReason = reason
		if err := s.orderRepo.Update(order); err != nil {
			return nil, fmt.Errorf("failed to flag item %s: %w", itemID, err)
		}
		if s.adminEmail != "" {
			body := fmt.Sprintf("Cancellation requested for item %s of order %s. Reason: %s",
				itemID, orderID, reason)
			if err := s.notifications.SendEmail(s.adminEmail, "Cancellation request", body); err != nil {
				log.Printf("Warning: failed to notify admin about cancel request on order %s: %v", orderID, err)
			}
		}
		return order, nil
	}
	return nil, fmt.Errorf("%w: %s in order %s", ErrItemNotFound, itemID, orderID)
}

func (s *OrderService) publishEvent(event string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	payload := map[string]interface{}{
		"event":   event,
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	}
	if err := s.publisher.PublishJSON(rabbitmq.OrderEventQueue, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
