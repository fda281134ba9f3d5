package services

import (
	"fmt"
	"log"
	"strings"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/shipping"
)

// ShippingService drives the delivery-partner integration: manifest creation
// on dispatch and tracking updates.
type ShippingService struct {
	orderRepo repositories.OrderRepository
	carrier   *shipping.Client
}

// NewShippingService creates a new ShippingService.
func NewShippingService(orderRepo repositories.OrderRepository, carrier *shipping.Client) *ShippingService {
	return &ShippingService{
		orderRepo: orderRepo,
		carrier:   carrier,
	}
}

// CreateManifest asks the carrier for a shipping label for an order and
// records the manifest ID and tracking number. Items still in a pre-dispatch
// state move to Dispatched and the order to shipped.
func (s *ShippingService) CreateManifest(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.ManifestID != "" {
		return order, nil
	}

	addr := order.DeliveryAddress
	req := shipping.ManifestRequest{
		OrderID:  order.ID,
		Name:     addr.FullName,
		Phone:    addr.Phone,
		Address:  strings.TrimSpace(addr.Line1 + " " + addr.Line2),
		City:     addr.City,
		State:    addr.State,
		PostCode: addr.PostCode,
		Country:  addr.Country,
	}
	if order.PaymentMethod == models.PaymentMethodCOD && !order.IsPaid {
		req.CODAmount = order.TotalAmount
	}

	manifest, err := s.carrier.CreateManifest(req)
	if err != nil {
		return nil, fmt.Errorf("delivery partner unreachable: %w", err)
	}

	order.ManifestID = manifest.ManifestID
	order.TrackingNumber = manifest.TrackingNumber
	order.DeliveryStatus = "manifested"
	order.Status = models.OrderStatusShipped
	for i := range order.Items {
		if models.ItemCancellable(order.Items[i].Status) {
			order.Items[i].Status = models.ItemStatusDispatched
		}
	}

	if err := s.orderRepo.Update(order); err != nil {
		return nil, fmt.Errorf("failed to record manifest for order %s: %w", orderID, err)
	}
	return order, nil
}

// RefreshTracking pulls the carrier status for an order's shipment and
// mirrors a terminal "delivered" status onto the order.
func (s *ShippingService) RefreshTracking(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if order.TrackingNumber == "" {
		return nil, fmt.Errorf("order %s has no shipment to track", orderID)
	}

	status, err := s.carrier.Track(order.TrackingNumber)
	if err != nil {
		return nil, fmt.Errorf("delivery partner unreachable: %w", err)
	}

	order.DeliveryStatus = status.Status
	if strings.EqualFold(status.Status, "delivered") {
		order.Status = models.OrderStatusDelivered
		for i := range order.Items {
			if order.Items[i].Status == models.ItemStatusDispatched {
				order.Items[i].Status = models.ItemStatusDelivered
			}
		}
	}

	if err := s.orderRepo.Update(order); err != nil {
		log.Printf("Warning: failed to persist tracking update for order %s: %v", orderID, err)
	}
	return order, nil
}
