package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService handles business logic related to the shopping cart.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart retrieves the user's cart, creating an empty one on first access.
func (s *CartService) GetCart(userID string) (*models.Cart, error) {
	return s.cartRepo.GetByUserID(userID)
}

// AddItem puts a product into the cart, merging quantities when the product
// is already there. Quantity is capped at available stock.
func (s *CartService) AddItem(userID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			if cart.Items[i].Quantity > product.Stock {
				return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)",
					product.Name, cart.Items[i].Quantity, product.Stock)
			}
			merged = true
			break
		}
	}
	if !merged {
		if quantity > product.Stock {
			return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)",
				product.Name, quantity, product.Stock)
		}
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItem sets the quantity of a product in the cart. Zero removes it.
func (s *CartService) UpdateItem(userID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(userID, productID)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("product %s not found: %w", productID, err)
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf("insufficient stock for product %s (requested: %d, available: %d)",
			product.Name, quantity, product.Stock)
	}

	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			if err := s.cartRepo.Save(cart); err != nil {
				return nil, err
			}
			return cart, nil
		}
	}
	return nil, fmt.Errorf("product %s is not in the cart", productID)
}

// RemoveItem takes a product out of the cart.
func (s *CartService) RemoveItem(userID, productID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, it := range cart.Items {
		if it.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return nil, fmt.Errorf("product %s is not in the cart", productID)
	}
	cart.Items = kept

	if err := s.cartRepo.Clear(userID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the user's cart.
func (s *CartService) ClearCart(userID string) error {
	return s.cartRepo.Clear(userID)
}
