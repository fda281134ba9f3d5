package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// codCodeTTL is how long a cash-on-delivery verification code stays valid.
const codCodeTTL = 15 * time.Minute

// ErrCODVerificationFailed is the single generic failure for COD code
// checks. Expired, wrong and unknown all look the same to the caller.
var ErrCODVerificationFailed = errors.New("verification failed")

// ErrPendingOrderNotFound is returned by resend when there is nothing to
// resend for.
var ErrPendingOrderNotFound = errors.New("pending order not found")

// CODService runs the cash-on-delivery verification flow: a hashed,
// time-limited numeric code gates promotion of a pending checkout into a
// real order.
type CODService struct {
	pendingRepo   repositories.PendingCODRepository
	orders        *OrderService
	userRepo      repositories.UserRepository
	notifications *NotificationService
}

// NewCODService creates a new CODService.
func NewCODService(
	pendingRepo repositories.PendingCODRepository,
	orders *OrderService,
	userRepo repositories.UserRepository,
	notifications *NotificationService,
) *CODService {
	return &CODService{
		pendingRepo:   pendingRepo,
		orders:        orders,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

// StartCheckout snapshots the user's cart into a pending COD order, stores a
// hashed verification code with a 15-minute expiry and emails the plaintext
// code to the customer. Returns the pending order ID the client will verify
// against.
func (s *CODService) StartCheckout(ctx context.Context, userID, addressID string) (string, error) {
	order, err := s.orders.PrepareOrder(userID, addressID)
	if err != nil {
		return "", err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("user not found: %w", err)
	}

	pending := &models.PendingCODOrder{
		ID:              uuid.New().String(),
		UserID:          userID,
		Email:           user.Email,
		Items:           order.Items,
		TotalAmount:     order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		CreatedAt:       time.Now(),
	}

	if err := s.issueCode(ctx, pending); err != nil {
		return "", err
	}
	return pending.ID, nil
}

// ResendCode regenerates the code, hash and expiry for a pending COD order,
// invalidating the previous code, and resends the email.
func (s *CODService) ResendCode(ctx context.Context, pendingID string) error {
	pending, err := s.pendingRepo.Get(ctx, pendingID)
	if err != nil {
		return ErrPendingOrderNotFound
	}
	return s.issueCode(ctx, pending)
}

// VerifyCode checks a submitted code against the stored hash and expiry and,
// on success, promotes the pending record to a real order. Any failure is
// reported with the same generic error.
func (s *CODService) VerifyCode(ctx context.Context, pendingID, code string) (*models.Order, error) {
	pending, err := s.pendingRepo.Get(ctx, pendingID)
	if err != nil {
		return nil, ErrCODVerificationFailed
	}
	if time.Now().After(pending.ExpiresAt) {
		return nil, ErrCODVerificationFailed
	}
	if bcrypt.CompareHashAndPassword([]byte(pending.CodeHash), []byte(code)) != nil {
		return nil, ErrCODVerificationFailed
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		UserID:          pending.UserID,
		Items:           pending.Items,
		TotalAmount:     pending.TotalAmount,
		DeliveryAddress: pending.DeliveryAddress,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}

	if err := s.orders.PlaceVerifiedCODOrder(order); err != nil {
		return nil, err
	}
	if err := s.pendingRepo.Delete(ctx, pendingID); err != nil {
		log.Printf("Warning: failed to delete pending COD order %s after promotion: %v", pendingID, err)
	}
	return order, nil
}

// issueCode generates a fresh code/hash/expiry triple, stores it and mails
// the plaintext code. Only the hash is ever persisted.
func (s *CODService) issueCode(ctx context.Context, pending *models.PendingCODOrder) error {
	code, err := GenerateNumericCode(6)
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash verification code: %w", err)
	}

	pending.CodeHash = string(hash)
	pending.ExpiresAt = time.Now().Add(codCodeTTL)

	if err := s.pendingRepo.Save(ctx, pending); err != nil {
		return fmt.Errorf("failed to store pending COD order: %w", err)
	}

	body := fmt.Sprintf("Your cash-on-delivery verification code is %s. It expires in 15 minutes.", code)
	if err := s.notifications.SendEmail(pending.Email, "Confirm your order", body); err != nil {
		log.Printf("Warning: failed to send COD code to %s: %v", pending.Email, err)
	}
	return nil
}
