package services_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

// captureMailer records outbound mail so tests can read the one-time codes
// out of the message bodies.
type captureMailer struct {
	to     []string
	bodies []string
}

func (m *captureMailer) SendMail(to, subject, body string) error {
	m.to = append(m.to, to)
	m.bodies = append(m.bodies, body)
	return nil
}

var codeRe = regexp.MustCompile(`\b(\d{6})\b`)

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(m.bodies) == 0 {
		t.Fatal("no mail captured")
	}
	match := codeRe.FindStringSubmatch(m.bodies[len(m.bodies)-1])
	if match == nil {
		t.Fatalf("no code in mail body %q", m.bodies[len(m.bodies)-1])
	}
	return match[1]
}

type codFixture struct {
	cod    *services.CODService
	orders *orderServiceFixture
	mr     *miniredis.Miniredis
	mailer *captureMailer
}

func newCODFixture(t *testing.T) *codFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	pendingRepo := repositories.NewRedisPendingCODRepository(client)

	orders := newOrderServiceFixture()
	orders.products.On("GetByID", "prod-1").Return(&models.Product{
		ID: "prod-1", Name: "Widget", Price: 30, Stock: 5,
	}, nil)

	userRepo := new(MockUserRepository)
	userRepo.On("GetByID", "user-1").Return(&models.User{
		ID:    "user-1",
		Email: "customer@example.com",
	}, nil)

	mailer := &captureMailer{}
	notifications := services.NewNotificationService(nil, mailer, services.LogSMSSender{})

	return &codFixture{
		cod:    services.NewCODService(pendingRepo, orders.service, userRepo, notifications),
		orders: orders,
		mr:     mr,
		mailer: mailer,
	}
}

func TestCODService_VerifyFlow(t *testing.T) {
	f := newCODFixture(t)
	ctx := context.Background()

	pendingID, err := f.cod.StartCheckout(ctx, "user-1", "addr-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, pendingID)

	// No real order exists yet
	all, _ := f.orders.orderRepo.GetAll()
	assert.Empty(t, all)

	// The code went to the account email
	assert.Equal(t, []string{"customer@example.com"}, f.mailer.to)
	code := f.mailer.lastCode(t)

	order, err := f.cod.VerifyCode(ctx, pendingID, code)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCOD, order.PaymentMethod)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 60.0, order.TotalAmount)
	assert.Equal(t, order.ID, order.Items[0].OrderID)

	// The order is persisted and the cart is gone
	stored, err := f.orders.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentMethodCOD, stored.PaymentMethod)
	assert.True(t, f.orders.cart.cleared)

	// The pending record is consumed; the code cannot be replayed
	_, err = f.cod.VerifyCode(ctx, pendingID, code)
	assert.ErrorIs(t, err, services.ErrCODVerificationFailed)
}

func TestCODService_WrongCodeIsGeneric(t *testing.T) {
	f := newCODFixture(t)
	ctx := context.Background()

	pendingID, err := f.cod.StartCheckout(ctx, "user-1", "addr-1")
	assert.NoError(t, err)

	_, err = f.cod.VerifyCode(ctx, pendingID, "000000")
	assert.ErrorIs(t, err, services.ErrCODVerificationFailed)

	// A wrong attempt does not consume the pending record
	code := f.mailer.lastCode(t)
	_, err = f.cod.VerifyCode(ctx, pendingID, code)
	assert.NoError(t, err)
}

func TestCODService_ExpiredCodeIsGeneric(t *testing.T) {
	f := newCODFixture(t)
	ctx := context.Background()

	pendingID, err := f.cod.StartCheckout(ctx, "user-1", "addr-1")
	assert.NoError(t, err)
	code := f.mailer.lastCode(t)

	// Past the 15 minute window the record has expired out of the store;
	// the correct code fails exactly like a wrong one
	f.mr.FastForward(16 * time.Minute)

	_, err = f.cod.VerifyCode(ctx, pendingID, code)
	assert.ErrorIs(t, err, services.ErrCODVerificationFailed)
}

func TestCODService_UnknownPendingIDIsGeneric(t *testing.T) {
	f := newCODFixture(t)

	_, err := f.cod.VerifyCode(context.Background(), "no-such-pending", "123456")
	assert.ErrorIs(t, err, services.ErrCODVerificationFailed)
}

func TestCODService_ResendInvalidatesPreviousCode(t *testing.T) {
	f := newCODFixture(t)
	ctx := context.Background()

	pendingID, err := f.cod.StartCheckout(ctx, "user-1", "addr-1")
	assert.NoError(t, err)
	firstCode := f.mailer.lastCode(t)

	assert.NoError(t, f.cod.ResendCode(ctx, pendingID))
	secondCode := f.mailer.lastCode(t)
	assert.Len(t, f.mailer.bodies, 2)

	if firstCode != secondCode {
		_, err = f.cod.VerifyCode(ctx, pendingID, firstCode)
		assert.ErrorIs(t, err, services.ErrCODVerificationFailed)
	}

	order, err := f.cod.VerifyCode(ctx, pendingID, secondCode)
	assert.NoError(t, err)
	assert.NotNil(t, order)
}

func TestCODService_ResendUnknownPending(t *testing.T) {
	f := newCODFixture(t)

	err := f.cod.ResendCode(context.Background(), "no-such-pending")
	assert.ErrorIs(t, err, services.ErrPendingOrderNotFound)
}

func TestCODService_CheckoutFailuresSurface(t *testing.T) {
	f := newCODFixture(t)
	f.orders.cart.cart.Items = nil

	_, err := f.cod.StartCheckout(context.Background(), "user-1", "addr-1")
	assert.ErrorIs(t, err, services.ErrEmptyCart)
}
