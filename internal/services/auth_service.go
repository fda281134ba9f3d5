package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Validity windows for the one-time token flows.
const (
	resetTokenTTL  = 1 * time.Hour
	verifyTokenTTL = 24 * time.Hour
	phoneOTPTTL    = 10 * time.Minute
)

// errInvalidToken is the generic failure for every one-time-token check. The
// caller never learns whether the user, the token or the expiry failed.
var errInvalidToken = fmt.Errorf("invalid or expired token")

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo      repositories.UserRepository
	notifications *NotificationService
	jwtSecret     []byte
	tokenDurat    time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, notifications *NotificationService, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		notifications: notifications,
		jwtSecret:     []byte(jwtSecret),
		tokenDurat:    24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to the database.
func (s *AuthService) RegisterUser(user *models.User) error {
	// Check if username or email already exists
	if existingUser, err := s.userRepo.GetByUsername(user.Username); err == nil && existingUser != nil {
		return fmt.Errorf("username '%s' already taken", user.Username)
	}
	if existingUser, err := s.userRepo.GetByEmail(user.Email); err == nil && existingUser != nil {
		return fmt.Errorf("email '%s' already registered", user.Email)
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword) // Store the hashed password
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		// It's good practice not to reveal if the username exists or not for security
		return "", fmt.Errorf("invalid credentials")
	}

	// Compare the provided password with the hashed password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	// Generate JWT token
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// RequestPasswordReset generates a reset token for the account behind email
// and mails it. An unknown email returns nil, so callers cannot probe which
// addresses exist.
func (s *AuthService) RequestPasswordReset(email string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		log.Printf("Password reset requested for unknown email %s", email)
		return nil
	}

	token, hash, err := newOpaqueToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiry := time.Now().Add(resetTokenTTL)
	user.ResetTokenHash = hash
	user.ResetTokenExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.notifications.SendEmail(user.Email, "Reset your password",
		fmt.Sprintf("Use this token to reset your password: %s", token)); err != nil {
		log.Printf("Warning: failed to send reset email to %s: %v", user.Email, err)
	}
	return nil
}

// ResetPassword checks the reset token and sets a new password. The token is
// cleared whether or not a later step fails, so it is single use.
func (s *AuthService) ResetPassword(email, token, newPassword string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return errInvalidToken
	}
	if user.ResetTokenHash == "" || user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return errInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(user.ResetTokenHash), []byte(token)) != nil {
		return errInvalidToken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)
	user.ResetTokenHash = ""
	user.ResetTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// RequestEmailVerification generates and mails a verification token.
func (s *AuthService) RequestEmailVerification(userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if user.EmailVerified {
		return nil
	}

	token, hash, err := newOpaqueToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	expiry := time.Now().Add(verifyTokenTTL)
	user.VerifyTokenHash = hash
	user.VerifyTokenExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := s.notifications.SendEmail(user.Email, "Verify your email",
		fmt.Sprintf("Use this token to verify your email address: %s", token)); err != nil {
		log.Printf("Warning: failed to send verification email to %s: %v", user.Email, err)
	}
	return nil
}

// VerifyEmail checks a verification token and marks the email verified.
func (s *AuthService) VerifyEmail(userID, token string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errInvalidToken
	}
	if user.VerifyTokenHash == "" || user.VerifyTokenExpiry == nil || time.Now().After(*user.VerifyTokenExpiry) {
		return errInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(user.VerifyTokenHash), []byte(token)) != nil {
		return errInvalidToken
	}

	user.EmailVerified = true
	user.VerifyTokenHash = ""
	user.VerifyTokenExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}

// RequestPhoneOTP generates a numeric OTP and texts it to the user's phone.
func (s *AuthService) RequestPhoneOTP(userID string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("user not found: %w", err)
	}
	if user.Phone == "" {
		return fmt.Errorf("user has no phone number on file")
	}

	code, err := GenerateNumericCode(6)
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash OTP: %w", err)
	}

	expiry := time.Now().Add(phoneOTPTTL)
	user.PhoneOTPHash = string(hash)
	user.PhoneOTPExpiry = &expiry
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	if err := s.notifications.SendSMS(user.Phone,
		fmt.Sprintf("Your verification code is %s", code)); err != nil {
		log.Printf("Warning: failed to send OTP to %s: %v", user.Phone, err)
	}
	return nil
}

// VerifyPhoneOTP checks the OTP and clears it on success.
func (s *AuthService) VerifyPhoneOTP(userID, code string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return errInvalidToken
	}
	if user.PhoneOTPHash == "" || user.PhoneOTPExpiry == nil || time.Now().After(*user.PhoneOTPExpiry) {
		return errInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PhoneOTPHash), []byte(code)) != nil {
		return errInvalidToken
	}

	user.PhoneOTPHash = ""
	user.PhoneOTPExpiry = nil
	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to clear OTP: %w", err)
	}
	return nil
}

// GenerateNumericCode returns a random code of n decimal digits, left-padded
// with zeros.
func GenerateNumericCode(n int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", n, v), nil
}

// newOpaqueToken returns a random hex token and its bcrypt hash.
func newOpaqueToken() (token, hash string, err error) {
	raw := make([]byte, 24)
	if _, err = rand.Read(raw); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(raw)
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return token, string(hashed), nil
}
