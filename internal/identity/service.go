package identity

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidOTP occurs when verification is attempted with a wrong or
	// expired code.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)

// Service manages identity lifecycle: OTP login, profile updates and KYC.
type Service struct {
	repo   Repository
	otpTTL time.Duration
}

// NewService creates a new identity service.
func NewService(repo Repository, otpTTL time.Duration) *Service {
	if otpTTL <= 0 {
		otpTTL = 5 * time.Minute
	}
	return &Service{repo: repo, otpTTL: otpTTL}
}

// RequestOTP issues a fresh 6-digit login code for the phone, creating the
// user record on first contact. Only the bcrypt hash is stored; the plain
// code is returned so the delivery channel (SMS stub) can send it.
func (s *Service) RequestOTP(ctx context.Context, phone string) (string, error) {
	if len(phone) < 10 {
		return "", fmt.Errorf("phone number too short")
	}

	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user, err := s.repo.FindByPhone(ctx, phone)
	if errors.Is(err, ErrUserNotFound) {
		user = User{
			ID:        uuid.NewString(),
			Phone:     phone,
			Role:      RoleUser,
			KYCStatus: KYCNone,
			CreatedAt: time.Now().UTC(),
		}
		user.OTPHash = hash
		user.OTPExpiresAt = time.Now().UTC().Add(s.otpTTL)
		return code, s.repo.Create(ctx, user)
	}
	if err != nil {
		return "", err
	}

	user.OTPHash = hash
	user.OTPExpiresAt = time.Now().UTC().Add(s.otpTTL)
	return code, s.repo.Update(ctx, user)
}

// VerifyOTP checks the code and completes the login. The returned firstLogin
// flag is true exactly once per user, so the caller can provision a wallet
// with the signup bonus.
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (User, bool, error) {
	user, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		return User{}, false, err
	}
	if len(user.OTPHash) == 0 || time.Now().UTC().After(user.OTPExpiresAt) {
		return User{}, false, ErrInvalidOTP
	}
	if err := bcrypt.CompareHashAndPassword(user.OTPHash, []byte(code)); err != nil {
		return User{}, false, ErrInvalidOTP
	}

	firstLogin := user.LastLogin.IsZero()
	user.OTPHash = nil
	user.OTPExpiresAt = time.Time{}
	user.LastLogin = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, false, err
	}
	return user, firstLogin, nil
}

// UpdateProfile stores the user's display name and village.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, village string) (User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if name != "" {
		user.Name = name
	}
	if village != "" {
		user.Village = village
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// SubmitKYC moves the user's KYC status to pending.
func (s *Service) SubmitKYC(ctx context.Context, userID string) (User, error) {
	return s.setKYC(ctx, userID, KYCPending)
}

// ApproveKYC marks the user as verified. Maintenance operation; there is no
// real verification backend.
func (s *Service) ApproveKYC(ctx context.Context, userID string) (User, error) {
	return s.setKYC(ctx, userID, KYCVerified)
}

func (s *Service) setKYC(ctx context.Context, userID, status string) (User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.KYCStatus = status
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
