package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/identity"
	"github.com/gram-seva/gram_seva/internal/notification"
	"github.com/gram-seva/gram_seva/internal/wallet"
)

// Handler exposes the OTP login endpoints.
type Handler struct {
	ids      *identity.Service
	svc      *Service
	wallets  *wallet.Service
	notifier notification.Notifier
	devMode  bool
}

// NewHandler constructs an auth handler. In dev mode the issued OTP is
// echoed in the response so the flow works without an SMS provider.
func NewHandler(ids *identity.Service, svc *Service, wallets *wallet.Service, notifier notification.Notifier, devMode bool) *Handler {
	return &Handler{ids: ids, svc: svc, wallets: wallets, notifier: notifier, devMode: devMode}
}

type otpRequest struct {
	Phone string `json:"phone"`
}

// RequestOTP issues a login code for the phone number.
func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	code, err := h.ids.RequestOTP(c.UserContext(), req.Phone)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	if h.notifier != nil {
		_ = h.notifier.Send(c.UserContext(), notification.Message{
			Kind:        "otp",
			Destination: req.Phone,
			Body:        "Your GramSeva login code is " + code,
		})
	}

	resp := fiber.Map{"status": "otp_sent"}
	if h.devMode {
		resp["otp"] = code
	}
	return c.Status(http.StatusOK).JSON(resp)
}

type verifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type verifyResponse struct {
	UserID       string `json:"user_id"`
	Phone        string `json:"phone"`
	Name         string `json:"name,omitempty"`
	Village      string `json:"village,omitempty"`
	KYCStatus    string `json:"kyc_status"`
	NewUser      bool   `json:"new_user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// VerifyOTP completes the login, provisioning a wallet with the signup
// bonus on the user's first login.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	user, firstLogin, err := h.ids.VerifyOTP(c.UserContext(), req.Phone, req.OTP)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidOTP) || errors.Is(err, identity.ErrUserNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "invalid or expired OTP")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	if firstLogin && h.wallets != nil {
		if _, err := h.wallets.Provision(c.UserContext(), user.ID); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	pair, err := h.svc.Login(user)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	return c.Status(http.StatusOK).JSON(verifyResponse{
		UserID:       user.ID,
		Phone:        user.Phone,
		Name:         user.Name,
		Village:      user.Village,
		KYCStatus:    user.KYCStatus,
		NewUser:      firstLogin,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	token, exp, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"access_token": token, "expires_in": exp})
}

// Logout invalidates the authenticated user's tokens.
func (h *Handler) Logout(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if uid == "" {
		return fiber.NewError(http.StatusUnauthorized, "not authenticated")
	}
	if err := h.svc.Logout(c.UserContext(), uid); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}
