package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/safestreet/account-service/internal/api/metrics"
	"github.com/safestreet/account-service/internal/core/domain"
	"github.com/safestreet/account-service/internal/core/ports"
)

const invalidLinkMessage = "Invalid or expired verification link."

type AccountHandler struct {
	accounts ports.AccountService
}

func NewAccountHandler(accounts ports.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Signup registers a new account and dispatches the verification email.
//
// @Summary      Register a new account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Registration details"
// @Success      201   {object}  signupResponse
// @Failure      400   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /signup [post]
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.accounts.Register(c.Request().Context(), req.Name, req.Email, req.Password); err != nil {
		metrics.SignupsTotal.WithLabelValues(signupResult(err)).Inc()
		return err
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, signupResponse{
		Success: true,
		Message: "Signup successful. Check your email to verify your account.",
	})
}

func signupResult(err error) string {
	if ce, ok := domain.IsConflict(err); ok {
		return "conflict_" + ce.Field
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return "invalid"
	}
	return "error"
}

// VerifyEmail redeems the token from a verification link. This endpoint is
// opened by a browser, so it renders HTML on success and plain text on
// failure rather than the JSON envelope.
//
// @Summary      Redeem an email verification link
// @Tags         account
// @Produce      html
// @Param        token  query  string  true  "Verification token"
// @Success      200  {string}  string  "Confirmation page"
// @Failure      400  {string}  string  "Invalid or expired verification link."
// @Router       /verify-email [get]
func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		return c.String(http.StatusBadRequest, invalidLinkMessage)
	}

	if err := h.accounts.VerifyEmail(c.Request().Context(), token); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) || errors.Is(err, domain.ErrTokenInvalid) {
			metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
			return c.String(http.StatusBadRequest, invalidLinkMessage)
		}
		// Store failure: let the central handler log it and answer 500.
		return err
	}

	metrics.VerificationsTotal.WithLabelValues("verified").Inc()
	return c.HTML(http.StatusOK, verifiedPageHTML)
}

// Login authenticates by name or email and returns a session token.
//
// @Summary      Login
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string  "Invalid credentials"
// @Failure      401   {object}  map[string]string  "Email not verified"
// @Failure      429   {object}  map[string]string
// @Router       /login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, profile, err := h.accounts.Login(c.Request().Context(), req.Identifier, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, loginResponse{Token: token, User: profile})
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return "unverified"
	default:
		return "error"
	}
}

// Me returns the public profile of the session's owner.
//
// @Summary      Current account profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.PublicProfile
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AccountHandler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	profile, err := h.accounts.Profile(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}
