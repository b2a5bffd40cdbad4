package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/middleware"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

// AuthHandler exposes registration, login, and session endpoints.
type AuthHandler struct {
	lifecycle  *usecase.LifecycleService
	sessions   *usecase.SessionService
	cookieName string
	secure     bool
}

// NewAuthHandler constructs the handler. secure controls the cookie Secure
// flag and should be true outside local development.
func NewAuthHandler(lifecycle *usecase.LifecycleService, sessions *usecase.SessionService, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{
		lifecycle:  lifecycle,
		sessions:   sessions,
		cookieName: cookieName,
		secure:     secure,
	}
}

// RegisterRoutes binds auth endpoints onto the group. codeGuard middleware,
// if any, runs only on the code-sending route so mail dispatch can be limited
// more tightly than logins.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, codeGuard ...gin.HandlerFunc) {
	r.POST("/send-register-otp", append(codeGuard, h.SendRegisterOTP)...)
	r.POST("/verify-register-otp", h.VerifyRegisterOTP)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)
}

// RegisterSessionRoutes binds endpoints that require a live session.
func (h *AuthHandler) RegisterSessionRoutes(r *gin.RouterGroup) {
	r.GET("/me", h.Me)
}

// SendRegisterOTP mails a registration code to an unclaimed email.
func (h *AuthHandler) SendRegisterOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.lifecycle.RequestRegistrationCode(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTaken, Status: http.StatusBadRequest, Message: "email already registered"},
			{Err: usecase.ErrOTPDispatchFailed, Status: http.StatusInternalServerError, Message: "failed to send verification code"},
		}, http.StatusInternalServerError, "failed to send verification code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "verification code sent"})
}

// VerifyRegisterOTP consumes the code and creates the account.
func (h *AuthHandler) VerifyRegisterOTP(c *gin.Context) {
	var req VerifyRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	profile, err := h.lifecycle.CreateAccount(c.Request.Context(), usecase.RegistrationInput{
		Email:          req.Email,
		Password:       req.Password,
		Code:           req.OTP,
		FullName:       req.UserData.FullName,
		UserType:       req.UserData.UserType,
		GraduationYear: req.UserData.GraduationYear,
		Branch:         req.UserData.Branch,
		Company:        req.UserData.Company,
		LinkedIn:       req.UserData.LinkedIn,
		Role:           req.UserData.Role,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOTPNotFound, Status: http.StatusBadRequest, Message: "verification code invalid"},
			{Err: usecase.ErrOTPMismatch, Status: http.StatusBadRequest, Message: "verification code invalid"},
			{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Message: "verification code expired"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusBadRequest, Message: "email already registered"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to create account")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "account created",
		"user":    newUserSummary(profile),
	})
}

// Login verifies credentials and sets the session cookie for approved
// accounts. Pending and rejected accounts get 403 with the reason.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and password are required"))
		return
	}

	profile, err := h.lifecycle.AuthorizeLogin(c.Request.Context(), req.Email, req.Password, false)
	if err != nil {
		var rejected *usecase.RejectedLoginError
		var pending *usecase.PendingLoginError
		switch {
		case errors.As(err, &rejected):
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account rejected: "+rejected.Notes))
		case errors.As(err, &pending):
			c.JSON(http.StatusForbidden, NewErrorResponse(c, "account pending approval"))
		case errors.Is(err, usecase.ErrInvalidCredentials), errors.Is(err, usecase.ErrNoProfile):
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "invalid email or password"))
		case errors.Is(err, usecase.ErrLoginTimeout):
			c.JSON(http.StatusGatewayTimeout, NewErrorResponse(c, "login timed out, try again"))
		default:
			c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		}
		return
	}

	token, err := h.sessions.Issue(profile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "login failed"))
		return
	}

	h.setSessionCookie(c, token, h.sessions.SessionTTL())

	c.JSON(http.StatusOK, LoginResponse{User: newUserSummary(profile)})
}

// Logout clears the session cookie. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -time.Second)
	c.JSON(http.StatusOK, MessageResponse{Message: "logged out"})
}

// Me returns the principal behind the session cookie.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.SessionFromContext(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	profile, err := h.lifecycle.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, usecase.ErrProfileNotFound) {
			c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to load profile"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": newUserSummary(profile)})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, int(ttl.Seconds()), "/", "", h.secure, true)
}
