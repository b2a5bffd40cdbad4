package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

// PasswordHandler exposes the OTP-gated password reset flow.
type PasswordHandler struct {
	reset *usecase.PasswordResetService
}

func NewPasswordHandler(reset *usecase.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{reset: reset}
}

// RegisterRoutes binds password reset endpoints onto the group. codeGuard
// middleware, if any, runs only on the code-sending route.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, codeGuard ...gin.HandlerFunc) {
	r.POST("/send-otp", append(codeGuard, h.SendOTP)...)
	r.POST("/verify-otp", h.VerifyOTP)
	r.POST("/reset-password", h.ResetPassword)
}

// SendOTP mails a reset code to an email with an existing account.
func (h *PasswordHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	if err := h.reset.RequestReset(c.Request.Context(), req.Email); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrIdentityNotFound, Status: http.StatusNotFound, Message: "no account for email"},
		}, http.StatusInternalServerError, "failed to send reset code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reset code sent"})
}

// VerifyOTP exchanges the mailed code for a short-lived reset token.
func (h *PasswordHandler) VerifyOTP(c *gin.Context) {
	var req VerifyResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email and otp are required"))
		return
	}

	token, err := h.reset.VerifyReset(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrOTPNotFound, Status: http.StatusBadRequest, Message: "verification code invalid"},
			{Err: usecase.ErrOTPMismatch, Status: http.StatusBadRequest, Message: "verification code invalid"},
			{Err: usecase.ErrOTPExpired, Status: http.StatusBadRequest, Message: "verification code expired"},
		}, http.StatusInternalServerError, "failed to verify code")
		return
	}

	c.JSON(http.StatusOK, VerifyResetResponse{ResetToken: token})
}

// ResetPassword completes the flow using a valid reset token.
func (h *PasswordHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email, newPassword and resetToken are required"))
		return
	}

	if err := h.reset.CompleteReset(c.Request.Context(), req.ResetToken, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusForbidden, Message: "reset token invalid or expired"},
			{Err: usecase.ErrIdentityNotFound, Status: http.StatusNotFound, Message: "no account for email"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
