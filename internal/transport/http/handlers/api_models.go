package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SendOTPRequest asks for a verification code.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// UserData carries the profile fields collected at sign-up.
type UserData struct {
	FullName       string  `json:"full_name"`
	UserType       string  `json:"user_type"`
	GraduationYear *int    `json:"graduation_year,omitempty"`
	Branch         *string `json:"branch,omitempty"`
	Company        *string `json:"company,omitempty"`
	LinkedIn       *string `json:"linkedin,omitempty"`
	Role           *string `json:"role,omitempty"`
}

// VerifyRegisterRequest completes registration with the mailed code.
type VerifyRegisterRequest struct {
	Email    string   `json:"email" binding:"required"`
	OTP      string   `json:"otp" binding:"required"`
	Password string   `json:"password" binding:"required"`
	UserData UserData `json:"userData"`
}

// LoginRequest authenticates an email and password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserSummary is the session principal returned to clients.
type UserSummary struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	FullName       string  `json:"full_name,omitempty"`
	Role           string  `json:"role"`
	ApprovalStatus string  `json:"approval_status"`
	AdminNotes     *string `json:"admin_notes,omitempty"`
}

// LoginResponse wraps the principal on successful login.
type LoginResponse struct {
	User UserSummary `json:"user"`
}

// VerifyResetRequest exchanges a reset code for a reset token.
type VerifyResetRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyResetResponse carries the short-lived token authorizing the reset.
type VerifyResetResponse struct {
	ResetToken string `json:"resetToken"`
}

// ResetPasswordRequest completes the password reset.
type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
	ResetToken  string `json:"resetToken" binding:"required"`
}

// ProfileSummary is the admin-facing view of a member profile.
type ProfileSummary struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	UserType       string    `json:"user_type"`
	ApprovalStatus string    `json:"approval_status"`
	IsApproved     bool      `json:"is_approved"`
	AdminNotes     *string   `json:"admin_notes,omitempty"`
	GraduationYear *int      `json:"graduation_year,omitempty"`
	Branch         *string   `json:"branch,omitempty"`
	Company        *string   `json:"company,omitempty"`
	LinkedIn       *string   `json:"linkedin,omitempty"`
	Role           *string   `json:"role,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProfileListResponse wraps the admin listing.
type ProfileListResponse struct {
	Profiles []ProfileSummary `json:"profiles"`
}

// ApproveRequest identifies the profile to approve.
type ApproveRequest struct {
	ID string `json:"id" binding:"required"`
}

// RejectRequest identifies the profile to reject with optional notes.
type RejectRequest struct {
	ID    string `json:"id" binding:"required"`
	Notes string `json:"notes"`
}

func newUserSummary(profile *domain.Profile) UserSummary {
	return UserSummary{
		ID:             profile.ID,
		Email:          profile.Email,
		FullName:       profile.FullName,
		Role:           string(profile.UserType),
		ApprovalStatus: string(profile.ApprovalStatus),
		AdminNotes:     profile.AdminNotes,
	}
}

func newProfileSummary(profile domain.Profile) ProfileSummary {
	return ProfileSummary{
		ID:             profile.ID,
		Email:          profile.Email,
		FullName:       profile.FullName,
		UserType:       string(profile.UserType),
		ApprovalStatus: string(profile.ApprovalStatus),
		IsApproved:     profile.IsApproved,
		AdminNotes:     profile.AdminNotes,
		GraduationYear: profile.GraduationYear,
		Branch:         profile.Branch,
		Company:        profile.Company,
		LinkedIn:       profile.LinkedIn,
		Role:           profile.Role,
		CreatedAt:      profile.CreatedAt,
	}
}
