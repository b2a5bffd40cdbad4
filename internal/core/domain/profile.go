package domain

import (
	"strings"
	"time"
)

// UserType classifies the kind of member a profile describes.
type UserType string

const (
	UserTypeStudent UserType = "Student"
	UserTypeAlumni  UserType = "Alumni"
	UserTypeFaculty UserType = "Faculty"
	UserTypeAdmin   UserType = "Admin"
)

// NormalizeUserType maps free-form input to a canonical UserType.
// Unknown values default to Alumni, matching how the directory treats them.
func NormalizeUserType(value string) UserType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "admin":
		return UserTypeAdmin
	case "faculty":
		return UserTypeFaculty
	case "student":
		return UserTypeStudent
	default:
		return UserTypeAlumni
	}
}

// ApprovalStatus is the tri-state gate deciding whether a profile's owner
// may obtain a session.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// NormalizeApprovalStatus maps free-form input to a canonical status.
// Unknown values default to PENDING.
func NormalizeApprovalStatus(value string) ApprovalStatus {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case string(ApprovalApproved):
		return ApprovalApproved
	case string(ApprovalRejected):
		return ApprovalRejected
	default:
		return ApprovalPending
	}
}

// Profile is the application-level record for a member. Exactly one exists
// per identity, created at account-creation time by the lifecycle engine.
type Profile struct {
	ID             string
	Email          string
	FullName       string
	UserType       UserType
	ApprovalStatus ApprovalStatus
	IsApproved     bool
	AdminNotes     *string
	GraduationYear *int
	Branch         *string
	Company        *string
	LinkedIn       *string
	Role           *string
	CreatedAt      time.Time
}

// Normalize repairs a profile loaded from storage. ApprovalStatus is the
// single source of truth; IsApproved is recomputed from it so that rows
// written by earlier revisions cannot drift. Returns true when the row
// needed repair.
func (p *Profile) Normalize() bool {
	status := NormalizeApprovalStatus(string(p.ApprovalStatus))
	approved := status == ApprovalApproved

	changed := status != p.ApprovalStatus || approved != p.IsApproved
	p.ApprovalStatus = status
	p.IsApproved = approved
	return changed
}

// Approved reports whether the profile may hold a session.
func (p *Profile) Approved() bool {
	return p != nil && p.ApprovalStatus == ApprovalApproved
}

// Admin reports whether the profile belongs to an approved administrator.
func (p *Profile) Admin() bool {
	return p.Approved() && p.UserType == UserTypeAdmin
}

// Identity mirrors the credential record held by the credential store.
// The lifecycle engine references it by opaque ID and email only.
type Identity struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
}
