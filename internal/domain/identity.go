package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RolePartner  Role = "partner"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleEmployee: true,
	RolePartner:  true,
}

func IsValidRole(role Role) bool {
	return validRoles[role]
}

// RoleFromUserID derives the owning role from an opaque id's prefix
// ("partner_1700000000000_k3f9x2" -> partner).
func RoleFromUserID(userID string) (Role, bool) {
	prefix, _, found := strings.Cut(userID, "_")
	if !found {
		return "", false
	}
	role := Role(prefix)
	return role, validRoles[role]
}

// NewUserID generates the opaque role-scoped id:
// "{role}_{unixMillis}_{randomBase36}".
func NewUserID(role Role) string {
	return fmt.Sprintf("%s_%d_%s", role, time.Now().UnixMilli(), randBase36())
}

func randBase36() string {
	buf := make([]byte, 8)
	rand.Read(buf)
	return new(big.Int).SetBytes(buf).Text(36)
}

// Account lifecycle statuses. Admin identities default to approved;
// employee and partner identities default to pending and are gated at
// sign-in until an admin approves them.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	StatusBlocked  = "blocked"
)

var validStatuses = map[string]bool{
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
	StatusBlocked:  true,
}

func IsValidStatus(status string) bool {
	return validStatuses[status]
}

type Identity struct {
	ID                int64      `json:"-"`
	UserID            string     `json:"userId"`
	Role              Role       `json:"role,omitempty"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Logo              string     `json:"logo,omitempty"`
	Name              string     `json:"name"`
	Address           string     `json:"address,omitempty"`
	Gender            string     `json:"gender,omitempty"`
	Designation       string     `json:"designation,omitempty"`
	Tagline           string     `json:"tagline,omitempty"`
	Title             string     `json:"title,omitempty"`
	About             string     `json:"about,omitempty"`
	CompanyName       string     `json:"companyName,omitempty"`
	Mobile            string     `json:"mobile,omitempty"`
	Status            string     `json:"status"`
	LoginCount        int        `json:"loginCount"`
	ResetTokenHash    string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	QuotationCount    int64      `json:"quotationCount,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type SignUpRequest struct {
	Logo        string `json:"logo,omitempty"` // base64 data URI
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Address     string `json:"address,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Designation string `json:"designation,omitempty"`
	Tagline     string `json:"tagline,omitempty"`
	Title       string `json:"title,omitempty"`
	About       string `json:"about,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token    string    `json:"token"`
	UserData *Identity `json:"user_data"`
}

// UpdateProfileRequest merges non-nil fields over the stored profile.
type UpdateProfileRequest struct {
	Logo        *string `json:"logo,omitempty"` // base64 data URI, replaces stored blob
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Address     *string `json:"address,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Tagline     *string `json:"tagline,omitempty"`
	Title       *string `json:"title,omitempty"`
	About       *string `json:"about,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	Mobile      *string `json:"mobile,omitempty"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func (r *SignUpRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Mobile = strings.TrimSpace(r.Mobile)
}

func (r *SignUpRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

func (r *SignInRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignInRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !isValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

func (r *UpdateProfileRequest) Normalize() {
	if r.Email != nil {
		lowered := strings.ToLower(strings.TrimSpace(*r.Email))
		r.Email = &lowered
	}
}

func (r *UpdateProfileRequest) Validate() error {
	if r.Email != nil && !isValidEmail(*r.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (r *ResetPasswordRequest) Validate() error {
	if r.Token == "" {
		return fmt.Errorf("token is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// DefaultStatus is the status assigned at sign-up: admins are live
// immediately, everyone else waits for approval.
func DefaultStatus(role Role) string {
	if role == RoleAdmin {
		return StatusApproved
	}
	return StatusPending
}
