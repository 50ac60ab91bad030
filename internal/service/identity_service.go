// Package service implements the business layer. Services validate input,
// orchestrate the role-partitioned repositories and platform collaborators,
// and return domain errors the transport layer maps to HTTP statuses.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/platform/blob"
	"github.com/tripdesk/crm-backend/internal/platform/mailer"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/auth"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

// AdminRecipient is the shared recipient key for notifications addressed to
// every admin rather than one specific user.
const AdminRecipient = "admin"

// Sign-in gate messages for accounts that are not yet (or no longer) live.
const (
	msgPending  = "Stay tuned! Request under review."
	msgRejected = "Oops! Admin rejected your signup"
	msgBlocked  = "Uh-oh! Your account is blocked."
)

type IdentityService interface {
	SignUp(ctx context.Context, role domain.Role, req *domain.SignUpRequest) (*domain.Identity, error)
	SignIn(ctx context.Context, role domain.Role, req *domain.SignInRequest) (*domain.SignInResponse, error)
	FetchProfile(ctx context.Context, role domain.Role, userID string) (*domain.Identity, error)
	UpdateProfile(ctx context.Context, role domain.Role, userID string, req *domain.UpdateProfileRequest) (*domain.Identity, error)
	ForgotPassword(ctx context.Context, role domain.Role, req *domain.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, role domain.Role, req *domain.ResetPasswordRequest) error
	Logout(ctx context.Context, role domain.Role, userID string) error
}

type identityService struct {
	partitions  *repository.Partitions
	blobs       blob.Store
	mail        mailer.Service
	notifier    push.Notifier
	jwtSecret   string
	tokenTTL    time.Duration
	resetTTL    time.Duration
	frontendURL string
}

func NewIdentityService(
	partitions *repository.Partitions,
	blobs blob.Store,
	mail mailer.Service,
	notifier push.Notifier,
	jwtSecret string,
	tokenTTL, resetTTL time.Duration,
	frontendURL string,
) IdentityService {
	return &identityService{
		partitions:  partitions,
		blobs:       blobs,
		mail:        mail,
		notifier:    notifier,
		jwtSecret:   jwtSecret,
		tokenTTL:    tokenTTL,
		resetTTL:    resetTTL,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *identityService) SignUp(ctx context.Context, role domain.Role, req *domain.SignUpRequest) (*domain.Identity, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.BadRequestf("%s", err)
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	existing, err := part.Identities.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.Internalf("check email: %v", err)
	}
	if existing != nil {
		return nil, domain.Conflictf("email already registered")
	}

	logoURL := ""
	if req.Logo != "" {
		logoURL, err = uploadDataURI(ctx, s.blobs, "logos", req.Logo)
		if err != nil {
			return nil, domain.BadRequestf("invalid logo: %v", err)
		}
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, domain.Internalf("hash password: %v", err)
	}

	identity := &domain.Identity{
		UserID:       domain.NewUserID(role),
		Email:        req.Email,
		PasswordHash: hash,
		Logo:         logoURL,
		Name:         req.Name,
		Address:      req.Address,
		Gender:       req.Gender,
		Designation:  req.Designation,
		Tagline:      req.Tagline,
		Title:        req.Title,
		About:        req.About,
		CompanyName:  req.CompanyName,
		Mobile:       req.Mobile,
		Status:       domain.DefaultStatus(role),
	}

	created, err := part.Identities.Create(ctx, identity)
	if err != nil {
		return nil, domain.Internalf("create identity: %v", err)
	}
	created.Role = role

	// Employee and partner signups wait for review; let the admins know.
	if role != domain.RoleAdmin {
		s.announceSignup(ctx, created)
	}

	logger.InfoContext(ctx, "identity created", "user_id", created.UserID, "role", role)
	return created, nil
}

func (s *identityService) announceSignup(ctx context.Context, identity *domain.Identity) {
	n := &domain.Notification{
		UserID:      AdminRecipient,
		Type:        domain.NotificationSignup,
		Title:       "New Signup Alert!",
		Description: fmt.Sprintf("%s requested a %s account", identity.Name, identity.Role),
		Logo:        identity.Logo,
		Name:        identity.Name,
		Email:       identity.Email,
	}
	if _, err := s.partitions.Admin.Notifications.Create(ctx, n); err != nil {
		logger.ErrorContext(ctx, "record signup notification", "error", err)
	}
	s.notifier.BroadcastAdmin(ctx, push.Payload{
		Type:        string(domain.NotificationSignup),
		Title:       n.Title,
		Description: n.Description,
		Name:        identity.Name,
		Email:       identity.Email,
		Logo:        identity.Logo,
	})
}

func (s *identityService) SignIn(ctx context.Context, role domain.Role, req *domain.SignInRequest) (*domain.SignInResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.BadRequestf("%s", err)
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	identity, err := part.Identities.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.Internalf("find identity: %v", err)
	}
	if identity == nil {
		return nil, domain.NotFoundf("no account with that email")
	}

	// The password is verified before the status gate so a caller who has
	// not proven the password learns nothing about the account's state.
	match, err := argon2id.ComparePasswordAndHash(req.Password, identity.PasswordHash)
	if err != nil {
		return nil, domain.Internalf("verify password: %v", err)
	}
	if !match {
		return nil, domain.Unauthorizedf("invalid email or password")
	}

	switch identity.Status {
	case domain.StatusPending:
		return nil, domain.Conflictf("%s", msgPending)
	case domain.StatusRejected:
		return nil, domain.Conflictf("%s", msgRejected)
	case domain.StatusBlocked:
		return nil, domain.Conflictf("%s", msgBlocked)
	}

	if role == domain.RoleEmployee {
		if err := part.Identities.IncrementLoginCount(ctx, identity.UserID); err != nil {
			logger.WarnContext(ctx, "increment login count", "user_id", identity.UserID, "error", err)
		} else {
			identity.LoginCount++
		}
	}

	token, err := auth.NewToken(identity.UserID, identity.Email, identity.Name, string(role), s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, domain.Internalf("sign token: %v", err)
	}

	identity.Role = role
	logger.InfoContext(ctx, "sign in", "user_id", identity.UserID, "role", role)
	return &domain.SignInResponse{Token: token, UserData: identity}, nil
}

func (s *identityService) FetchProfile(ctx context.Context, role domain.Role, userID string) (*domain.Identity, error) {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	identity, err := part.Identities.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internalf("find identity: %v", err)
	}
	if identity == nil {
		return nil, domain.NotFoundf("user not found")
	}
	identity.Role = role
	return identity, nil
}

func (s *identityService) UpdateProfile(ctx context.Context, role domain.Role, userID string, req *domain.UpdateProfileRequest) (*domain.Identity, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, domain.BadRequestf("%s", err)
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	current, err := part.Identities.FindByUserID(ctx, userID)
	if err != nil {
		return nil, domain.Internalf("find identity: %v", err)
	}
	if current == nil {
		return nil, domain.NotFoundf("user not found")
	}

	if req.Email != nil && *req.Email != current.Email {
		taken, err := part.Identities.FindByEmail(ctx, *req.Email)
		if err != nil {
			return nil, domain.Internalf("check email: %v", err)
		}
		if taken != nil && taken.UserID != userID {
			return nil, domain.Conflictf("email already registered")
		}
	}

	var logoURL *string
	if req.Logo != nil && *req.Logo != "" {
		uploaded, err := uploadDataURI(ctx, s.blobs, "logos", *req.Logo)
		if err != nil {
			return nil, domain.BadRequestf("invalid logo: %v", err)
		}
		logoURL = &uploaded
	}

	updated, err := part.Identities.UpdateProfile(ctx, userID, req, logoURL)
	if err != nil {
		return nil, domain.Internalf("update profile: %v", err)
	}
	if updated == nil {
		return nil, domain.NotFoundf("user not found")
	}

	// Replaced logo: drop the old blob once the row points at the new one.
	if logoURL != nil && current.Logo != "" && current.Logo != *logoURL {
		deleteBlobByURL(ctx, s.blobs, current.Logo)
	}

	updated.Role = role
	return updated, nil
}

func (s *identityService) ForgotPassword(ctx context.Context, role domain.Role, req *domain.ForgotPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return domain.BadRequestf("email is required")
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return domain.BadRequestf("unknown role %q", role)
	}

	identity, err := part.Identities.FindByEmail(ctx, email)
	if err != nil {
		return domain.Internalf("find identity: %v", err)
	}
	if identity == nil {
		return domain.NotFoundf("no account with that email")
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return domain.Internalf("generate token: %v", err)
	}
	token := hex.EncodeToString(raw)
	tokenHash := hashResetToken(token)

	expires := time.Now().Add(s.resetTTL)
	if err := part.Identities.SetResetToken(ctx, identity.UserID, tokenHash, expires); err != nil {
		return domain.Internalf("store reset token: %v", err)
	}

	resetURL := fmt.Sprintf("%s/%s/reset-password?token=%s", s.frontendURL, role, token)
	if err := s.mail.SendPasswordReset(identity.Email, identity.Name, resetURL); err != nil {
		logger.ErrorContext(ctx, "send reset mail", "user_id", identity.UserID, "error", err)
		return domain.Internalf("could not send reset email")
	}

	logger.InfoContext(ctx, "reset mail sent", "user_id", identity.UserID)
	return nil
}

func (s *identityService) ResetPassword(ctx context.Context, role domain.Role, req *domain.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return domain.BadRequestf("%s", err)
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return domain.BadRequestf("unknown role %q", role)
	}

	identity, err := part.Identities.FindByResetToken(ctx, hashResetToken(req.Token))
	if err != nil {
		return domain.Internalf("find reset token: %v", err)
	}
	if identity == nil {
		return domain.BadRequestf("invalid or expired reset token")
	}

	hash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return domain.Internalf("hash password: %v", err)
	}

	// UpdatePassword clears the stored token, so a link is single-use.
	if err := part.Identities.UpdatePassword(ctx, identity.UserID, hash); err != nil {
		return domain.Internalf("update password: %v", err)
	}

	logger.InfoContext(ctx, "password reset", "user_id", identity.UserID)
	return nil
}

func (s *identityService) Logout(ctx context.Context, role domain.Role, userID string) error {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return domain.BadRequestf("unknown role %q", role)
	}
	if err := part.Identities.Touch(ctx, userID); err != nil {
		return domain.NotFoundf("user not found")
	}
	return nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
