package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/pkg/auth"
)

const testSecret = "test-secret"

func newIdentityFixture() (*fixture, *mockBlobStore, *mockMailer, *mockNotifier, IdentityService) {
	f := newFixture()
	blobs := newMockBlobStore()
	mail := &mockMailer{}
	notifier := newMockNotifier()
	svc := NewIdentityService(f.partitions, blobs, mail, notifier,
		testSecret, 24*time.Hour, time.Hour, "http://app.test")
	return f, blobs, mail, notifier, svc
}

func signUpReq(email string) *domain.SignUpRequest {
	return &domain.SignUpRequest{
		Name:     "Priya Sharma",
		Email:    email,
		Password: "correct-horse",
	}
}

func TestSignUp_EmployeeIsPendingAndAdminNotified(t *testing.T) {
	f, _, _, notifier, svc := newIdentityFixture()

	created, err := svc.SignUp(context.Background(), domain.RoleEmployee, signUpReq("priya@example.com"))
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %q", created.Status)
	}
	if !strings.HasPrefix(created.UserID, "employee_") {
		t.Fatalf("expected employee-prefixed id, got %q", created.UserID)
	}

	notes, _ := f.notes[domain.RoleAdmin].FindUnread(context.Background(), AdminRecipient)
	if len(notes) != 1 || notes[0].Type != domain.NotificationSignup {
		t.Fatalf("expected one signup notification for admins, got %+v", notes)
	}
	if len(notifier.broadcasts) != 1 {
		t.Fatalf("expected one admin push, got %d", len(notifier.broadcasts))
	}
}

func TestSignUp_AdminIsApprovedImmediately(t *testing.T) {
	f, _, _, notifier, svc := newIdentityFixture()

	created, err := svc.SignUp(context.Background(), domain.RoleAdmin, signUpReq("boss@example.com"))
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if created.Status != domain.StatusApproved {
		t.Fatalf("expected approved status, got %q", created.Status)
	}
	if len(notifier.broadcasts) != 0 {
		t.Fatal("admin signup must not notify admins")
	}
	notes, _ := f.notes[domain.RoleAdmin].FindUnread(context.Background(), AdminRecipient)
	if len(notes) != 0 {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
}

func TestSignUp_DuplicateEmail_Conflict(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	if _, err := svc.SignUp(context.Background(), domain.RolePartner, signUpReq("dup@example.com")); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	_, err := svc.SignUp(context.Background(), domain.RolePartner, signUpReq("dup@example.com"))
	if !isKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestSignUp_SameEmailDifferentRoles_Allowed(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	if _, err := svc.SignUp(context.Background(), domain.RoleEmployee, signUpReq("both@example.com")); err != nil {
		t.Fatalf("employee SignUp: %v", err)
	}
	if _, err := svc.SignUp(context.Background(), domain.RolePartner, signUpReq("both@example.com")); err != nil {
		t.Fatalf("partner SignUp with same email: %v", err)
	}
}

func TestSignIn_PendingAccountGated(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	if _, err := svc.SignUp(context.Background(), domain.RolePartner, signUpReq("wait@example.com")); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, err := svc.SignIn(context.Background(), domain.RolePartner,
		&domain.SignInRequest{Email: "wait@example.com", Password: "correct-horse"})
	if !isKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "Stay tuned") {
		t.Fatalf("expected pending gate message, got %q", err.Error())
	}
}

func TestSignIn_WrongPasswordOnPendingAccount_Unauthorized(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	if _, err := svc.SignUp(context.Background(), domain.RolePartner, signUpReq("wait@example.com")); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	// A wrong password must not reveal that the account is still pending.
	_, err := svc.SignIn(context.Background(), domain.RolePartner,
		&domain.SignInRequest{Email: "wait@example.com", Password: "wrong-password"})
	if !isKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if strings.Contains(err.Error(), "Stay tuned") {
		t.Fatalf("gate message leaked to unauthenticated caller: %q", err.Error())
	}
}

func TestSignIn_UnknownEmail_NotFound(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	_, err := svc.SignIn(context.Background(), domain.RolePartner,
		&domain.SignInRequest{Email: "nobody@example.com", Password: "whatever"})
	if !isKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSignIn_ApprovedAfterStatusUpdate(t *testing.T) {
	f, _, mail, _, svc := newIdentityFixture()

	created, err := svc.SignUp(context.Background(), domain.RoleEmployee, signUpReq("ok@example.com"))
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	admin := NewAdminService(f.partitions, mail, newMockNotifier())
	if _, err := admin.UpdateUserStatus(context.Background(), created.UserID, domain.StatusApproved); err != nil {
		t.Fatalf("UpdateUserStatus: %v", err)
	}
	if len(mail.statusMails) != 1 || mail.statusMails[0] != "ok@example.com:approved" {
		t.Fatalf("expected approval mail, got %v", mail.statusMails)
	}

	res, err := svc.SignIn(context.Background(), domain.RoleEmployee,
		&domain.SignInRequest{Email: "ok@example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("SignIn after approval: %v", err)
	}
	if res.Token == "" {
		t.Fatal("expected a token")
	}
	if res.UserData.LoginCount != 1 {
		t.Fatalf("expected login count 1 for employee, got %d", res.UserData.LoginCount)
	}

	claims, err := auth.Parse(res.Token, testSecret)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != created.UserID || claims.Role != "employee" {
		t.Fatalf("bad claims: %+v", claims)
	}
}

func TestSignIn_WrongPassword_Unauthorized(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()

	if _, err := svc.SignUp(context.Background(), domain.RoleAdmin, signUpReq("a@example.com")); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, err := svc.SignIn(context.Background(), domain.RoleAdmin,
		&domain.SignInRequest{Email: "a@example.com", Password: "wrong-password"})
	if !isKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestForgotAndResetPassword_Flow(t *testing.T) {
	_, _, mail, _, svc := newIdentityFixture()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, domain.RoleAdmin, signUpReq("reset@example.com")); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	if err := svc.ForgotPassword(ctx, domain.RoleAdmin, &domain.ForgotPasswordRequest{Email: "reset@example.com"}); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(mail.resetMails) != 1 {
		t.Fatalf("expected one reset mail, got %d", len(mail.resetMails))
	}

	parsed, err := url.Parse(mail.lastURL)
	if err != nil {
		t.Fatalf("parse reset url %q: %v", mail.lastURL, err)
	}
	token := parsed.Query().Get("token")
	if token == "" {
		t.Fatalf("no token in reset url %q", mail.lastURL)
	}

	req := &domain.ResetPasswordRequest{Token: token, Password: "brand-new-pass"}
	if err := svc.ResetPassword(ctx, domain.RoleAdmin, req); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}

	// New password works, token is spent.
	if _, err := svc.SignIn(ctx, domain.RoleAdmin,
		&domain.SignInRequest{Email: "reset@example.com", Password: "brand-new-pass"}); err != nil {
		t.Fatalf("SignIn with new password: %v", err)
	}
	err = svc.ResetPassword(ctx, domain.RoleAdmin, req)
	if !isKind(err, domain.ErrBadRequest) {
		t.Fatalf("expected token reuse to fail with bad request, got %v", err)
	}
}

func TestForgotPassword_MailFailure_SurfacesError(t *testing.T) {
	_, _, mail, _, svc := newIdentityFixture()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, domain.RoleAdmin, signUpReq("x@example.com")); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	mail.sendErr = errPartitionDown
	err := svc.ForgotPassword(ctx, domain.RoleAdmin, &domain.ForgotPasswordRequest{Email: "x@example.com"})
	if !isKind(err, domain.ErrInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestUpdateProfile_ReplacesLogoAndDeletesOldBlob(t *testing.T) {
	_, blobs, _, _, svc := newIdentityFixture()
	ctx := context.Background()

	req := signUpReq("logo@example.com")
	req.Logo = "data:image/png;base64,aWNvbg=="
	created, err := svc.SignUp(ctx, domain.RolePartner, req)
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if created.Logo == "" {
		t.Fatal("expected logo URL after signup")
	}

	newLogo := "data:image/png;base64,bmV3LWljb24="
	updated, err := svc.UpdateProfile(ctx, domain.RolePartner, created.UserID,
		&domain.UpdateProfileRequest{Logo: &newLogo})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.Logo == created.Logo {
		t.Fatal("expected a new logo URL")
	}
	if len(blobs.deleted) != 1 {
		t.Fatalf("expected old logo blob deleted, deleted=%v", blobs.deleted)
	}
}

func TestUpdateProfile_EmailTakenByOtherUser_Conflict(t *testing.T) {
	_, _, _, _, svc := newIdentityFixture()
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, domain.RolePartner, signUpReq("first@example.com")); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	second, err := svc.SignUp(ctx, domain.RolePartner, signUpReq("second@example.com"))
	if err != nil {
		t.Fatalf("second SignUp: %v", err)
	}

	taken := "first@example.com"
	if _, err := svc.UpdateProfile(ctx, domain.RolePartner, second.UserID,
		&domain.UpdateProfileRequest{Email: &taken}); !isKind(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for taken email, got %v", err)
	}

	// Keeping one's own email is not a conflict.
	own := "second@example.com"
	if _, err := svc.UpdateProfile(ctx, domain.RolePartner, second.UserID,
		&domain.UpdateProfileRequest{Email: &own}); err != nil {
		t.Fatalf("UpdateProfile with own email: %v", err)
	}
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}
