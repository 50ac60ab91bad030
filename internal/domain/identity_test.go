package domain

import (
	"strings"
	"testing"
)

func TestNewUserID_PrefixAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewUserID(RolePartner)
		if !strings.HasPrefix(id, "partner_") {
			t.Fatalf("bad prefix: %s", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestRoleFromUserID(t *testing.T) {
	tests := []struct {
		id   string
		role Role
		ok   bool
	}{
		{"admin_1700000000000_abc", RoleAdmin, true},
		{"employee_1700000000000_abc", RoleEmployee, true},
		{"partner_1700000000000_abc", RolePartner, true},
		{"driver_1700000000000_abc", "", false},
		{"nounderscores", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		role, ok := RoleFromUserID(tt.id)
		if ok != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.id, tt.ok, ok)
		}
		if ok && role != tt.role {
			t.Fatalf("%q: expected role %q, got %q", tt.id, tt.role, role)
		}
	}
}

func TestDefaultStatus(t *testing.T) {
	if DefaultStatus(RoleAdmin) != StatusApproved {
		t.Fatal("admins must be approved at signup")
	}
	if DefaultStatus(RoleEmployee) != StatusPending || DefaultStatus(RolePartner) != StatusPending {
		t.Fatal("employee and partner must be pending at signup")
	}
}

func TestSignUpRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignUpRequest
		wantErr bool
	}{
		{"valid", SignUpRequest{Name: "A", Email: "a@example.com", Password: "longenough"}, false},
		{"missing name", SignUpRequest{Email: "a@example.com", Password: "longenough"}, true},
		{"bad email", SignUpRequest{Name: "A", Email: "not-an-email", Password: "longenough"}, true},
		{"short password", SignUpRequest{Name: "A", Email: "a@example.com", Password: "short"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Normalize()
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSignInRequest_NormalizeLowercasesEmail(t *testing.T) {
	req := SignInRequest{Email: "  User@Example.COM ", Password: "pw"}
	req.Normalize()
	if req.Email != "user@example.com" {
		t.Fatalf("expected normalized email, got %q", req.Email)
	}
}
