package models

import (
	"testing"
)

func validUserProfile() *UserProfile {
	return &UserProfile{
		ID:       "u1",
		Email:    "dana@example.com",
		Name:     "Dana",
		Role:     RoleUser,
		IsActive: true,
	}
}

func TestUserProfile_Validate_OK(t *testing.T) {
	if err := validUserProfile().Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestUserProfile_Validate_CompanyID(t *testing.T) {
	tests := []struct {
		name      string
		companyID string
		valid     bool
	}{
		{"empty accepted (optional)", "", true},
		{"three digits accepted", "C001", true},
		{"more digits accepted", "C12345", true},
		{"too few digits rejected", "C1", false},
		{"missing prefix rejected", "001", false},
		{"lowercase prefix rejected", "c001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUserProfile()
			u.CompanyID = tt.companyID
			err := u.Validate()
			if tt.valid && err != nil {
				t.Errorf("companyId %q should be valid, got %v", tt.companyID, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("companyId %q should be rejected", tt.companyID)
			}
		})
	}
}

func TestUserProfile_Validate_NegativeHourlyRate(t *testing.T) {
	u := validUserProfile()
	u.HourlyRate = -10

	if err := u.Validate(); err == nil {
		t.Fatal("expected negative hourly rate to be rejected")
	}
}

func TestUserProfile_Validate_InvalidRole(t *testing.T) {
	u := validUserProfile()
	u.Role = "superuser"

	if err := u.Validate(); err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
}

func TestSyntheticProfile(t *testing.T) {
	p := SyntheticProfile("u1", "dana@example.com")

	if p.Name != "dana" {
		t.Errorf("Name = %q, want email prefix %q", p.Name, "dana")
	}
	if p.Role != RoleUser {
		t.Errorf("Role = %q, want %q", p.Role, RoleUser)
	}
	if !p.IsActive {
		t.Error("synthetic profile should be active")
	}
}

func TestSyntheticProfile_NoAtSign(t *testing.T) {
	p := SyntheticProfile("u1", "not-an-email")
	if p.Name != "not-an-email" {
		t.Errorf("Name = %q, want full value when no @ present", p.Name)
	}
}

func TestActor_IsAdmin(t *testing.T) {
	if !(Actor{ID: "a", Role: RoleAdmin}).IsAdmin() {
		t.Error("admin actor should be admin")
	}
	if (Actor{ID: "u", Role: RoleUser}).IsAdmin() {
		t.Error("user actor should not be admin")
	}
}
