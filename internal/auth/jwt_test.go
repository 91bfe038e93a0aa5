package auth

import (
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("operator-key", RoleOperator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "operator-key" || claims.Role != RoleOperator || claims.Issuer != issuer {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
	if _, err := NewJWTManager("other", time.Hour).ParseToken(token); err == nil {
		t.Fatalf("expected parse error for foreign secret")
	}
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := manager.GenerateToken("admin-key", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := manager.ParseToken(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("user", RoleOperator); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_UnknownRole(t *testing.T) {
	if _, err := NewJWTManager("secret", 0).GenerateToken("user", "superuser"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestSatisfies(t *testing.T) {
	cases := map[string]struct {
		have, want string
		ok         bool
	}{
		"same role":         {have: RoleOperator, want: RoleOperator, ok: true},
		"admin as operator": {have: RoleAdmin, want: RoleOperator, ok: true},
		"operator as admin": {have: RoleOperator, want: RoleAdmin, ok: false},
		"empty role":        {have: "", want: RoleOperator, ok: false},
	}
	for name, tc := range cases {
		if got := Satisfies(tc.have, tc.want); got != tc.ok {
			t.Fatalf("%s: expected %v, got %v", name, tc.ok, got)
		}
	}
}
