package utils

import (
	"testing"

	"github.com/getlims/limsgo/internal/models"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("password stored in plain text")
	}
	if !CheckPasswordHash("hunter2hunter2", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("wrong password accepted")
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	user := &models.User{
		ID:       42,
		Username: "labadmin",
		Email:    "labadmin@example.com",
		Role:     models.RoleStaff,
	}

	access, refresh, err := GenerateTokens(user, "test-secret")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("empty token returned")
	}

	claims, err := ValidateToken(access, "test-secret")
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims["username"] != "labadmin" {
		t.Errorf("username claim = %v", claims["username"])
	}
	if claims["role"] != models.RoleStaff {
		t.Errorf("role claim = %v", claims["role"])
	}
	if id, ok := claims["id"].(float64); !ok || uint(id) != 42 {
		t.Errorf("id claim = %v", claims["id"])
	}

	if _, err := ValidateToken(access, "other-secret"); err == nil {
		t.Error("token validated with wrong secret")
	}
}
