package auth

import (
	"strings"
	"testing"
)

var testSecret = []byte("unit-test-secret")

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("68b7f2c1a1b2c3d4e5f60718", "admin", testSecret)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.UserID != "68b7f2c1a1b2c3d4e5f60718" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.Kind != TokenKindAccess {
		t.Errorf("Kind = %q, 期望 access", claims.Kind)
	}
}

func TestRefreshTokenKind(t *testing.T) {
	token, err := GenerateRefreshToken("68b7f2c1a1b2c3d4e5f60718", false, testSecret)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if claims.Kind != TokenKindRefresh {
		t.Errorf("Kind = %q, 期望 refresh", claims.Kind)
	}
	if claims.Role != "" {
		t.Errorf("刷新令牌不应携带角色, got %q", claims.Role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("68b7f2c1a1b2c3d4e5f60718", "user", testSecret)
	if err != nil {
		t.Fatalf("签发失败: %v", err)
	}

	if _, err := ParseToken(token, []byte("another-secret")); err == nil {
		t.Error("期望用错误密钥解析失败")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseToken("not.a.token", testSecret); err == nil {
		t.Error("期望解析失败")
	}
}

func TestEmptySecretRejected(t *testing.T) {
	if _, err := GenerateToken("id", "user", nil); err == nil || !strings.Contains(err.Error(), "Secret") {
		t.Errorf("期望密钥为空的错误, got %v", err)
	}
	if _, err := ParseToken("whatever", nil); err == nil {
		t.Error("期望密钥为空的错误")
	}
}
