package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-hs256"

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func newHS256Verifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(VerifierConfig{
		Algorithm: "HS256",
		SecretKey: testSecret,
	})
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}
	return v
}

func TestNewVerifierValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  VerifierConfig
		wantErr bool
	}{
		{
			name:    "HS256 with secret",
			config:  VerifierConfig{Algorithm: "HS256", SecretKey: "secret"},
			wantErr: false,
		},
		{
			name:    "HS256 without secret",
			config:  VerifierConfig{Algorithm: "HS256"},
			wantErr: true,
		},
		{
			name:    "RS256 without key",
			config:  VerifierConfig{Algorithm: "RS256"},
			wantErr: true,
		},
		{
			name:    "unsupported algorithm",
			config:  VerifierConfig{Algorithm: "ES256"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVerifier(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewVerifier() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerifyTokenHS256(t *testing.T) {
	v := newHS256Verifier(t)

	tokenString := signHS256(t, jwt.MapClaims{
		"sub":    "operator-1",
		"roles":  []string{RoleController},
		"scopes": []string{ScopeRead, ScopeControl, ScopeTelemetry},
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.VerifyToken(tokenString)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}

	if claims.Subject != "operator-1" {
		t.Errorf("Subject = %q, want operator-1", claims.Subject)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != RoleController {
		t.Errorf("Roles = %v, want [controller]", claims.Roles)
	}
	if len(claims.Scopes) != 3 {
		t.Errorf("Scopes = %v, want 3 scopes", claims.Scopes)
	}
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	v := newHS256Verifier(t)

	tokenString := signHS256(t, jwt.MapClaims{
		"sub":    "operator-1",
		"roles":  []string{RoleViewer},
		"scopes": []string{ScopeRead},
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	if _, err := v.VerifyToken(tokenString); err == nil {
		t.Error("VerifyToken() accepted an expired token")
	}
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	v := newHS256Verifier(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "operator-1",
		"roles":  []string{RoleViewer},
		"scopes": []string{ScopeRead},
	})
	signed, err := token.SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := v.VerifyToken(signed); err == nil {
		t.Error("VerifyToken() accepted a token signed with the wrong secret")
	}
}

func TestVerifyTokenRejectsMissingClaims(t *testing.T) {
	v := newHS256Verifier(t)

	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"missing sub", jwt.MapClaims{"roles": []string{RoleViewer}, "scopes": []string{ScopeRead}}},
		{"missing roles", jwt.MapClaims{"sub": "u", "scopes": []string{ScopeRead}}},
		{"missing scopes", jwt.MapClaims{"sub": "u", "roles": []string{RoleViewer}}},
		{"unknown role", jwt.MapClaims{"sub": "u", "roles": []string{"superuser"}, "scopes": []string{ScopeRead}}},
		{"unknown scope", jwt.MapClaims{"sub": "u", "roles": []string{RoleViewer}, "scopes": []string{"admin"}}},
		{"empty roles", jwt.MapClaims{"sub": "u", "roles": []string{}, "scopes": []string{ScopeRead}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.VerifyToken(signHS256(t, tt.claims)); err == nil {
				t.Error("VerifyToken() accepted invalid claims")
			}
		})
	}
}

func TestVerifyTokenEmpty(t *testing.T) {
	v := newHS256Verifier(t)
	if _, err := v.VerifyToken(""); err == nil {
		t.Error("VerifyToken() accepted an empty token")
	}
	if _, err := v.VerifyToken("   "); err == nil {
		t.Error("VerifyToken() accepted a whitespace token")
	}
}

func TestVerifyTokenRS256(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	v, err := NewVerifier(VerifierConfig{
		Algorithm:    "RS256",
		PublicKeyPEM: string(pubPEM),
	})
	if err != nil {
		t.Fatalf("NewVerifier() failed: %v", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"sub":    "operator-2",
		"roles":  []string{RoleViewer},
		"scopes": []string{ScopeRead, ScopeTelemetry},
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := v.VerifyToken(signed)
	if err != nil {
		t.Fatalf("VerifyToken() failed: %v", err)
	}
	if claims.Subject != "operator-2" {
		t.Errorf("Subject = %q, want operator-2", claims.Subject)
	}

	// An HS256 token must be rejected by an RS256 verifier.
	hsToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "operator-2",
		"roles":  []string{RoleViewer},
		"scopes": []string{ScopeRead},
	})
	hsSigned, err := hsToken.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if _, err := v.VerifyToken(hsSigned); err == nil {
		t.Error("RS256 verifier accepted an HS256 token")
	} else if !strings.Contains(err.Error(), "unexpected signing method") && !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("unexpected error: %v", err)
	}
}
