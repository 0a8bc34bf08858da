package dpop

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testURL = "https://api.example.com/items/get?id=m1"

func newTestSigner(t *testing.T, opts ...Option) *Signer {
	t.Helper()
	s, err := NewSigner(opts...)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func decodeSegment(t *testing.T, tok string, idx int) map[string]any {
	t.Helper()
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments", len(parts))
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[idx])
	if err != nil {
		t.Fatalf("decode segment: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal segment: %v", err)
	}
	return m
}

func TestProof_HeaderAndClaims(t *testing.T) {
	s := newTestSigner(t, WithClientID("client-1"))
	tok, err := s.Proof(testURL, "GET")
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}

	hdr := decodeSegment(t, tok, 0)
	if hdr["typ"] != TokenType || hdr["alg"] != "ES256" {
		t.Fatalf("unexpected header: %v", hdr)
	}
	jwk, ok := hdr["jwk"].(map[string]any)
	if !ok {
		t.Fatalf("jwk header missing: %v", hdr)
	}
	for _, k := range []string{"crv", "kty", "x", "y"} {
		if _, ok := jwk[k]; !ok {
			t.Fatalf("jwk missing %s: %v", k, jwk)
		}
	}
	if _, ok := jwk["d"]; ok {
		t.Fatal("jwk header must not carry the private key")
	}

	claims := decodeSegment(t, tok, 1)
	if claims["htu"] != testURL || claims["htm"] != "GET" || claims["uuid"] != "client-1" {
		t.Fatalf("unexpected claims: %v", claims)
	}
	if jti, _ := claims["jti"].(string); jti == "" {
		t.Fatal("missing jti")
	}
}

func TestProof_RoundTrip(t *testing.T) {
	s := newTestSigner(t)
	tok, err := s.Proof(testURL, "POST")
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	claims, err := Verify(tok, testURL, "POST", nil)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UUID != s.ClientID() {
		t.Fatalf("uuid = %q, want %q", claims.UUID, s.ClientID())
	}
	if claims.KeyID != s.KeyID() {
		t.Fatalf("kid = %q, want %q", claims.KeyID, s.KeyID())
	}
}

func TestProof_FreshPerRequestStableKey(t *testing.T) {
	s := newTestSigner(t)
	a, err := s.Proof(testURL, "GET")
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	b, err := s.Proof(testURL, "GET")
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	ca, cb := decodeSegment(t, a, 1), decodeSegment(t, b, 1)
	if ca["jti"] == cb["jti"] {
		t.Fatal("jti must differ between proofs")
	}
	if ca["uuid"] != cb["uuid"] {
		t.Fatal("uuid must stay constant for a signer")
	}
	ha, hb := decodeSegment(t, a, 0), decodeSegment(t, b, 0)
	if ha["kid"] != hb["kid"] || ha["kid"] != s.KeyID() {
		t.Fatal("key must stay constant for a signer")
	}
}

func TestVerify_Rejects(t *testing.T) {
	s := newTestSigner(t)
	good, err := s.Proof(testURL, "GET")
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}

	t.Run("url mismatch", func(t *testing.T) {
		if _, err := Verify(good, testURL+"&x=1", "GET", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("method mismatch", func(t *testing.T) {
		if _, err := Verify(good, testURL, "POST", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(good, ".")
		payload := decodeSegment(t, good, 1)
		payload["htm"] = "DELETE"
		b, _ := json.Marshal(payload)
		forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString(b) + "." + parts[2]
		if _, err := Verify(forged, testURL, "DELETE", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("empty", func(t *testing.T) {
		if _, err := Verify("", testURL, "GET", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("stale", func(t *testing.T) {
		cfg := &VerifyConfig{Leeway: time.Minute, Now: func() time.Time { return time.Now().Add(time.Hour) }}
		if _, err := Verify(good, testURL, "GET", cfg); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("wrong typ", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
			"iat": time.Now().Unix(), "jti": "x", "htu": testURL, "htm": "GET",
		})
		tok.Header["typ"] = "JWT"
		tok.Header["kid"] = s.kid
		tok.Header["jwk"] = s.jwk
		signed, err := tok.SignedString(s.key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := Verify(signed, testURL, "GET", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
	t.Run("key substitution", func(t *testing.T) {
		other := newTestSigner(t)
		tok := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
			"iat": time.Now().Unix(), "jti": "x", "htu": testURL, "htm": "GET",
		})
		tok.Header["typ"] = TokenType
		tok.Header["kid"] = other.kid
		tok.Header["jwk"] = other.jwk
		signed, err := tok.SignedString(s.key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := Verify(signed, testURL, "GET", nil); !errors.Is(err, ErrInvalidProof) {
			t.Fatalf("expected ErrInvalidProof, got %v", err)
		}
	})
}

func TestNewSigner_RejectsOtherCurves(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewSigner(WithKey(key)); err == nil {
		t.Fatal("expected error for P-384 key")
	}
}

func TestNewSigner_UsesSuppliedKey(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	s := newTestSigner(t, WithKey(key))
	if !s.PublicKey().Equal(&key.PublicKey) {
		t.Fatal("signer must use the supplied key")
	}
}
