// Package dpop issues and checks the proof-of-possession tokens the API
// expects in the DPoP request header: ES256-signed JWTs whose header embeds
// the public key and whose claims bind the token to one URL and method.
package dpop

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType is the typ header of a proof.
const TokenType = "dpop+jwt"

// Signer issues proofs with a key and client identifier generated once and
// reused for its whole lifetime. It is safe for concurrent use.
type Signer struct {
	key  *ecdsa.PrivateKey
	jwk  map[string]any
	kid  string
	uuid string
	now  func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithKey uses key instead of generating a fresh P-256 key.
func WithKey(key *ecdsa.PrivateKey) Option {
	return func(s *Signer) { s.key = key }
}

// WithClientID uses id as the uuid claim instead of a random one.
func WithClientID(id string) Option {
	return func(s *Signer) { s.uuid = id }
}

// WithClock overrides the issued-at clock.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) { s.now = now }
}

// NewSigner returns a Signer with a fresh P-256 key and client uuid unless
// options supply them.
func NewSigner(opts ...Option) (*Signer, error) {
	s := &Signer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.key == nil {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("dpop: generate key: %w", err)
		}
		s.key = key
	}
	if s.key.Curve != elliptic.P256() {
		return nil, errors.New("dpop: key must be on curve P-256")
	}
	if s.uuid == "" {
		s.uuid = uuid.NewString()
	}

	pub := jose.JSONWebKey{Key: &s.key.PublicKey}
	b, err := pub.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("dpop: marshal jwk: %w", err)
	}
	if err := json.Unmarshal(b, &s.jwk); err != nil {
		return nil, fmt.Errorf("dpop: decode jwk: %w", err)
	}
	tp, err := pub.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("dpop: jwk thumbprint: %w", err)
	}
	s.kid = base64.RawURLEncoding.EncodeToString(tp)
	return s, nil
}

// ClientID returns the uuid claim carried by every proof.
func (s *Signer) ClientID() string { return s.uuid }

// KeyID returns the RFC 7638 thumbprint of the public key.
func (s *Signer) KeyID() string { return s.kid }

// PublicKey returns the verification key.
func (s *Signer) PublicKey() *ecdsa.PublicKey { return &s.key.PublicKey }

// Claims is the payload of a proof.
type Claims struct {
	IssuedAt int64  `json:"iat"`
	ID       string `json:"jti"`
	URL      string `json:"htu"`
	Method   string `json:"htm"`
	UUID     string `json:"uuid"`

	// KeyID is the thumbprint of the signing key, set by Verify.
	KeyID string `json:"-"`
}

// Proof returns a freshly signed token bound to rawURL and method.
func (s *Signer) Proof(rawURL, method string) (string, error) {
	claims := jwt.MapClaims{
		"iat":  s.now().Unix(),
		"jti":  uuid.NewString(),
		"htu":  rawURL,
		"htm":  method,
		"uuid": s.uuid,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	tok.Header["typ"] = TokenType
	tok.Header["kid"] = s.kid
	jwk := make(map[string]any, len(s.jwk))
	for k, v := range s.jwk {
		jwk[k] = v
	}
	tok.Header["jwk"] = jwk

	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("dpop: sign: %w", err)
	}
	return signed, nil
}
