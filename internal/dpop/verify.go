package dpop

import (
	"crypto"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	keyfunc "github.com/MicahParks/keyfunc/v3"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidProof indicates that a token failed verification.
var ErrInvalidProof = errors.New("dpop: invalid proof")

// VerifyConfig controls proof verification.
type VerifyConfig struct {
	// Leeway bounds how far iat may sit from the verifier's clock.
	Leeway time.Duration
	Now    func() time.Time
}

// DefaultVerifyConfig returns a VerifyConfig with a one minute leeway.
func DefaultVerifyConfig() *VerifyConfig {
	return &VerifyConfig{Leeway: 60 * time.Second, Now: time.Now}
}

// Verify checks the signature of tok against the key embedded in its header
// and that the proof is bound to rawURL and method. It returns the claims of
// a valid proof.
func Verify(tok, rawURL, method string, cfg *VerifyConfig) (*Claims, error) {
	if tok == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidProof)
	}
	if cfg == nil {
		cfg = DefaultVerifyConfig()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
		jwt.WithLeeway(cfg.Leeway),
		jwt.WithTimeFunc(cfg.Now),
	)
	parsed, err := parser.Parse(tok, embeddedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: token parse/verify failed: %v", ErrInvalidProof, err)
	}

	if typ, _ := parsed.Header["typ"].(string); typ != TokenType {
		return nil, fmt.Errorf("%w: invalid typ; want %s", ErrInvalidProof, TokenType)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("dpop: invalid claims type")
	}
	b, err := json.Marshal(mc)
	if err != nil {
		return nil, fmt.Errorf("dpop: marshal claims: %w", err)
	}
	var claims Claims
	if err := json.Unmarshal(b, &claims); err != nil {
		return nil, fmt.Errorf("%w: malformed claims: %v", ErrInvalidProof, err)
	}
	claims.KeyID, _ = parsed.Header["kid"].(string)

	if claims.URL != rawURL {
		return nil, fmt.Errorf("%w: htu mismatch", ErrInvalidProof)
	}
	if claims.Method != method {
		return nil, fmt.Errorf("%w: htm mismatch", ErrInvalidProof)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidProof)
	}
	iat := time.Unix(claims.IssuedAt, 0)
	now := cfg.Now()
	if iat.After(now.Add(cfg.Leeway)) || iat.Before(now.Add(-cfg.Leeway)) {
		return nil, fmt.Errorf("%w: iat outside leeway", ErrInvalidProof)
	}
	return &claims, nil
}

// embeddedKey resolves the verification key from the jwk header. The JWK is
// loaded into a single-key set under its thumbprint so keyfunc can enforce
// the kid, alg and use bindings.
func embeddedKey(t *jwt.Token) (any, error) {
	rawJWK, ok := t.Header["jwk"]
	if !ok {
		return nil, errors.New("missing jwk header")
	}
	b, err := json.Marshal(rawJWK)
	if err != nil {
		return nil, fmt.Errorf("jwk header: %w", err)
	}
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON(b); err != nil {
		return nil, fmt.Errorf("jwk header: %w", err)
	}
	if !jwk.IsPublic() {
		return nil, errors.New("jwk header must hold a public key")
	}
	if _, ok := jwk.Key.(*ecdsa.PublicKey); !ok {
		return nil, fmt.Errorf("jwk header holds %T, want EC key", jwk.Key)
	}
	tp, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("jwk thumbprint: %w", err)
	}
	jwk.KeyID = base64.RawURLEncoding.EncodeToString(tp)
	jwk.Algorithm = jwt.SigningMethodES256.Alg()
	jwk.Use = "sig"

	set, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{jwk}})
	if err != nil {
		return nil, fmt.Errorf("jwk set: %w", err)
	}
	kf, err := keyfunc.NewJWKSetJSON(set)
	if err != nil {
		return nil, fmt.Errorf("jwk set: %w", err)
	}
	return kf.Keyfunc(t)
}
