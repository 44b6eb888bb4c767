// Package token signs and verifies the self-contained authentication tokens
// used by sessions. Signing is asymmetric: the private key issues, the
// public key verifies, so verification never needs the signing secret.
package token

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Result is the outcome of verifying a token. Verification fails closed:
// any signature mismatch, malformed token or structural error yields
// Valid=false. A token whose only defect is an elapsed TTL yields
// Expired=true with nil claims.
type Result struct {
	Valid   bool
	Expired bool
	Claims  jwt.MapClaims
}

// Codec issues and verifies RS256-signed tokens. It is stateless: a pure
// function of its key pair and input.
type Codec struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// NewCodec builds a Codec from PEM-encoded RSA keys.
func NewCodec(privatePEM, publicPEM []byte) (*Codec, error) {
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse private key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("token: parse public key: %w", err)
	}
	return &Codec{privateKey: priv, publicKey: pub}, nil
}

// Issue produces a signed token embedding claims plus an expiry ttl from
// now. The claims map is not mutated.
func (c *Codec) Issue(claims jwt.MapClaims, ttl time.Duration) (string, error) {
	merged := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		merged[k] = v
	}
	now := time.Now().UTC()
	merged["iat"] = now.Unix()
	merged["exp"] = now.Add(ttl).Unix()

	t := jwt.NewWithClaims(jwt.SigningMethodRS256, merged)
	signed, err := t.SignedString(c.privateKey)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry.
func (c *Codec) Verify(tokenString string) Result {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.publicKey, nil
	})
	if err != nil {
		// Expiry is only honoured as such when the signature itself held up.
		if errors.Is(err, jwt.ErrTokenExpired) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return Result{Expired: true}
		}
		return Result{}
	}
	if !parsed.Valid {
		return Result{}
	}
	return Result{Valid: true, Claims: claims}
}
