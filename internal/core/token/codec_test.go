package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func generateKeyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	return privPEM, pubPEM
}

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	priv, pub := generateKeyPair(t)
	c, err := NewCodec(priv, pub)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestCodec_IssueAndVerify(t *testing.T) {
	c := newTestCodec(t)

	signed, err := c.Issue(jwt.MapClaims{"profile_id": "p1", "role": "renter", "session": "s1"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	res := c.Verify(signed)
	if !res.Valid {
		t.Fatalf("expected valid token")
	}
	if res.Expired {
		t.Fatalf("token should not be expired")
	}
	if res.Claims["profile_id"] != "p1" || res.Claims["role"] != "renter" || res.Claims["session"] != "s1" {
		t.Fatalf("unexpected claims: %v", res.Claims)
	}
}

func TestCodec_Verify_Expired(t *testing.T) {
	c := newTestCodec(t)

	signed, err := c.Issue(jwt.MapClaims{"profile_id": "p1"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	res := c.Verify(signed)
	if res.Valid {
		t.Fatalf("expired token must not be valid")
	}
	if !res.Expired {
		t.Fatalf("expected Expired=true")
	}
	if res.Claims != nil {
		t.Fatalf("expired token must not expose claims")
	}
}

func TestCodec_Verify_Malformed(t *testing.T) {
	c := newTestCodec(t)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		res := c.Verify(tok)
		if res.Valid || res.Expired {
			t.Fatalf("malformed token %q must fail closed, got %+v", tok, res)
		}
	}
}

func TestCodec_Verify_WrongKey(t *testing.T) {
	issuer := newTestCodec(t)
	verifier := newTestCodec(t)

	signed, err := issuer.Issue(jwt.MapClaims{"profile_id": "p1"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	res := verifier.Verify(signed)
	if res.Valid {
		t.Fatalf("token signed with a different key must not verify")
	}
	if res.Expired {
		t.Fatalf("signature mismatch must not be reported as expiry")
	}
}

func TestCodec_Verify_WrongAlgorithm(t *testing.T) {
	c := newTestCodec(t)

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"profile_id": "p1"})
	signed, err := hs.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign HS256: %v", err)
	}

	if res := c.Verify(signed); res.Valid || res.Expired {
		t.Fatalf("HS256 token must be rejected, got %+v", res)
	}
}
