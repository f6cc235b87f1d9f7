package registrar

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// Signer produces the request signatures the registrar's auth endpoint
// demands: RSA/SHA-512 over the exact serialized request body, base64-encoded.
type Signer struct {
	key *rsa.PrivateKey
}

// NewSigner parses a PEM-encoded RSA private key (PKCS#1 or PKCS#8).
func NewSigner(pemKey string) (*Signer, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in registrar private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &Signer{key: key}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse registrar private key: %w", err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("registrar private key is not RSA")
	}
	return &Signer{key: key}, nil
}

// Sign returns the base64 signature over body. The body bytes must be sent to
// the registrar unmodified, or verification fails on their side.
func (s *Signer) Sign(body []byte) (string, error) {
	digest := sha512.Sum512(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA512, digest[:])
	if err != nil {
		return "", fmt.Errorf("sign request body: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}
