package bunq

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
)

// signer signs request bodies with the configured RSA private key, as
// required for the session-establishing call.
type signer struct {
	key *rsa.PrivateKey
}

// newSigner parses the configured private key. The key may arrive as raw
// PEM, as PEM with literal "\n" escapes (common when stored in a single-line
// environment variable), or as base64-encoded PEM. The escaped-newline form
// is detected before assuming base64.
func newSigner(privateKey string) (*signer, error) {
	pemText, err := normalizePrivateKeyPEM(privateKey)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode([]byte(pemText))
	if block == nil {
		return nil, fmt.Errorf("failed to decode private key PEM block")
	}

	key, err := parseRSAPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &signer{key: key}, nil
}

// Sign returns the base64-encoded SHA-256 PKCS#1 v1.5 signature over the
// exact body bytes.
func (s *signer) Sign(body []byte) (string, error) {
	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.key, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("failed to sign request body: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// normalizePrivateKeyPEM turns any of the three accepted key formats into
// proper PEM text.
func normalizePrivateKeyPEM(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("private key is empty")
	}

	// Already proper PEM.
	if strings.HasPrefix(trimmed, "-----BEGIN") && strings.Contains(trimmed, "\n") {
		return trimmed, nil
	}

	// PEM flattened with literal backslash-n sequences. Checked before the
	// base64 form: a flattened PEM still contains its header.
	if strings.Contains(trimmed, `\n`) {
		return strings.ReplaceAll(trimmed, `\n`, "\n"), nil
	}

	// Base64-encoded PEM.
	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Errorf("private key is neither PEM nor base64-encoded PEM: %w", err)
	}
	text := strings.TrimSpace(string(decoded))
	if !strings.HasPrefix(text, "-----BEGIN") {
		return "", fmt.Errorf("base64-decoded private key is not PEM")
	}
	return text, nil
}

// parseRSAPrivateKey accepts both PKCS#1 and PKCS#8 encodings.
func parseRSAPrivateKey(der []byte) (*rsa.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not an RSA key")
	}
	return key, nil
}
