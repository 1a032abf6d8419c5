package bunq

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKeyPEM generates a fresh RSA key and returns it as PEM text together
// with the public half for verification.
func testKeyPEM(t *testing.T) (string, *rsa.PublicKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	block := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	return string(pem.EncodeToMemory(block)), &key.PublicKey
}

func TestNewSigner_AcceptsRawPEM(t *testing.T) {
	pemText, pub := testKeyPEM(t)

	sgn, err := newSigner(pemText)
	require.NoError(t, err)

	assertSignatureValid(t, sgn, pub, []byte(`{"secret":"key"}`))
}

func TestNewSigner_AcceptsEscapedNewlinePEM(t *testing.T) {
	pemText, pub := testKeyPEM(t)
	flattened := strings.ReplaceAll(pemText, "\n", `\n`)

	sgn, err := newSigner(flattened)
	require.NoError(t, err)

	assertSignatureValid(t, sgn, pub, []byte(`{"secret":"key"}`))
}

func TestNewSigner_AcceptsBase64PEM(t *testing.T) {
	pemText, pub := testKeyPEM(t)
	encoded := base64.StdEncoding.EncodeToString([]byte(pemText))

	sgn, err := newSigner(encoded)
	require.NoError(t, err)

	assertSignatureValid(t, sgn, pub, []byte(`{"secret":"key"}`))
}

func TestNewSigner_RejectsGarbage(t *testing.T) {
	_, err := newSigner("definitely not a key")
	assert.Error(t, err)

	_, err = newSigner("")
	assert.Error(t, err)

	// Valid base64 that does not decode to PEM.
	_, err = newSigner(base64.StdEncoding.EncodeToString([]byte("still not a key")))
	assert.Error(t, err)
}

func TestSign_CoversExactBodyBytes(t *testing.T) {
	pemText, pub := testKeyPEM(t)
	sgn, err := newSigner(pemText)
	require.NoError(t, err)

	body := []byte(`{"secret":"abc"}`)
	sig, err := sgn.Sign(body)
	require.NoError(t, err)

	// The same signature must not verify against a different body.
	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	otherDigest := sha256.Sum256([]byte(`{"secret":"abd"}`))
	assert.Error(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, otherDigest[:], raw))
}

func assertSignatureValid(t *testing.T, sgn *signer, pub *rsa.PublicKey, body []byte) {
	t.Helper()
	sig, err := sgn.Sign(body)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)

	digest := sha256.Sum256(body)
	assert.NoError(t, rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], raw))
}
