package keygen

import (
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	kp, err := Generate()
	require.NoError(t, err)

	block, _ := pem.Decode(kp.Private)
	require.NotNil(t, block, "private key must be PEM")
	assert.Equal(t, "RSA PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	require.NoError(t, err)
	assert.Equal(t, DefaultBits, key.N.BitLen())

	assert.True(t, strings.HasPrefix(string(kp.Public), "ssh-rsa "))
}

func TestGenerateRSAKeyPair_InvalidBits(t *testing.T) {
	t.Parallel()

	for _, bits := range []int{0, -1} {
		_, err := GenerateRSAKeyPair(bits)
		assert.Error(t, err, "bits=%d", bits)
	}
}

func TestKeyPair_SignerMatchesPublic(t *testing.T) {
	t.Parallel()

	kp, err := GenerateRSAKeyPair(1024)
	require.NoError(t, err)

	signer, err := kp.Signer()
	require.NoError(t, err)

	pub, _, _, _, err := ssh.ParseAuthorizedKey(kp.Public)
	require.NoError(t, err)
	assert.Equal(t, pub.Marshal(), signer.PublicKey().Marshal())

	fp, err := kp.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, ssh.FingerprintSHA256(pub), fp)
	assert.True(t, strings.HasPrefix(fp, "SHA256:"))
}

func TestKeyPair_SignerEmpty(t *testing.T) {
	t.Parallel()

	_, err := (&KeyPair{}).Signer()
	assert.Error(t, err)

	var nilPair *KeyPair
	_, err = nilPair.Signer()
	assert.Error(t, err)
}

func TestKeyPair_FingerprintInvalid(t *testing.T) {
	t.Parallel()

	_, err := (&KeyPair{Public: []byte("not a key")}).Fingerprint()
	assert.Error(t, err)
}
