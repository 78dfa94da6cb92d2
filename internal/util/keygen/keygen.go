package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA modulus size used for server keys.
const DefaultBits = 2048

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// Private is the RSA private key in PEM-encoded PKCS#1 format.
	Private []byte `json:"private"`
	// Public is the public key in OpenSSH authorized_keys format.
	Public []byte `json:"public"`
}

// Generate mints a key pair of DefaultBits.
func Generate() (*KeyPair, error) {
	return GenerateRSAKeyPair(DefaultBits)
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		Private: privateKeyPEM,
		Public:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// Signer parses the private half for use as an SSH auth method.
func (k *KeyPair) Signer() (ssh.Signer, error) {
	if k == nil || len(k.Private) == 0 {
		return nil, fmt.Errorf("key pair has no private key")
	}
	signer, err := ssh.ParsePrivateKey(k.Private)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return signer, nil
}

// Fingerprint returns the SHA256 fingerprint of the public half, the same
// string Hetzner Cloud shows for a registered key.
func (k *KeyPair) Fingerprint() (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(k.Public)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(pub), nil
}
