package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ivLength matches the envelope layout the dashboard has always written:
// a 16-byte IV with a 16-byte GCM tag, all hex encoded.
const ivLength = 16

var ErrNoSecret = errors.New("vault: session secret not set")

// Vault encrypts and decrypts the browser auth-state snapshot so it can be
// persisted and replayed headlessly later. The key is derived from a single
// configured secret; no key material is stored next to the ciphertext.
type Vault struct {
	key []byte
}

// envelope is the persisted ciphertext format.
type envelope struct {
	IV   string `json:"iv"`
	Data string `json:"data"`
	Tag  string `json:"tag"`
}

func New(secret string) (*Vault, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	sum := sha256.Sum256([]byte(secret))
	return &Vault{key: sum[:]}, nil
}

// Encrypt seals the blob and returns a self-contained JSON envelope carrying
// its own IV and authentication tag.
func (v *Vault) Encrypt(blob []byte) (string, error) {
	gcm, err := v.cipher()
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("vault: generate iv: %w", err)
	}

	// Seal appends the tag to the ciphertext; split it back out so the
	// envelope stays compatible with previously written records.
	sealed := gcm.Seal(nil, iv, blob, nil)
	tagStart := len(sealed) - gcm.Overhead()

	env := envelope{
		IV:   hex.EncodeToString(iv),
		Data: hex.EncodeToString(sealed[:tagStart]),
		Tag:  hex.EncodeToString(sealed[tagStart:]),
	}

	out, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("vault: marshal envelope: %w", err)
	}
	return string(out), nil
}

// Decrypt opens an envelope produced by Encrypt. It fails closed: a wrong
// key, flipped byte or truncated envelope returns an error, never partial
// plaintext. Callers treat any error as "credentials must be recaptured".
func (v *Vault) Decrypt(envelopeStr string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal([]byte(envelopeStr), &env); err != nil {
		return nil, fmt.Errorf("vault: parse envelope: %w", err)
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil {
		return nil, fmt.Errorf("vault: decode iv: %w", err)
	}
	data, err := hex.DecodeString(env.Data)
	if err != nil {
		return nil, fmt.Errorf("vault: decode data: %w", err)
	}
	tag, err := hex.DecodeString(env.Tag)
	if err != nil {
		return nil, fmt.Errorf("vault: decode tag: %w", err)
	}

	gcm, err := v.cipher()
	if err != nil {
		return nil, err
	}
	if len(iv) != ivLength {
		return nil, fmt.Errorf("vault: unexpected iv length %d", len(iv))
	}

	plain, err := gcm.Open(nil, iv, append(data, tag...), nil)
	if err != nil {
		return nil, fmt.Errorf("vault: decrypt failed: %w", err)
	}
	return plain, nil
}

func (v *Vault) cipher() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}
	return gcm, nil
}
