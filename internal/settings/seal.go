package settings

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	sealedPrefix = "v2:"
	keySize      = 32
	hkdfInfo     = "translation-tools settings secrets v2"
)

// ErrInvalidKeyFile is returned when the key file exists but does not hold a 32-byte key.
var ErrInvalidKeyFile = errors.New("settings key file is invalid")

// Sealer encrypts secret settings values with XChaCha20-Poly1305.
type Sealer struct {
	key []byte
}

// NewSealer derives the AEAD key from masterKey with HKDF-SHA256.
func NewSealer(masterKey []byte) (*Sealer, error) {
	if len(masterKey) != keySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyFile, len(masterKey), keySize)
	}

	derived := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, fmt.Errorf("derive settings key: %w", err)
	}
	return &Sealer{key: derived}, nil
}

// LoadOrCreateSealer reads the hex-encoded master key at path, creating a new
// random key (mode 0600) when the file does not exist yet.
func LoadOrCreateSealer(path string) (*Sealer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("settings key path is required")
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		key, decodeErr := hex.DecodeString(strings.TrimSpace(string(raw)))
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFile, decodeErr)
		}
		return NewSealer(key)
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read settings key %s: %w", path, err)
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate settings key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create settings key dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("write settings key %s: %w", path, err)
	}
	return NewSealer(key)
}

// Seal encrypts plaintext into "v2:" + base64(nonce || ciphertext). Empty input stays empty.
func (s *Sealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal. Values without the "v2:" prefix are treated as the
// legacy format and decoded with decodeLegacySecret; legacy reports that case
// so the caller can re-seal on the next save.
func (s *Sealer) Open(value string) (plaintext string, legacy bool, err error) {
	if value == "" {
		return "", false, nil
	}
	if !strings.HasPrefix(value, sealedPrefix) {
		plain, err := decodeLegacySecret(value)
		if err != nil {
			return "", true, err
		}
		return plain, true, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", false, fmt.Errorf("decode sealed secret: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", false, fmt.Errorf("init cipher: %w", err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return "", false, fmt.Errorf("sealed secret is truncated")
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", false, fmt.Errorf("open sealed secret: %w", err)
	}
	return string(plain), false, nil
}

// legacySecretSalt keys the obfuscation older settings files used.
//
// WEAK: the legacy transform is a repeating-key XOR under a fixed public key.
// It offers no confidentiality and exists only so existing files can be read.
const legacySecretSalt = "translation_tool"

func decodeLegacySecret(value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("decode legacy secret: %w", err)
	}
	plain := legacyXOR(raw)
	if !utf8.Valid(plain) {
		return "", fmt.Errorf("decode legacy secret: not valid utf-8")
	}
	return string(plain), nil
}

func legacyXOR(data []byte) []byte {
	key := sha256.Sum256([]byte(legacySecretSalt))
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%len(key)]
	}
	return out
}
