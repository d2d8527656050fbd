package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	// MinKeyLength is the minimum length of the security key in bytes.
	MinKeyLength = 32
	// MaxValueSize is the maximum size of an encoded cookie value in bytes.
	MaxValueSize = 4064

	signingInfo    = "serversession cookie signing"
	encryptionInfo = "serversession cookie encryption"
)

// Strict decoding rejects non-zero padding bits, so every altered character is detected.
var encoding = base64.RawURLEncoding.Strict()

// Security selects how the cookie value is protected.
type Security int

const (
	// Signed values carry an HMAC-SHA256 tag and stay readable by the client.
	Signed Security = iota
	// Private values are encrypted and authenticated with AES-256-GCM.
	Private
)

// String returns the config name of the security mode.
func (s Security) String() string {
	switch s {
	case Signed:
		return "signed"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("security(%d)", int(s))
	}
}

// ParseSecurity parses "signed" or "private" (case-insensitive).
func ParseSecurity(s string) (Security, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signed", "":
		return Signed, nil
	case "private":
		return Private, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSecurity, s)
	}
}

// Codec signs or encrypts the session id carried in the session cookie and
// builds the Set-Cookie headers that issue and clear it.
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	security Security
	signKey  []byte
	aead     cipher.AEAD
	opts     Options
	now      func() time.Time
}

// New creates a codec for the given security key and mode.
// Signing and encryption keys are derived from key with HKDF-SHA256,
// so the same key material is never used for both purposes.
func New(key []byte, security Security, opts ...Option) (*Codec, error) {
	if len(key) < MinKeyLength {
		return nil, fmt.Errorf("%w: got %d bytes", ErrKeyTooShort, len(key))
	}
	if security != Signed && security != Private {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSecurity, security)
	}

	o := applyOptions(defaultOptions(), opts)
	if o.Name == "" || (&http.Cookie{Name: o.Name}).Valid() != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, o.Name)
	}
	if o.Path == "" {
		o.Path = "/"
	}

	signKey, err := deriveKey(key, signingInfo)
	if err != nil {
		return nil, err
	}
	encKey, err := deriveKey(key, encryptionInfo)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Codec{
		security: security,
		signKey:  signKey,
		aead:     gcm,
		opts:     o,
		now:      time.Now,
	}, nil
}

// MustNew is like New but panics on error. Use it at startup, where a bad key is fatal.
func MustNew(key []byte, security Security, opts ...Option) *Codec {
	c, err := New(key, security, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the session cookie name.
func (c *Codec) Name() string {
	return c.opts.Name
}

// Security returns the codec's security mode.
func (c *Codec) Security() Security {
	return c.security
}

// Encode protects value according to the codec's security mode.
// Returns *OverflowError when the result exceeds MaxValueSize.
func (c *Codec) Encode(value string) (string, error) {
	var encoded string
	switch c.security {
	case Private:
		var err error
		if encoded, err = c.encrypt(value); err != nil {
			return "", err
		}
	default:
		encoded = c.sign(value)
	}

	if len(encoded) > MaxValueSize {
		return "", &OverflowError{Name: c.opts.Name, Size: len(encoded), Max: MaxValueSize}
	}
	return encoded, nil
}

// Decode verifies, and in Private mode decrypts, an encoded value.
func (c *Codec) Decode(encoded string) (string, error) {
	if c.security == Private {
		return c.decrypt(encoded)
	}
	return c.verify(encoded)
}

// mac binds the cookie name into the tag so values cannot be moved between cookies.
func (c *Codec) mac(value []byte) []byte {
	h := hmac.New(sha256.New, c.signKey)
	h.Write([]byte(c.opts.Name))
	h.Write([]byte{'='})
	h.Write(value)
	return h.Sum(nil)
}

func (c *Codec) sign(value string) string {
	return encoding.EncodeToString([]byte(value)) + "|" + encoding.EncodeToString(c.mac([]byte(value)))
}

func (c *Codec) verify(signed string) (string, error) {
	encodedValue, encodedSig, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := encoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := encoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	if !hmac.Equal(sig, c.mac(value)) {
		return "", ErrInvalidSignature
	}
	return string(value), nil
}

func (c *Codec) encrypt(value string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(value), []byte(c.opts.Name))
	return encoding.EncodeToString(sealed), nil
}

func (c *Codec) decrypt(encrypted string) (string, error) {
	data, err := encoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrInvalidFormat
	}
	if len(data) < c.aead.NonceSize() {
		return "", ErrInvalidFormat
	}

	nonce, ciphertext := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, []byte(c.opts.Name))
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("cookie: derive key: %w", err)
	}
	return key, nil
}
