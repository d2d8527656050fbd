package cookie

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyTooShort indicates the security key is shorter than MinKeyLength bytes.
	ErrKeyTooShort = errors.New("cookie: security key must be at least 32 bytes long")

	// ErrUnknownSecurity indicates an unsupported security mode.
	ErrUnknownSecurity = errors.New("cookie: unknown security mode")

	// ErrInvalidName indicates the cookie name is empty or contains characters
	// not allowed in a cookie name.
	ErrInvalidName = errors.New("cookie: invalid cookie name")

	// ErrInvalidFormat indicates the cookie value has unexpected format.
	ErrInvalidFormat = errors.New("cookie: invalid cookie format")

	// ErrInvalidSignature indicates signature verification failed,
	// suggesting tampering or corruption.
	ErrInvalidSignature = errors.New("cookie: signature verification failed")

	// ErrDecryptionFailed indicates the cookie value couldn't be decrypted.
	ErrDecryptionFailed = errors.New("cookie: failed to decrypt cookie value")

	// ErrOverflow is matched by every *OverflowError.
	ErrOverflow = errors.New("cookie: encoded value is too large")
)

// OverflowError reports an encoded cookie value larger than the allowed maximum.
type OverflowError struct {
	Name string
	Size int
	Max  int
}

// Error implements the error interface.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("cookie %q encoded value size %d exceeds maximum %d bytes", e.Name, e.Size, e.Max)
}

// Is reports whether target is ErrOverflow.
func (e *OverflowError) Is(target error) bool {
	return target == ErrOverflow
}
