package cookie

import "crypto/rand"

const (
	// IDLength is the number of characters in a session id.
	IDLength = 32

	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// Bytes at or above this bound are rejected to keep the alphabet draw uniform.
	maxUnbiased = 256 - 256%len(idAlphabet)
)

// GenerateID returns a new session id of IDLength alphanumeric characters
// drawn uniformly from a cryptographically secure source.
func GenerateID() string {
	id := make([]byte, 0, IDLength)
	buf := make([]byte, IDLength+IDLength/2)

	for len(id) < IDLength {
		if _, err := rand.Read(buf); err != nil {
			panic("cookie: crypto/rand failed: " + err.Error())
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			id = append(id, idAlphabet[int(b)%len(idAlphabet)])
			if len(id) == IDLength {
				break
			}
		}
	}

	return string(id)
}

// ValidID reports whether id has the shape of a generated session id.
func ValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return true
}
