package cookie

import (
	"net/http"
	"time"
)

// removalAge is how far in the past the Expires attribute of a removal cookie is set.
const removalAge = 365 * 24 * time.Hour

// GetSessionID returns the session id carried by the request's session cookie.
// A missing, forged, corrupt or malformed cookie is treated as no session at all:
// a freshly generated id is returned with isNew set to true.
func (c *Codec) GetSessionID(r *http.Request) (isNew bool, id string) {
	for _, ck := range r.Cookies() {
		if ck.Name != c.opts.Name {
			continue
		}
		value, err := c.Decode(ck.Value)
		if err == nil && ValidID(value) {
			return false, value
		}
	}
	return true, GenerateID()
}

// SetCookie appends a Set-Cookie header carrying the encoded session id.
// It is a no-op when the codec is lazy and id is empty.
// On overflow nothing is written and an *OverflowError is returned.
func (c *Codec) SetCookie(w http.ResponseWriter, id string) error {
	if c.opts.Lazy && id == "" {
		return nil
	}

	value, err := c.Encode(id)
	if err != nil {
		return err
	}

	ck := c.newCookie(value)
	if c.opts.ExpiresIn > 0 {
		ck.Expires = c.now().Add(c.opts.ExpiresIn).UTC()
	}
	if c.opts.MaxAge > 0 {
		ck.MaxAge = max(1, int(c.opts.MaxAge/time.Second))
	}

	http.SetCookie(w, ck)
	return nil
}

// RemoveCookie appends a Set-Cookie header that makes the client drop the session cookie.
func (c *Codec) RemoveCookie(w http.ResponseWriter) {
	ck := c.newCookie("")
	ck.MaxAge = -1 // rendered as Max-Age=0
	ck.Expires = c.now().Add(-removalAge).UTC()
	http.SetCookie(w, ck)
}

func (c *Codec) newCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     c.opts.Name,
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Secure:   c.opts.Secure,
		HttpOnly: c.opts.HttpOnly,
		SameSite: c.opts.SameSite,
	}
}
