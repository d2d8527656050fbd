// Package cookie issues and verifies the session cookie of a server-side session.
//
// The cookie carries nothing but an opaque 32-character session id. A Codec
// protects that id in one of two modes chosen at construction:
//
//   - Signed: the id stays readable and carries an HMAC-SHA256 tag.
//   - Private: the id is encrypted and authenticated with AES-256-GCM.
//
// Both keys are derived from a single security key of at least 32 bytes with
// HKDF-SHA256. The cookie name is bound into the tag, so a value issued for one
// cookie name is rejected under another.
//
// # Usage
//
//	codec, err := cookie.New(secret, cookie.Private,
//		cookie.WithName("sid"),
//		cookie.WithSecure(true),
//		cookie.WithSameSite(http.SameSiteLaxMode),
//	)
//	if err != nil {
//		log.Fatal(err) // key shorter than 32 bytes
//	}
//
//	isNew, id := codec.GetSessionID(r) // never fails, forged cookies yield a fresh id
//	if err := codec.SetCookie(w, id); errors.Is(err, cookie.ErrOverflow) {
//		// encoded value larger than MaxValueSize, nothing was written
//	}
//	codec.RemoveCookie(w) // Max-Age=0 and an Expires date in the past
//
// # Configuration
//
// Config is loaded from SESSION_SECRET_KEY and SESSION_COOKIE_* variables and
// turned into a Codec with NewFromConfig.
package cookie
