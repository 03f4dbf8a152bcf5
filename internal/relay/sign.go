package relay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signer computes event signatures over "<timestamp>.<body>" with
// HMAC-SHA256, matching what the receiving automation verifies.
type Signer struct {
	secret []byte
}

// NewSigner constructs a signer. An empty secret disables signing.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Enabled reports whether a signing secret is configured.
func (s *Signer) Enabled() bool {
	return len(s.secret) > 0
}

// Sign returns the hex HMAC-SHA256 of ts + "." + body.
func (s *Signer) Sign(ts string, body []byte) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(ts))
	mac.Write([]byte{'.'})
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature and compares in constant time, rejecting
// timestamps outside the replay tolerance.
func (s *Signer) Verify(ts string, body []byte, signature string, tolerance time.Duration, now time.Time) bool {
	parsed, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	drift := now.Unix() - parsed
	if drift < 0 {
		drift = -drift
	}
	if drift > int64(tolerance.Seconds()) {
		return false
	}
	return hmac.Equal([]byte(s.Sign(ts, body)), []byte(signature))
}
