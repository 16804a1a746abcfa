// Package webhook handles meeting-transcript intake: Fireflies deliveries,
// transcript retrieval, duplicate suppression and the n8n relay.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Fireflies-Signature"

// ErrBadSignature is returned when a delivery cannot be authenticated.
var ErrBadSignature = errors.New("webhook: invalid signature")

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks signature against the raw body. With an empty
// secret verification is disabled; with a secret, a missing signature fails.
func VerifySignature(body []byte, signature, secret string) error {
	if secret == "" {
		return nil
	}
	sig := strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	got, err := hex.DecodeString(sig)
	if err != nil || len(got) != sha256.Size {
		return ErrBadSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return ErrBadSignature
	}
	return nil
}
