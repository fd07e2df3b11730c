package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// DefaultTolerance bounds how old a signed webhook payload may be.
const DefaultTolerance = 5 * time.Minute

var (
	// ErrInvalidSignature is returned when the header is malformed or no
	// candidate signature matches the payload.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrSignatureExpired is returned when the signed timestamp is
	// outside the tolerance window.
	ErrSignatureExpired = errors.New("webhook signature timestamp expired")
)

// VerifySignature checks the provider signature header against the RAW
// request body. The header format is "t=<unix>,v1=<hex hmac>"; the HMAC
// covers "<unix>.<body>". The body must not be reserialized before the
// check, a round-trip through a JSON decoder breaks the signature.
func VerifySignature(body []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var timestamp int64
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			candidates = append(candidates, v)
		}
	}
	if timestamp == 0 || len(candidates) == 0 {
		return ErrInvalidSignature
	}
	if now.Sub(time.Unix(timestamp, 0)) > tolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, candidate := range candidates {
		if hmac.Equal([]byte(expected), []byte(candidate)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Sign produces a signature header for the given body, used by tests
// and local tooling.
func Sign(body []byte, secret string, now time.Time) string {
	ts := strconv.FormatInt(now.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	return "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))
}
