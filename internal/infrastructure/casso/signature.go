package casso

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// SignatureHeader carries the webhook signature
const SignatureHeader = "X-Casso-Signature"

// Scheme identifies the signature header format
type Scheme string

const (
	// SchemeSHA512 is "sha512=<hex>" over the canonical payload
	SchemeSHA512 Scheme = "sha512"
	// SchemeTimestamped is "t=<ts>,v1=<hex>" over "<ts>.<canonical payload>"
	SchemeTimestamped Scheme = "v1"
)

// Reasons a verification fails
const (
	ReasonSecretNotConfigured = "secret_not_configured"
	ReasonSignatureMissing    = "signature_missing"
	ReasonSignatureMalformed  = "signature_malformed"
	ReasonSignatureMismatch   = "signature_mismatch"
	ReasonPayloadUnsupported  = "payload_unsupported"
)

// Verification is the outcome of a signature check
type Verification struct {
	OK           bool
	Scheme       Scheme
	HasTimestamp bool
	// BaseLen is the length in bytes of the signed base, zero when none was built
	BaseLen int
	Reason  string
}

// Verifier checks X-Casso-Signature headers against a shared secret.
// It fails closed: without a secret nothing verifies.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks header against the decoded payload
func (v *Verifier) Verify(payload any, header string) Verification {
	if len(v.secret) == 0 {
		return Verification{Reason: ReasonSecretNotConfigured}
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return Verification{Reason: ReasonSignatureMissing}
	}

	canonical, err := Canonicalize(payload)
	if err != nil {
		return Verification{Reason: ReasonPayloadUnsupported}
	}

	var (
		result   Verification
		provided string
		base     []byte
	)
	if strings.HasPrefix(strings.ToLower(header), "sha512=") {
		result.Scheme = SchemeSHA512
		provided = strings.TrimSpace(header[len("sha512="):])
		base = canonical
	} else {
		result.Scheme = SchemeTimestamped
		parts := parseHeaderParts(header)
		ts, digest := parts["t"], parts["v1"]
		result.HasTimestamp = ts != ""
		if ts == "" || digest == "" {
			result.Reason = ReasonSignatureMalformed
			return result
		}
		provided = digest
		base = timestampedBase(ts, canonical)
	}
	result.BaseLen = len(base)

	if provided == "" {
		result.Reason = ReasonSignatureMalformed
		return result
	}

	expected := hexMAC(v.secret, base)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(provided))) {
		result.Reason = ReasonSignatureMismatch
		return result
	}
	result.OK = true
	return result
}

// SignSHA512 produces a "sha512=<hex>" header value for payload
func SignSHA512(payload any, secret string) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	return "sha512=" + hexMAC([]byte(secret), canonical), nil
}

// SignTimestamped produces a "t=<ts>,v1=<hex>" header value for payload
func SignTimestamped(payload any, secret, ts string) (string, error) {
	canonical, err := Canonicalize(payload)
	if err != nil {
		return "", err
	}
	return "t=" + ts + ",v1=" + hexMAC([]byte(secret), timestampedBase(ts, canonical)), nil
}

func timestampedBase(ts string, canonical []byte) []byte {
	base := make([]byte, 0, len(ts)+1+len(canonical))
	base = append(base, ts...)
	base = append(base, '.')
	return append(base, canonical...)
}

func hexMAC(secret, base []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(base)
	return hex.EncodeToString(mac.Sum(nil))
}

// parseHeaderParts splits "k1=v1,k2=v2". Segments without '=' are ignored.
func parseHeaderParts(header string) map[string]string {
	parts := make(map[string]string)
	for _, segment := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			continue
		}
		parts[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return parts
}
