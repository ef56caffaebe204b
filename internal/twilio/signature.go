package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/url"
	"sort"
)

// RequestValidator checks X-Twilio-Signature headers on provider webhooks.
// Twilio signs the full public URL with every POST parameter name and
// value appended in alphabetical key order, HMAC-SHA1 keyed by the
// account's auth token, base64 encoded.
type RequestValidator struct {
	authToken string
}

// NewRequestValidator creates a validator for the account's auth token.
func NewRequestValidator(authToken string) *RequestValidator {
	return &RequestValidator{authToken: authToken}
}

// Signature computes the expected signature for a request URL and its
// POST form parameters.
func (v *RequestValidator) Signature(rawURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(rawURL))
	for _, k := range keys {
		for _, val := range params[k] {
			mac.Write([]byte(k))
			mac.Write([]byte(val))
		}
	}

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate reports whether the header signature matches the request.
func (v *RequestValidator) Validate(rawURL string, params url.Values, signature string) bool {
	expected := v.Signature(rawURL, params)
	return hmac.Equal([]byte(expected), []byte(signature))
}
