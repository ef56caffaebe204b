package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/warelabs/warelay/internal/twilio"
)

// signatureHeader carries the provider's webhook signature.
const signatureHeader = "X-Twilio-Signature"

// TwilioAuth verifies provider webhook signatures. Twilio signs the full
// public URL it called plus the sorted POST parameters; publicBaseURL is
// the scheme+host of that URL as configured in the Twilio console.
type TwilioAuth struct {
	validator     *twilio.RequestValidator
	publicBaseURL string
	logger        zerolog.Logger
}

// NewTwilioAuth creates a new signature verification middleware.
func NewTwilioAuth(validator *twilio.RequestValidator, publicBaseURL string, logger zerolog.Logger) *TwilioAuth {
	return &TwilioAuth{
		validator:     validator,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// RequireSignature middleware rejects requests whose X-Twilio-Signature
// does not match the reconstructed public URL and form parameters.
func (m *TwilioAuth) RequireSignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sig := r.Header.Get(signatureHeader)
		if sig == "" {
			m.reject(w, r, "missing signature header")
			return
		}

		if err := r.ParseForm(); err != nil {
			m.reject(w, r, "unparseable form payload")
			return
		}

		signedURL := m.publicBaseURL + r.URL.RequestURI()
		if !m.validator.Validate(signedURL, r.PostForm, sig) {
			m.reject(w, r, "signature mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *TwilioAuth) reject(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.Warn().
		Str("reason", reason).
		Str("remote_addr", RealIP(r)).
		Str("endpoint", r.URL.Path).
		Msg("webhook signature rejected")

	jsonError(w, http.StatusForbidden, "invalid signature")
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
