package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bookmycut/booking-server-go/internal/httputil"
	"github.com/bookmycut/booking-server-go/internal/util"
)

const signatureHeader = "X-Hub-Signature-256"

// SignatureMiddleware verifies the HMAC-SHA256 signature the channel attaches
// to webhook deliveries.
type SignatureMiddleware struct {
	secret string
}

func NewSignatureMiddleware(secret string) *SignatureMiddleware {
	return &SignatureMiddleware{secret: secret}
}

func (m *SignatureMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			log.Warn().Msg("webhook signature verification bypassed: WHATSAPP_APP_SECRET is not configured")
			next.ServeHTTP(w, r)
			return
		}

		signature := strings.TrimPrefix(r.Header.Get(signatureHeader), "sha256=")
		if signature == "" {
			log.Warn().Msg("webhook signature middleware: missing signature header")
			httputil.WriteError(w, http.StatusUnauthorized, "Missing signature")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error().Err(err).Msg("webhook signature middleware: failed to read body")
			httputil.WriteError(w, http.StatusInternalServerError, "Failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		computed := util.HmacSHA256(m.secret, body)
		if !util.ConstantTimeEqual(computed, signature) {
			log.Warn().Msg("webhook signature middleware: invalid signature")
			httputil.WriteError(w, http.StatusUnauthorized, "Invalid signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}
