package config

import (
	"strings"
	"time"

	"github.com/qrshare/qrshare-go/common/env"
)

const (
	// APIPrefix is the versioned path prefix shared by every backend endpoint.
	APIPrefix = "/api/v1"

	// legacyDefaultPort is the port the backend listened on before the
	// service moved; configs in the wild still carry it.
	legacyDefaultPort = ":8080"
	// servicePort is the current backend port.
	servicePort = ":3000"
)

var (
	// DebugEnabled toggles verbose structured logging when QRSHARE_DEBUG=true.
	DebugEnabled = env.Bool("QRSHARE_DEBUG", false)

	// BaseURL is the backend origin all requests are issued against.
	BaseURL = NormalizeBaseURL(env.String("QRSHARE_BASE_URL", "http://localhost"+servicePort))

	// RequestTimeout bounds a single request attempt before it is aborted
	// and classified as a timeout.
	RequestTimeout = env.Duration("QRSHARE_REQUEST_TIMEOUT", 7*time.Second)

	// MaxRetries is the default resubmission budget for one logical request.
	MaxRetries = env.Int("QRSHARE_MAX_RETRIES", 3)

	// RetryBaseDelay is the unit delay between retry attempts: fixed for
	// 5xx/network failures, multiplied by the attempt number for 429.
	RetryBaseDelay = env.Duration("QRSHARE_RETRY_BASE_DELAY", 500*time.Millisecond)

	// RateLimitRPS throttles outbound requests when greater than zero.
	RateLimitRPS = env.Float64("QRSHARE_RATE_LIMIT_RPS", 0)

	// CredentialDBPath locates the local credential database file.
	CredentialDBPath = env.String("QRSHARE_CREDENTIAL_DB", "qrshare-credentials.db")

	// MaxResponseBodyBytes caps how much of a response body is read.
	MaxResponseBodyBytes = int64(env.Int("QRSHARE_MAX_RESPONSE_BODY_BYTES", 10*1024*1024))
)

// NormalizeBaseURL trims a trailing slash and rewrites the legacy default
// port to the current service port.
func NormalizeBaseURL(raw string) string {
	normalized := strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if strings.HasSuffix(normalized, legacyDefaultPort) {
		normalized = strings.TrimSuffix(normalized, legacyDefaultPort) + servicePort
	}
	return normalized
}
