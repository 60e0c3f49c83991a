package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalizeBaseURLRewritesLegacyPort covers the legacy default port
// rewrite and trailing-slash cleanup.
func TestNormalizeBaseURLRewritesLegacyPort(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", NormalizeBaseURL("http://localhost:8080"))
	assert.Equal(t, "http://localhost:3000", NormalizeBaseURL("http://localhost:8080/"))
	assert.Equal(t, "https://qr.example.com:3000", NormalizeBaseURL("https://qr.example.com:8080"))

	// non-legacy ports and plain origins pass through
	assert.Equal(t, "http://localhost:9000", NormalizeBaseURL("http://localhost:9000"))
	assert.Equal(t, "https://qr.example.com", NormalizeBaseURL("https://qr.example.com/"))
	assert.Equal(t, "https://qr.example.com", NormalizeBaseURL("  https://qr.example.com  "))
}
