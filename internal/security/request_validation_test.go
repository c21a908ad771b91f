package security

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brightsites/leadflow/pkg/logging"
)

func TestValidateOrigin_SameHost(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Origin", "https://example.com")
	h.Set("Referer", "https://example.com/contact")

	assert.True(t, v.ValidateOrigin(h, "example.com"))
}

func TestValidateOrigin_FailsClosedWhenHeadersAbsent(t *testing.T) {
	v := NewValidator(logging.Default())

	assert.False(t, v.ValidateOrigin(http.Header{}, "example.com"))
}

func TestValidateOrigin_RefererFallback(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Referer", "https://example.com/contact")

	assert.True(t, v.ValidateOrigin(h, "example.com"))
}

func TestValidateOrigin_HostMismatch(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Origin", "https://attacker.example.net")

	assert.False(t, v.ValidateOrigin(h, "example.com"))
}

func TestValidateOrigin_SubdomainAttackRejected(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Origin", "https://example.com.attacker.net")

	assert.False(t, v.ValidateOrigin(h, "example.com"))
}

func TestValidateOrigin_MalformedURL(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Origin", "not a url")

	assert.False(t, v.ValidateOrigin(h, "example.com"))
}

func TestClientIP_PrefersFirstTrustedHeader(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Cf-Connecting-Ip", "203.0.113.7")
	h.Set("X-Forwarded-For", "198.51.100.1")

	assert.Equal(t, "203.0.113.7", v.ClientIP(h))
}

func TestClientIP_FallsBackWhenPrimaryInvalid(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("Cf-Connecting-Ip", "definitely-not-an-ip")
	h.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")

	assert.Equal(t, "198.51.100.1", v.ClientIP(h))
}

func TestClientIP_TakesFirstEntryOfChain(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("X-Forwarded-For", "2001:db8::1, 10.0.0.1")

	assert.Equal(t, "2001:db8::1", v.ClientIP(h))
}

func TestClientIP_UnknownWhenNothingValid(t *testing.T) {
	v := NewValidator(logging.Default())

	h := http.Header{}
	h.Set("X-Real-Ip", "<script>")

	assert.Equal(t, "unknown", v.ClientIP(h))
}
