// Package security validates request provenance for form submissions:
// same-origin checks against cross-site posting and best-effort client
// address resolution behind proxies.
package security

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/brightsites/leadflow/pkg/logging"
)

// trustedIPHeaders are consulted in priority order. A value that does not
// parse as an IP address falls through to the next header rather than being
// trusted.
var trustedIPHeaders = []string{
	"Cf-Connecting-Ip",
	"X-Vercel-Forwarded-For",
	"X-Forwarded-For",
	"X-Real-Ip",
}

// Validator performs origin and client-address validation.
type Validator struct {
	logger *logging.Logger
}

// NewValidator creates a request validator.
func NewValidator(logger *logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Validator{logger: logger}
}

// ValidateOrigin reports whether the request appears same-origin. It fails
// closed: when neither Origin nor Referer is present the request is
// rejected. Origin is preferred; Referer is the fallback. Hosts must match
// the Host header exactly.
func (v *Validator) ValidateOrigin(h http.Header, host string) bool {
	origin := h.Get("Origin")
	referer := h.Get("Referer")

	if origin == "" && referer == "" {
		v.logger.Warn("origin check failed: no origin or referer header", "host", host)
		return false
	}

	if origin != "" {
		if v.matchesHost(origin, host, "origin") {
			return true
		}
		return false
	}
	return v.matchesHost(referer, host, "referer")
}

func (v *Validator) matchesHost(headerValue, host, headerName string) bool {
	u, err := url.Parse(headerValue)
	if err != nil || u.Host == "" {
		v.logger.Warn("origin check failed: malformed url", "header", headerName)
		return false
	}
	if u.Host != host {
		v.logger.Warn("origin check failed: host mismatch", "header", headerName, "expected", host)
		return false
	}
	return true
}

// ClientIP resolves the originating client address from the trusted proxy
// header chain. Returns "unknown" when no header yields a valid address.
func (v *Validator) ClientIP(h http.Header) string {
	for _, header := range trustedIPHeaders {
		value := h.Get(header)
		if value == "" {
			continue
		}
		if ip := firstValidIP(value); ip != "" {
			return ip
		}
	}

	v.logger.Warn("could not determine client ip from trusted headers")
	return "unknown"
}

// firstValidIP extracts the first entry of a comma-separated proxy header
// and validates its shape. Malformed entries are rejected so a spoofed
// header cannot smuggle an arbitrary string into rate-limit keys.
func firstValidIP(headerValue string) string {
	first := headerValue
	if idx := strings.IndexByte(headerValue, ','); idx >= 0 {
		first = headerValue[:idx]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return ""
	}
	if net.ParseIP(first) == nil {
		return ""
	}
	return first
}
