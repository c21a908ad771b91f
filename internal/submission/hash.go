package submission

import (
	"crypto/sha256"
	"encoding/hex"
)

// Salts keep the hashed identifier namespaces separate and resist rainbow
// table lookups. Raw emails and client addresses never leave this package
// unhashed in logs, metrics, or trace attributes.
const (
	addrHashSalt  = "contact_form_ip"
	emailHashSalt = "contact_form_email"
	spanHashSalt  = "contact_form_span"
)

func hashIdentifier(value, salt string) string {
	sum := sha256.Sum256([]byte(salt + ":" + value))
	return hex.EncodeToString(sum[:])
}

func hashEmail(value string) string {
	return hashIdentifier(value, emailHashSalt)
}

func hashClientAddr(value string) string {
	return hashIdentifier(value, addrHashSalt)
}

func hashSpanValue(value string) string {
	return hashIdentifier(value, spanHashSalt)
}

// idempotencyKey derives the deterministic token attached to CRM upserts.
// Identical (leadID, emailHash) inputs always yield the identical key, so a
// retried sync attempt is deduplicated server-side.
func idempotencyKey(leadID, emailHash string) string {
	return hashSpanValue(leadID + ":" + emailHash)
}
