package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashIdentifier_SaltSeparatesNamespaces(t *testing.T) {
	email := hashEmail("user@example.com")
	addr := hashClientAddr("user@example.com")

	assert.NotEqual(t, email, addr)
	assert.Len(t, email, 64)
	assert.Len(t, addr, 64)
}

func TestHashIdentifier_Deterministic(t *testing.T) {
	assert.Equal(t, hashEmail("user@example.com"), hashEmail("user@example.com"))
	assert.NotEqual(t, hashEmail("user@example.com"), hashEmail("other@example.com"))
}

func TestIdempotencyKey_StableForSameLead(t *testing.T) {
	emailHash := hashEmail("user@example.com")

	first := idempotencyKey("lead-1", emailHash)
	again := idempotencyKey("lead-1", emailHash)
	other := idempotencyKey("lead-2", emailHash)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}
