package hubspot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightsites/leadflow/pkg/logging"
)

func noSleep() SyncerOption {
	return withSleep(func(time.Duration) {})
}

func TestRetryUpsert_SucceedsFirstAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts/search" {
			w.Write([]byte(`{"total":0,"results":[]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"hs-1"}`))
	}))
	defer srv.Close()

	syncer := NewSyncer(NewClient(srv.URL, StaticToken("tok"), logging.Default()), logging.Default(), noSleep())
	result := syncer.RetryUpsert(context.Background(), map[string]string{"email": "a@example.com"}, "idem", "hash")

	require.NoError(t, result.Err)
	require.NotNil(t, result.Contact)
	assert.Equal(t, "hs-1", result.Contact.ID)
	assert.Equal(t, 1, result.Attempts)
}

func TestRetryUpsert_RecoversAfterTransientFailures(t *testing.T) {
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts/search" {
			// Fail the first two attempts at the search step.
			if calls.Add(1) <= 2 {
				http.Error(w, "flaky", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"total":0,"results":[]}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"hs-2"}`))
	}))
	defer srv.Close()

	syncer := NewSyncer(NewClient(srv.URL, StaticToken("tok"), logging.Default()), logging.Default(), noSleep())
	result := syncer.RetryUpsert(context.Background(), map[string]string{"email": "a@example.com"}, "idem", "hash")

	require.NoError(t, result.Err)
	require.NotNil(t, result.Contact)
	assert.Equal(t, 3, result.Attempts)
}

func TestRetryUpsert_ExhaustionReturnsLastError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	syncer := NewSyncer(NewClient(srv.URL, StaticToken("tok"), logging.Default()), logging.Default(), noSleep())
	result := syncer.RetryUpsert(context.Background(), map[string]string{"email": "a@example.com"}, "idem", "hash")

	require.Error(t, result.Err)
	assert.Nil(t, result.Contact)
	assert.Equal(t, syncer.MaxRetries(), result.Attempts)
}

func TestRetryUpsert_UpdatesExistingContact(t *testing.T) {
	var upsertMethod, upsertPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/crm/v3/objects/contacts/search" {
			w.Write([]byte(`{"total":1,"results":[{"id":"hs-9"}]}`))
			return
		}
		upsertMethod = r.Method
		upsertPath = r.URL.Path
		w.Write([]byte(`{"id":"hs-9"}`))
	}))
	defer srv.Close()

	syncer := NewSyncer(NewClient(srv.URL, StaticToken("tok"), logging.Default()), logging.Default(), noSleep())
	result := syncer.RetryUpsert(context.Background(), map[string]string{"email": "a@example.com"}, "idem", "hash")

	require.NoError(t, result.Err)
	assert.Equal(t, http.MethodPatch, upsertMethod)
	assert.Equal(t, "/crm/v3/objects/contacts/hs-9", upsertPath)
}

func TestRetryDelay_ExponentialAndCapped(t *testing.T) {
	syncer := NewSyncer(nil, logging.Default(), WithRetryPolicy(5, 250*time.Millisecond, 2*time.Second))

	assert.Equal(t, 250*time.Millisecond, syncer.retryDelay(1))
	assert.Equal(t, 500*time.Millisecond, syncer.retryDelay(2))
	assert.Equal(t, time.Second, syncer.retryDelay(3))
	assert.Equal(t, 2*time.Second, syncer.retryDelay(4))
	assert.Equal(t, 2*time.Second, syncer.retryDelay(5))
}
