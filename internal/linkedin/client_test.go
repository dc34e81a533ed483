package linkedin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/relohub/internal/domain"
)

type nopStore struct {
	saved atomic.Int32
}

func (s *nopStore) SaveCookies(ctx context.Context, cred *domain.Credential) error {
	s.saved.Add(1)
	return nil
}

func testCredential() *domain.Credential {
	cred := &domain.Credential{Username: "scraper@example.com", Password: "secret"}
	cred.ID = 1
	cred.SetCookieMap(map[string]string{
		sessionCookie: "session-token",
		csrfCookie:    `"ajax:123"`,
	})
	return cred
}

func testPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: attempts,
		EvadeMin:    time.Millisecond,
		EvadeMax:    2 * time.Millisecond,
		Sleep:       func(time.Duration) {},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, attempts int) (*Client, *nopStore) {
	t.Helper()
	store := &nopStore{}
	client, err := New(context.Background(), testCredential(), store, &Config{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Policy:  testPolicy(attempts),
	})
	require.NoError(t, err)
	return client, store
}

func TestClientReusesPersistedSession(t *testing.T) {
	var authCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == authPath {
			authCalls.Add(1)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, store := newTestClient(t, srv, 1)

	assert.Equal(t, int32(0), authCalls.Load(), "a valid session cookie must skip authentication")
	assert.Equal(t, int32(1), store.saved.Load(), "session state is persisted at construction")
}

func TestGetJSONRetriesMalformedResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ajax:123", r.Header.Get("csrf-token"))
		if calls.Add(1) < 3 {
			// Throttled responses come back as HTML.
			w.Write([]byte(`<html>try later</html>`))
			return
		}
		w.Write([]byte(`{"elements":[{"trackingUrn":"urn:li:jobPosting:42","title":"Go Engineer"}]}`))
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 20)

	results, err := client.SearchJobs(context.Background(), "geo-1", []string{"t1"}, 0, 20, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "42", results[0].ID())
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSONExhaustsRetryBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 5)

	_, err := client.GetJob(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse), "exhaustion must wrap the malformed-response error")
	assert.Equal(t, int32(5), calls.Load(), "attempt count must honor the ceiling")
}

func TestGetJSONStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetJob(ctx, "42")
	assert.True(t, errors.Is(err, context.Canceled))
}
