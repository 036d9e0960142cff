package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdempotencyStore struct {
	records map[string]string
	setKeys []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := f.records[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := f.records[key]; exists {
		return false, nil
	}
	f.records[key] = fmt.Sprint(value)
	f.setKeys = append(f.setKeys, key)
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.records, key)
	}
	return nil
}

func checkoutRequest(body, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req.WithContext(WithSessionKey(req.Context(), "session-1"))
}

func TestIdempotencyRequiresHeaderOnCheckout(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, checkoutRequest(`{"email":"a@b.com"}`, ""))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Zero(t, calls)
}

func TestIdempotencyPassesThroughUnmatchedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	assert.Equal(t, 1, calls)
	assert.Empty(t, store.setKeys)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"order_id":"abc"}}`))
	}))

	body := `{"email":"a@b.com"}`

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(body, "key-1"))
	require.Equal(t, http.StatusCreated, first.Code)
	require.Len(t, store.setKeys, 1)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(body, "key-1"))

	assert.Equal(t, 1, calls, "second request must not reach the handler")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
}

func TestIdempotencyRejectsKeyReuseWithDifferentBody(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(`{"email":"a@b.com"}`, "key-1"))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, checkoutRequest(`{"email":"other@b.com"}`, "key-1"))

	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "idempotency key reused")
}

func TestIdempotencyScopesKeysPerOwner(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	body := `{"email":"a@b.com"}`

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, checkoutRequest(body, "key-1"))

	otherOwner := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	otherOwner.Header.Set("Idempotency-Key", "key-1")
	otherOwner = otherOwner.WithContext(WithSessionKey(otherOwner.Context(), "session-2"))

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, otherOwner)

	assert.Equal(t, 2, calls, "same key under a different owner is a fresh request")
	assert.Len(t, store.setKeys, 2)
}
