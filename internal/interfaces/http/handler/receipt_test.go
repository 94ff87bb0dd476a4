package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estudio/backend/internal/domain/shared"
	"github.com/estudio/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIdemStore struct {
	seen map[string]bool
}

func newFakeIdemStore() *fakeIdemStore {
	return &fakeIdemStore{seen: make(map[string]bool)}
}

func (s *fakeIdemStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdemStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.seen[key], nil
}

func (s *fakeIdemStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*fakeIdemStore)(nil)

func validReceiptBody() []byte {
	body := map[string]any{
		"client_id": uuid.New().String(),
		"issued_at": "2026-03-10",
		"items": []map[string]any{
			{"description": "Honorarios", "month": 3, "year": 2026, "amount": "1500.00"},
		},
		"payments": []map[string]any{
			{"payment_method_id": uuid.New().String(), "amount": "1500.00"},
		},
	}
	raw, _ := json.Marshal(body)
	return raw
}

func TestReceiptCreateRejectsDuplicateIdempotencyKey(t *testing.T) {
	store := newFakeIdemStore()
	// nil service: the duplicate key is rejected before the service runs
	h := NewReceiptHandler(nil, store, shared.DefaultIdempotencyConfig())

	engine := gin.New()
	engine.POST("/receipts", h.Create)

	first := httptest.NewRequest("POST", "/receipts", bytes.NewReader(validReceiptBody()))
	first.Header.Set("Content-Type", "application/json")
	first.Header.Set(IdempotencyKeyHeader, "retry-abc")

	// Claim the key as the first request would
	fresh, err := store.MarkProcessed(context.Background(), "retry-abc", time.Hour)
	require.NoError(t, err)
	require.True(t, fresh)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, first)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeConflict, resp.Error.Code)
}

func TestReceiptCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: "{"},
		{name: "missing items", body: `{"client_id":"` + uuid.NewString() + `","issued_at":"2026-03-10","payments":[{"payment_method_id":"` + uuid.NewString() + `","amount":"10"}]}`},
		{name: "bad date format", body: `{"client_id":"` + uuid.NewString() + `","issued_at":"10/03/2026","items":[{"description":"x","month":3,"year":2026,"amount":"10"}],"payments":[{"payment_method_id":"` + uuid.NewString() + `","amount":"10"}]}`},
	}

	h := NewReceiptHandler(nil, nil, shared.DefaultIdempotencyConfig())
	engine := gin.New()
	engine.POST("/receipts", h.Create)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/receipts", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReceiptDeleteRejectsMalformedID(t *testing.T) {
	h := NewReceiptHandler(nil, nil, shared.DefaultIdempotencyConfig())
	engine := gin.New()
	engine.DELETE("/receipts/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/receipts/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
